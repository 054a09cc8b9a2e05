package notifications

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWebsocketSource_DeliversEvents(t *testing.T) {
	a := assert.New(t)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`[{"type":"handleAssets","data":{"id":"job-ws","success":true}}]`))
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	d := NewDispatcher()
	ch, unsubscribe := d.Subscribe()
	defer unsubscribe()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go NewWebsocketSource(wsURL(srv), "").Run(ctx, d)

	select {
	case event := <-ch:
		a.Equal("job-ws", event.Data.ID)
		a.True(event.Succeeded())
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered over the stream")
	}
}

func TestWebsocketSource_BackoffResetsAfterConnecting(t *testing.T) {
	a := assert.New(t)

	var attempts int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.Close()
	}))
	defer srv.Close()

	s := NewWebsocketSource(wsURL(srv), "")
	s.baseDelay = 5 * time.Millisecond
	s.maxDelay = 160 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	s.Run(ctx, NewDispatcher())

	// every session connects before dropping, so the delay stays at the base
	// value; if the backoff never reset it would climb to the cap and allow
	// only a handful of dials in this window
	a.GreaterOrEqual(atomic.LoadInt32(&attempts), int32(12))
}
