package notifications

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/reavers-game/go-reavers/service/logger"
	"github.com/reavers-game/go-reavers/service/persist"
)

const (
	reconnectBaseDelay = time.Second
	reconnectMaxDelay  = 30 * time.Second
)

// WebsocketSource subscribes to the worker's notification stream over a
// websocket and feeds every received batch into the dispatcher. The
// connection is re-established with backoff until the context is cancelled.
type WebsocketSource struct {
	url       string
	authToken string
	dialer    *websocket.Dialer
	baseDelay time.Duration
	maxDelay  time.Duration
}

// NewWebsocketSource returns a source for the stream at url
func NewWebsocketSource(url, authToken string) *WebsocketSource {
	return &WebsocketSource{
		url:       url,
		authToken: authToken,
		dialer:    websocket.DefaultDialer,
		baseDelay: reconnectBaseDelay,
		maxDelay:  reconnectMaxDelay,
	}
}

// Run implements Source
func (s *WebsocketSource) Run(ctx context.Context, d *Dispatcher) error {
	delay := s.baseDelay

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		connected, err := s.readLoop(ctx, d)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			// a session that got as far as connecting resets the backoff
			delay = s.baseDelay
		}
		if err != nil {
			logger.For(ctx).WithError(err).Warnf("notification stream dropped, reconnecting in %s", delay)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}

		delay *= 2
		if delay > s.maxDelay {
			delay = s.maxDelay
		}
	}
}

// readLoop reports whether the dial succeeded so the caller can tell a failed
// connection attempt from a dropped session
func (s *WebsocketSource) readLoop(ctx context.Context, d *Dispatcher) (bool, error) {
	header := map[string][]string{}
	if s.authToken != "" {
		header["Authorization"] = []string{"Bearer " + s.authToken}
	}

	conn, _, err := s.dialer.DialContext(ctx, s.url, header)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	logger.For(ctx).Infof("connected to notification stream at %s", s.url)

	// Close the connection when the context ends so ReadMessage unblocks
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}

		events, err := decodeEvents(message)
		if err != nil {
			logger.For(ctx).WithError(err).Warn("dropping malformed notification message")
			continue
		}
		d.Dispatch(ctx, events...)
	}
}

// decodeEvents accepts either a batch or a single event per message
func decodeEvents(message []byte) ([]persist.JobEvent, error) {
	var batch []persist.JobEvent
	if err := json.Unmarshal(message, &batch); err == nil {
		return batch, nil
	}

	var single persist.JobEvent
	if err := json.Unmarshal(message, &single); err != nil {
		return nil, err
	}
	return []persist.JobEvent{single}, nil
}
