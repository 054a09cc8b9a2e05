package publicapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/reavers-game/go-reavers/service/cache"
	"github.com/reavers-game/go-reavers/service/level"
	"github.com/reavers-game/go-reavers/service/notifications"
	"github.com/reavers-game/go-reavers/service/persist"
	"github.com/reavers-game/go-reavers/service/worker"
	"github.com/reavers-game/go-reavers/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLevelWorker struct {
	mu       sync.Mutex
	requests []worker.LevelUpRequest
	jobID    string
	onSubmit func() // runs before the response is written
}

func (f *fakeLevelWorker) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != worker.LevelUpPath {
			http.NotFound(w, r)
			return
		}
		var req worker.LevelUpRequest
		json.NewDecoder(r.Body).Decode(&req)
		f.mu.Lock()
		f.requests = append(f.requests, req)
		f.mu.Unlock()
		if f.onSubmit != nil {
			f.onSubmit()
		}
		json.NewEncoder(w).Encode(map[string]string{"jobId": f.jobID})
	}
}

func (f *fakeLevelWorker) received() []worker.LevelUpRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]worker.LevelUpRequest(nil), f.requests...)
}

func newTestLevelAPI(t *testing.T, fw *fakeLevelWorker, timeouts TimeoutConfig) (*LevelAPI, *notifications.Dispatcher, *recordingInvalidator) {
	t.Helper()

	srv := httptest.NewServer(fw.handler())
	t.Cleanup(srv.Close)

	d := notifications.NewDispatcher()
	inv := &recordingInvalidator{}
	client := worker.NewClient(srv.URL, nil, "test-token")

	return NewLevelAPI(client, d, inv, validate.New(), timeouts), d, inv
}

func TestLevelUp_Success(t *testing.T) {
	a := assert.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fw := &fakeLevelWorker{jobID: "job-lvl-1"}
	api, d, inv := newTestLevelAPI(t, fw, TimeoutConfig{})

	resolveJob(ctx, d, persist.JobEvent{
		Type: persist.NotificationTypeLevelUpEntities,
		Data: persist.JobEventData{ID: "job-lvl-1", Success: boolPtr(true), LevelUpCount: 2},
	})

	result, err := api.LevelUp(ctx, persist.TypeCaptain, "captain-uid-1", 5, 2)
	require.NoError(t, err)

	a.Equal(StateResolved, result.State)
	a.Equal("job-lvl-1", result.JobID)

	wantCost, err := level.TotalCost(persist.TypeCaptain, 5, 2)
	require.NoError(t, err)
	a.Equal(wantCost, result.Cost)

	reqs := fw.received()
	require.Len(t, reqs, 1)
	a.Equal("captain-uid-1", reqs[0].LevelUpUid)
	a.Equal(2, reqs[0].LevelUpCount)

	// level-up flows also invalidate item and shop caches
	require.Len(t, inv.calls(), 1)
	a.Equal(cache.LevelUpKeys, inv.calls()[0])
}

func TestLevelUp_JobResolvesBeforeSubmitReturns(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	fw := &fakeLevelWorker{jobID: "job-lvl-fast"}
	api, d, _ := newTestLevelAPI(t, fw, TimeoutConfig{Quick: 200 * time.Millisecond})

	fw.onSubmit = func() {
		d.Dispatch(ctx, persist.JobEvent{
			Type: persist.NotificationTypeLevelUpEntities,
			Data: persist.JobEventData{ID: "job-lvl-fast", Success: boolPtr(true)},
		})
	}

	result, err := api.LevelUp(ctx, persist.TypeCaptain, "captain-uid-1", 3, 1)
	require.NoError(t, err)
	a.Equal(StateResolved, result.State)
	a.Equal("job-lvl-fast", result.JobID)
}

func TestLevelUp_RejectsMaxLevelBeforeNetwork(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	fw := &fakeLevelWorker{jobID: "job-lvl-2"}
	api, _, _ := newTestLevelAPI(t, fw, TimeoutConfig{})

	max, err := level.MaxLevel(persist.TypeCaptain)
	require.NoError(t, err)

	_, err = api.LevelUp(ctx, persist.TypeCaptain, "captain-uid-1", max, 1)

	a.ErrorAs(err, &level.ErrMaxLevel{})
	a.Empty(fw.received())
}

func TestLevelUp_HonorsJobFailure(t *testing.T) {
	a := assert.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fw := &fakeLevelWorker{jobID: "job-lvl-3"}
	api, d, _ := newTestLevelAPI(t, fw, TimeoutConfig{})

	resolveJob(ctx, d, persist.JobEvent{
		Type: persist.NotificationTypeLevelUpEntities,
		Data: persist.JobEventData{ID: "job-lvl-3", Message: "not enough gold", Success: boolPtr(false)},
	})

	result, err := api.LevelUp(ctx, persist.TypeCrew, "crew-uid-1", 1, 1)

	var failed persist.ErrJobFailed
	require.ErrorAs(t, err, &failed)
	a.Equal("not enough gold", failed.Message)
	a.Equal(StateFailed, result.State)
}

func TestLevelUp_QuickWindowForSingleStep(t *testing.T) {
	a := assert.New(t)
	ctx := context.Background()

	fw := &fakeLevelWorker{jobID: "job-lvl-4"}
	api, _, _ := newTestLevelAPI(t, fw, TimeoutConfig{Quick: 20 * time.Millisecond, Bulk: 10 * time.Second})

	start := time.Now()
	result, err := api.LevelUp(ctx, persist.TypeShip, "ship-uid-1", 1, 1)

	var timeout persist.ErrJobTimeout
	require.ErrorAs(t, err, &timeout)
	a.Equal(20*time.Millisecond, timeout.Window)
	a.Equal(StateTimedOut, result.State)
	a.Less(time.Since(start), 5*time.Second, "single-step upgrades must use the quick window")
}
