package publicapi

import (
	"context"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"github.com/reavers-game/go-reavers/service/cache"
	"github.com/reavers-game/go-reavers/service/level"
	"github.com/reavers-game/go-reavers/service/logger"
	"github.com/reavers-game/go-reavers/service/notifications"
	"github.com/reavers-game/go-reavers/service/persist"
	"github.com/reavers-game/go-reavers/service/worker"
	"github.com/reavers-game/go-reavers/validate"
	"github.com/sirupsen/logrus"
)

// LevelAPI drives the level-up flow: a structurally identical pipeline to
// HandleAssets over a single entity instead of a selection, with no signing
// step. The worker charges the cost server-side; the client prices the
// upgrade first so it can reject impossible requests without a network call.
type LevelAPI struct {
	worker      *worker.Client
	notifs      *notifications.Dispatcher
	invalidator cache.Invalidator
	validator   *validator.Validate
	timeouts    TimeoutConfig

	mu          sync.Mutex
	state       PipelineState
	activeJobID string
}

// LevelUpResult is the outcome of one level-up invocation
type LevelUpResult struct {
	OperationID persist.DBID
	JobID       string
	State       PipelineState
	Cost        level.Cost
}

// NewLevelAPI wires a LevelAPI from its collaborators
func NewLevelAPI(workerClient *worker.Client, notifs *notifications.Dispatcher, invalidator cache.Invalidator, v *validator.Validate, timeouts TimeoutConfig) *LevelAPI {
	return &LevelAPI{
		worker:      workerClient,
		notifs:      notifs,
		invalidator: invalidator,
		validator:   v,
		timeouts:    timeouts.withDefaults(),
		state:       StateIdle,
	}
}

// State returns the pipeline's current state
func (api *LevelAPI) State() PipelineState {
	api.mu.Lock()
	defer api.mu.Unlock()
	return api.state
}

// LevelUp submits a level-up job for the entity and waits for its terminal
// notification. Single-step upgrades use the quick window, batched ones the
// bulk window.
func (api *LevelAPI) LevelUp(ctx context.Context, entityType persist.AssetType, uid string, fromLevel, count int) (*LevelUpResult, error) {
	if err := api.acquireSlot(); err != nil {
		return nil, err
	}
	defer api.releaseSlot()

	opID := persist.GenerateID()
	ctx = logger.NewContextWithFields(ctx, logrus.Fields{
		"operation_id": opID,
		"entity_type":  entityType,
		"entity_uid":   uid,
	})

	result := &LevelUpResult{OperationID: opID, State: StateIdle}

	err := api.run(ctx, entityType, uid, fromLevel, count, result)
	api.finish(ctx, result, err)

	return result, err
}

func (api *LevelAPI) run(ctx context.Context, entityType persist.AssetType, uid string, fromLevel, count int, result *LevelUpResult) error {
	if err := api.worker.CheckAuth(); err != nil {
		result.State = StateFailed
		return err
	}

	api.setState(ctx, StateBuilding)

	if err := validate.ValidateFields(api.validator, validate.ValidationMap{
		"entityType": {Value: entityType.String(), Tag: "required"},
		"uid":        {Value: uid, Tag: "required"},
		"count":      {Value: count, Tag: "gte=1"},
	}); err != nil {
		result.State = StateFailed
		return err
	}

	cost, err := level.TotalCost(entityType, fromLevel, count)
	if err != nil {
		result.State = StateFailed
		return err
	}
	result.Cost = cost

	api.setState(ctx, StateSubmitting)

	// Subscribe before submitting: a fast job can resolve while the submit
	// response is still in flight, and its notification must not be lost
	events, unsubscribe := api.notifs.Subscribe()
	defer unsubscribe()

	jobID, err := api.worker.LevelUp(ctx, worker.LevelUpRequest{
		Type:         entityType,
		LevelUpUid:   uid,
		LevelUpCount: count,
	})
	if err != nil {
		result.State = StateFailed
		return err
	}
	result.JobID = jobID
	api.setActiveJob(jobID)

	api.setState(ctx, StateAwaitingJob)

	window := api.timeouts.Bulk
	if count == 1 {
		window = api.timeouts.Quick
	}

	event, err := api.notifs.WaitOn(ctx, events, jobID, persist.NotificationTypeLevelUpEntities, window)
	if err != nil {
		if _, ok := err.(persist.ErrJobTimeout); ok {
			result.State = StateTimedOut
		} else {
			result.State = StateFailed
		}
		return err
	}

	if !event.Succeeded() {
		result.State = StateFailed
		return persist.ErrJobFailed{JobID: jobID, Message: event.FailureMessage()}
	}

	result.State = StateResolved
	return nil
}

func (api *LevelAPI) finish(ctx context.Context, result *LevelUpResult, err error) {
	if invErr := api.invalidator.Invalidate(ctx, cache.LevelUpKeys...); invErr != nil {
		logger.For(ctx).WithError(invErr).Warn("cache invalidation after terminal state failed")
	}

	if err != nil {
		logger.For(ctx).WithError(err).Errorf("level-up finished in state %s", result.State)
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			hub.CaptureException(err)
		}
	} else {
		logger.For(ctx).Infof("level-up finished in state %s, job %s", result.State, result.JobID)
	}

	api.setActiveJob("")
	api.setState(ctx, StateIdle)
}

func (api *LevelAPI) acquireSlot() error {
	api.mu.Lock()
	defer api.mu.Unlock()
	if api.state != StateIdle {
		return persist.ErrJobInProgress{JobID: api.activeJobID}
	}
	api.state = StateBuilding
	return nil
}

func (api *LevelAPI) releaseSlot() {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.state = StateIdle
	api.activeJobID = ""
}

func (api *LevelAPI) setState(ctx context.Context, s PipelineState) {
	api.mu.Lock()
	api.state = s
	api.mu.Unlock()
	logger.For(ctx).Debugf("level-up state: %s", s)
}

func (api *LevelAPI) setActiveJob(jobID string) {
	api.mu.Lock()
	api.activeJobID = jobID
	api.mu.Unlock()
}
