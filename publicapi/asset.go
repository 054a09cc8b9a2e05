package publicapi

import (
	"context"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-playground/validator/v10"
	"github.com/reavers-game/go-reavers/service/assets"
	"github.com/reavers-game/go-reavers/service/cache"
	"github.com/reavers-game/go-reavers/service/logger"
	"github.com/reavers-game/go-reavers/service/notifications"
	"github.com/reavers-game/go-reavers/service/persist"
	"github.com/reavers-game/go-reavers/service/txwire"
	"github.com/reavers-game/go-reavers/service/wallet"
	"github.com/reavers-game/go-reavers/service/worker"
	"github.com/reavers-game/go-reavers/util"
	"github.com/reavers-game/go-reavers/validate"
	"github.com/sirupsen/logrus"
)

// AssetAPI drives the freeze/thaw/mint-and-withdraw pipeline: validate the
// selection, fetch unsigned transactions, sign them with the wallet, submit
// the batch, and wait for the job's terminal notification.
type AssetAPI struct {
	worker      *worker.Client
	wallet      wallet.Wallet
	notifs      *notifications.Dispatcher
	invalidator cache.Invalidator
	validator   *validator.Validate
	timeouts    TimeoutConfig

	mu          sync.Mutex
	state       PipelineState
	activeJobID string
}

// HandleAssetsResult is the outcome of one pipeline invocation
type HandleAssetsResult struct {
	OperationID persist.DBID
	JobID       string
	State       PipelineState
	// Signatures are the first signatures of the signed batch, in input
	// order, for display and correlation only
	Signatures []string
}

// NewAssetAPI wires an AssetAPI from its collaborators
func NewAssetAPI(workerClient *worker.Client, w wallet.Wallet, notifs *notifications.Dispatcher, invalidator cache.Invalidator, v *validator.Validate, timeouts TimeoutConfig) *AssetAPI {
	return &AssetAPI{
		worker:      workerClient,
		wallet:      w,
		notifs:      notifs,
		invalidator: invalidator,
		validator:   v,
		timeouts:    timeouts.withDefaults(),
		state:       StateIdle,
	}
}

// State returns the pipeline's current state
func (api *AssetAPI) State() PipelineState {
	api.mu.Lock()
	defer api.mu.Unlock()
	return api.state
}

// HandleAssets runs one action over the current selection. It is a
// single-slot operation: a second call while one is in flight fails with
// ErrJobInProgress. Whatever the outcome, the selection is cleared, the
// slider reset, and cached reads invalidated before returning, and the
// pipeline returns to idle.
func (api *AssetAPI) HandleAssets(ctx context.Context, action persist.ActionType, sel *assets.Selection, q validate.SelectionQuery) (*HandleAssetsResult, error) {
	if err := api.acquireSlot(); err != nil {
		return nil, err
	}
	defer api.releaseSlot()

	opID := persist.GenerateID()
	ctx = logger.NewContextWithFields(ctx, logrus.Fields{
		"operation_id": opID,
		"action":       action,
	})

	result := &HandleAssetsResult{OperationID: opID, State: StateIdle}

	err := api.run(ctx, action, sel, q, result)
	api.finish(ctx, sel, result, err)

	if err != nil {
		return result, err
	}
	return result, nil
}

func (api *AssetAPI) run(ctx context.Context, action persist.ActionType, sel *assets.Selection, q validate.SelectionQuery, result *HandleAssetsResult) error {
	// Idle -> Building: a connected wallet and a bearer token are
	// preconditions, checked before anything else
	if api.wallet == nil {
		result.State = StateFailed
		return persist.ErrNoWallet{}
	}
	if err := api.worker.CheckAuth(); err != nil {
		result.State = StateFailed
		return err
	}

	api.setState(ctx, StateBuilding)

	if err := validate.ValidateFields(api.validator, validate.ValidationMap{
		"action":     {Value: action.String(), Tag: "required"},
		"assetType":  {Value: q.AssetType.String(), Tag: "required"},
		"location":   {Value: q.Location.String(), Tag: "required"},
		"mintStatus": {Value: q.MintStatus.String(), Tag: "required"},
	}); err != nil {
		result.State = StateFailed
		return err
	}

	selected := sel.Selected()
	if err := validate.VerifySelection(selected, q); err != nil {
		result.State = StateFailed
		return err
	}

	unsigned, err := api.worker.RequestTransactions(ctx, action, selected)
	if err != nil {
		result.State = StateFailed
		return err
	}

	api.setState(ctx, StateAwaitingSignatures)

	signed, signatures, err := api.signBatch(ctx, unsigned)
	if err != nil {
		result.State = StateFailed
		return err
	}
	result.Signatures = signatures

	api.setState(ctx, StateSubmitting)

	// Subscribe before submitting: a fast job can resolve while the submit
	// response is still in flight, and its notification must not be lost
	events, unsubscribe := api.notifs.Subscribe()
	defer unsubscribe()

	jobID, err := api.worker.SubmitSigned(ctx, q.AssetType, signed)
	if err != nil {
		result.State = StateFailed
		return err
	}
	result.JobID = jobID
	api.setActiveJob(jobID)

	api.setState(ctx, StateAwaitingJob)

	window := api.timeouts.Single
	if len(selected) > 1 {
		window = api.timeouts.Bulk
	}

	event, err := api.notifs.WaitOn(ctx, events, jobID, action.NotificationType(), window)
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

// signBatch signs every transaction of the batch sequentially, preserving
// input order. A single failure discards the whole batch, already-signed
// transactions included.
func (api *AssetAPI) signBatch(ctx context.Context, unsigned []worker.TransactionResponse) ([]worker.SignedTransaction, []string, error) {
	defer util.Track("signBatch", time.Now())

	signer, err := api.wallet.GetSigner(ctx)
	if err != nil {
		return nil, nil, persist.ErrNoWallet{}
	}

	signed := make([]worker.SignedTransaction, 0, len(unsigned))
	signatures := make([]string, 0, len(unsigned))

	for _, u := range unsigned {
		tx, err := txwire.DecodeBase58(u.Tx)
		if err != nil {
			return nil, nil, persist.ErrSigningFailed{Mint: persist.AssetID(u.Mint), Err: err}
		}
		if err := tx.SignWith(ctx, signer); err != nil {
			return nil, nil, persist.ErrSigningFailed{Mint: persist.AssetID(u.Mint), Err: err}
		}
		signed = append(signed, worker.SignedTransaction{
			Mint: u.Mint,
			Tx:   tx.EncodeBase58(),
			ID:   u.ID,
		})
		signatures = append(signatures, tx.FirstSignature())
	}

	return signed, signatures, nil
}

// finish applies the terminal side effects every outcome shares: clear the
// selection, reset the slider, invalidate cached reads, and report failures.
// The pipeline returns to idle so the UI stays interactive.
func (api *AssetAPI) finish(ctx context.Context, sel *assets.Selection, result *HandleAssetsResult, err error) {
	sel.DeselectAll()

	if invErr := api.invalidator.Invalidate(ctx, cache.HandleAssetsKeys...); invErr != nil {
		logger.For(ctx).WithError(invErr).Warn("cache invalidation after terminal state failed")
	}

	if err != nil {
		logger.For(ctx).WithError(err).Errorf("pipeline finished in state %s", result.State)
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			hub.CaptureException(err)
		}
	} else {
		logger.For(ctx).Infof("pipeline finished in state %s, job %s", result.State, result.JobID)
	}

	api.setActiveJob("")
	api.setState(ctx, StateIdle)
}

func (api *AssetAPI) acquireSlot() error {
	api.mu.Lock()
	defer api.mu.Unlock()
	if api.state != StateIdle {
		return persist.ErrJobInProgress{JobID: api.activeJobID}
	}
	api.state = StateBuilding
	return nil
}

func (api *AssetAPI) releaseSlot() {
	api.mu.Lock()
	defer api.mu.Unlock()
	api.state = StateIdle
	api.activeJobID = ""
}

func (api *AssetAPI) setState(ctx context.Context, s PipelineState) {
	api.mu.Lock()
	api.state = s
	api.mu.Unlock()
	logger.For(ctx).Debugf("pipeline state: %s", s)
}

func (api *AssetAPI) setActiveJob(jobID string) {
	api.mu.Lock()
	api.activeJobID = jobID
	api.mu.Unlock()
}
