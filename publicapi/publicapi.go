package publicapi

import (
	"time"

	"github.com/reavers-game/go-reavers/service/cache"
	"github.com/reavers-game/go-reavers/service/notifications"
	"github.com/reavers-game/go-reavers/service/wallet"
	"github.com/reavers-game/go-reavers/service/worker"
	"github.com/reavers-game/go-reavers/validate"
)

// TimeoutConfig holds the windows the pipeline waits for a job's terminal
// notification. Single-asset on-chain actions resolve fast; bulk and
// level-up jobs take longer.
type TimeoutConfig struct {
	Single time.Duration
	Bulk   time.Duration
	Quick  time.Duration
}

// DefaultTimeouts returns the production windows
func DefaultTimeouts() TimeoutConfig {
	return TimeoutConfig{
		Single: 30 * time.Second,
		Bulk:   150 * time.Second,
		Quick:  20 * time.Second,
	}
}

func (t TimeoutConfig) withDefaults() TimeoutConfig {
	d := DefaultTimeouts()
	if t.Single <= 0 {
		t.Single = d.Single
	}
	if t.Bulk <= 0 {
		t.Bulk = d.Bulk
	}
	if t.Quick <= 0 {
		t.Quick = d.Quick
	}
	return t
}

// PublicAPI bundles the flows the client drives against the worker
type PublicAPI struct {
	Asset *AssetAPI
	Level *LevelAPI
}

// New wires a PublicAPI from its collaborators
func New(workerClient *worker.Client, w wallet.Wallet, notifs *notifications.Dispatcher, invalidator cache.Invalidator, timeouts TimeoutConfig) *PublicAPI {
	v := validate.New()
	timeouts = timeouts.withDefaults()
	return &PublicAPI{
		Asset: NewAssetAPI(workerClient, w, notifs, invalidator, v, timeouts),
		Level: NewLevelAPI(workerClient, notifs, invalidator, v, timeouts),
	}
}
