// Package cache is the invalidation port the pipeline notifies after a job
// reaches a terminal state. Cached reads are invalidated, never locked;
// staleness between invalidation and the next fetch is expected.
package cache

import (
	"context"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/reavers-game/go-reavers/service/logger"
)

// Named resources the pipeline invalidates
const (
	// KeyUserProfile is the user's profile and balances
	KeyUserProfile = "users.me"
	// KeyOnChainAssets is the user's on-chain asset list
	KeyOnChainAssets = "assets.onchain"
	// KeyNFTs is the user's NFT list
	KeyNFTs = "nfts.list"
	// KeyItems is the user's item inventory
	KeyItems = "items.list"
	// KeyShopItems is the shop's item list
	KeyShopItems = "shop.items"
)

// HandleAssetsKeys are the resources invalidated after a freeze, thaw or
// mint-and-withdraw job resolves
var HandleAssetsKeys = []string{KeyUserProfile, KeyOnChainAssets, KeyNFTs}

// LevelUpKeys are the resources invalidated after a level-up job resolves
var LevelUpKeys = []string{KeyUserProfile, KeyOnChainAssets, KeyNFTs, KeyItems, KeyShopItems}

// Invalidator marks named cached resources as stale
type Invalidator interface {
	Invalidate(ctx context.Context, keys ...string) error
}

// Multi fans invalidations out to several invalidators concurrently
type Multi struct {
	invalidators []Invalidator
	pool         *workerpool.WorkerPool
}

// NewMulti returns an invalidator that notifies each of the given
// invalidators
func NewMulti(invalidators ...Invalidator) *Multi {
	return &Multi{
		invalidators: invalidators,
		pool:         workerpool.New(4),
	}
}

// Invalidate implements Invalidator. Every target is notified even when one
// fails; the first error is returned.
func (m *Multi) Invalidate(ctx context.Context, keys ...string) error {
	var mu sync.Mutex
	var wg sync.WaitGroup
	var firstErr error

	for _, inv := range m.invalidators {
		inv := inv
		wg.Add(1)
		m.pool.Submit(func() {
			defer wg.Done()
			if err := inv.Invalidate(ctx, keys...); err != nil {
				logger.For(ctx).WithError(err).Warnf("cache invalidation failed for keys %v", keys)
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		})
	}

	wg.Wait()
	return firstErr
}

// Stop releases the fan-out pool
func (m *Multi) Stop() {
	m.pool.StopWait()
}

// NoopInvalidator ignores every invalidation
type NoopInvalidator struct{}

func (NoopInvalidator) Invalidate(ctx context.Context, keys ...string) error {
	return nil
}
