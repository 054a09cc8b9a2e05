// Package notifications bridges the worker's push notification stream into
// the pipeline: sources (websocket stream, webhook receiver) feed a
// dispatcher that callers wait on for the terminal event of a job.
package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/reavers-game/go-reavers/service/logger"
	"github.com/reavers-game/go-reavers/service/persist"
	"golang.org/x/sync/errgroup"
)

const subscriberBuffer = 32

// Source is a push channel that delivers job events into a dispatcher
type Source interface {
	Run(ctx context.Context, d *Dispatcher) error
}

// Dispatcher fans incoming job events out to subscribers. Events with no
// matching waiter are dropped; the job timeout governs eventual failure.
type Dispatcher struct {
	mu   sync.Mutex
	subs map[int]chan persist.JobEvent
	next int
}

// NewDispatcher returns an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{subs: map[int]chan persist.JobEvent{}}
}

// Dispatch delivers a batch of events to every subscriber. Slow subscribers
// with a full buffer miss events rather than block the source.
func (d *Dispatcher) Dispatch(ctx context.Context, events ...persist.JobEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, event := range events {
		for id, ch := range d.subs {
			select {
			case ch <- event:
			default:
				logger.For(ctx).Warnf("subscriber %d missed notification %s/%s", id, event.Type, event.Data.ID)
			}
		}
	}
}

// Subscribe registers a new subscriber, returning its event channel and an
// unsubscribe function
func (d *Dispatcher) Subscribe() (<-chan persist.JobEvent, func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := d.next
	d.next++
	ch := make(chan persist.JobEvent, subscriberBuffer)
	d.subs[id] = ch

	return ch, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.subs, id)
	}
}

// WaitForJob blocks until an event of the given type arrives for jobID, the
// timeout window elapses, or ctx is cancelled. Non-matching events are
// ignored; a timeout does not cancel the backend job.
func (d *Dispatcher) WaitForJob(ctx context.Context, jobID string, kind persist.NotificationType, timeout time.Duration) (persist.JobEvent, error) {
	ch, unsubscribe := d.Subscribe()
	defer unsubscribe()

	return d.WaitOn(ctx, ch, jobID, kind, timeout)
}

// WaitOn blocks like WaitForJob but consumes a channel the caller subscribed
// earlier. Subscribing before the job is submitted means a notification that
// arrives while the submit response is still in flight is buffered, not lost.
func (d *Dispatcher) WaitOn(ctx context.Context, ch <-chan persist.JobEvent, jobID string, kind persist.NotificationType, timeout time.Duration) (persist.JobEvent, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case event := <-ch:
			if event.Type != kind || event.Data.ID != jobID {
				continue
			}
			return event, nil
		case <-timer.C:
			return persist.JobEvent{}, persist.ErrJobTimeout{JobID: jobID, Window: timeout}
		case <-ctx.Done():
			return persist.JobEvent{}, ctx.Err()
		}
	}
}

// Run drives all sources until ctx is cancelled or a source fails
func (d *Dispatcher) Run(ctx context.Context, sources ...Source) error {
	eg, ctx := errgroup.WithContext(ctx)
	for _, s := range sources {
		s := s
		eg.Go(func() error {
			return s.Run(ctx, d)
		})
	}
	return eg.Wait()
}
