// Package singleflight coalesces concurrent calls for the same key so the
// supplied function runs at most once while a flight is in progress. It is
// the primitive behind the store's GetOrCompute: every caller racing to
// populate a key observes the one instance the leader produced.
package singleflight

import (
	"context"
	"sync"
)

// Group tracks in-flight calls per key. The zero value is ready to use.
type Group[K comparable, V any] struct {
	mu      sync.Mutex
	flights map[K]*flight[V]
}

type flight[V any] struct {
	done chan struct{} // closed once val/err are published
	val  V
	err  error
}

// Do runs fn once for key; concurrent callers with the same key wait for
// the shared result. Publishing (val, err) happens-before close(done), so
// followers reading after <-done observe the final values.
//
// Cancelling ctx releases only the waiting follower; the leader's fn keeps
// running. Callers that need the underlying work cancelled must thread ctx
// into fn themselves.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (V, error) {
	g.mu.Lock()
	if g.flights == nil {
		g.flights = make(map[K]*flight[V])
	}
	if f, ok := g.flights[key]; ok {
		// Follower: a flight for this key is already in progress.
		done := f.done
		g.mu.Unlock()
		select {
		case <-done:
			return f.val, f.err
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err()
		}
	}
	f := &flight[V]{done: make(chan struct{})}
	g.flights[key] = f
	g.mu.Unlock()

	// Leader: run fn outside the lock, publish, then retire the flight.
	f.val, f.err = fn()
	close(f.done)

	g.mu.Lock()
	delete(g.flights, key)
	g.mu.Unlock()

	return f.val, f.err
}
