// Package inflight tracks outstanding work for views: a generation counter
// that marks older loads stale, and a per-mutation busy flag that stops a
// second submit while the first is outstanding.
package inflight

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

var ErrInFlight = errors.New("operation already in progress")

// ErrStale is returned by Load when its result was superseded before it
// resolved.
var ErrStale = errors.New("result superseded")

// Generation hands out tickets; only the most recent ticket is current.
// Close invalidates every ticket, as when a view goes away.
type Generation struct {
	current atomic.Uint64
	closed  atomic.Bool
}

type Ticket struct {
	gen *Generation
	n   uint64
}

func (g *Generation) Next() Ticket {
	return Ticket{gen: g, n: g.current.Add(1)}
}

// Close makes every ticket, including future ones, stale.
func (g *Generation) Close() {
	g.closed.Store(true)
	g.current.Add(1)
}

func (g *Generation) Closed() bool {
	return g.closed.Load()
}

func (t Ticket) Current() bool {
	if t.gen == nil || t.gen.closed.Load() {
		return false
	}
	return t.gen.current.Load() == t.n
}

// Load runs fn under a fresh ticket and returns ErrStale instead of the
// result when another load started, or the generation closed, meanwhile.
func Load[T any](ctx context.Context, g *Generation, fn func(context.Context) (T, error)) (T, error) {
	ticket := g.Next()
	v, err := fn(ctx)
	if !ticket.Current() {
		var zero T
		return zero, ErrStale
	}
	return v, err
}

// Mutation is the busy flag for one submit control.
type Mutation struct {
	mu      sync.Mutex
	running bool
}

func (m *Mutation) InFlight() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Run executes fn unless a previous Run is still outstanding, in which case
// it returns ErrInFlight without calling fn.
func (m *Mutation) Run(ctx context.Context, fn func(context.Context) error) error {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return ErrInFlight
	}
	m.running = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.running = false
		m.mu.Unlock()
	}()
	return fn(ctx)
}

// Do is Run for mutations that produce a value.
func Do[T any](ctx context.Context, m *Mutation, fn func(context.Context) (T, error)) (T, error) {
	var out T
	err := m.Run(ctx, func(ctx context.Context) error {
		var err error
		out, err = fn(ctx)
		return err
	})
	return out, err
}
