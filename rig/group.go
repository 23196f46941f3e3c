package rig

import (
	"context"
	"sync"
	"time"

	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/worker"
)

// Group ticks independent rigs in parallel. Every rig is ticked by exactly one goroutine at a time.
type Group struct {
	pool *worker.Pool
	rigs []*Rig
}

// NewGroup returns a Group that ticks its rigs on the pool passed.
func NewGroup(pool *worker.Pool, rigs ...*Rig) *Group {
	return &Group{pool: pool, rigs: rigs}
}

// Add adds a rig to the group. It must not be called while the group is ticking.
func (g *Group) Add(r *Rig) {
	g.rigs = append(g.rigs, r)
}

// Rigs ...
func (g *Group) Rigs() []*Rig {
	return g.rigs
}

// Tick ticks every rig once and returns when all of them are done.
func (g *Group) Tick() {
	var wg sync.WaitGroup
	wg.Add(len(g.rigs))
	for _, r := range g.rigs {
		r := r
		g.pool.Submit(func() {
			defer wg.Done()
			r.Tick()
		})
	}
	wg.Wait()
}

// Run ticks the group tps times per second until ctx is done.
func (g *Group) Run(ctx context.Context, tps int) error {
	if tps <= 0 {
		return oerror.New("%w: tick rate must be positive, got %d", oerror.ErrInvalidSettings, tps)
	}
	t := time.NewTicker(time.Second / time.Duration(tps))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			g.Tick()
		}
	}
}
