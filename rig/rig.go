// Package rig composes the locomotion pipeline of a single body: the tick clock, the mediator, the
// body transformer and the providers competing to move the body. A Rig is driven one tick at a time
// and is not safe for concurrent use; a Group runs many rigs side by side.
package rig

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/oomph-ac/locomotion/body"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/metrics"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/sirupsen/logrus"
)

// Updater is implemented by providers that run logic every tick. Update is called after the mediator
// has resolved the state of every provider and before the transformer applies the queued
// transformations, so anything queued from Update is applied in the same tick.
type Updater interface {
	Update()
}

// Config holds the parts a Rig is built from.
type Config struct {
	// Log is the logger used by the rig and everything it creates. The standard logger is used if nil.
	Log *logrus.Logger
	// Frame is the frame moved by the rig. It is required.
	Frame *body.Frame
	// Evaluator decides where the body stands within the frame. An UnderEyeEvaluator is used if nil.
	Evaluator body.PositionEvaluator
	// Manipulator, if set, constrains translations of the body.
	Manipulator body.ConstrainedManipulator
	// Metrics receives the transitions and transformations of the rig. Nothing is recorded if nil.
	Metrics *metrics.Metrics
}

// Rig drives the locomotion of one body.
type Rig struct {
	log         *logrus.Logger
	clock       *locomotion.FrameCounter
	mediator    *locomotion.Mediator
	transformer *locomotion.Transformer
	frame       *body.Frame

	providers []locomotion.Provider
}

// New creates a Rig from conf and enables its transformer.
func New(conf Config) (*Rig, error) {
	if conf.Frame == nil {
		return nil, oerror.ErrMissingFrame
	}
	if conf.Frame.Scale <= 0 {
		return nil, oerror.New("%w: frame scale must be positive, got %v", oerror.ErrInvalidSettings, conf.Frame.Scale)
	}
	if conf.Log == nil {
		conf.Log = logrus.StandardLogger()
	}

	clock := &locomotion.FrameCounter{}
	t := locomotion.NewTransformer(conf.Log, conf.Evaluator, conf.Manipulator)
	t.SetMetrics(conf.Metrics)
	t.Enable(conf.Frame)

	m := locomotion.NewMediator(conf.Log, t, clock)
	m.SetMetrics(conf.Metrics)

	return &Rig{
		log:         conf.Log,
		clock:       clock,
		mediator:    m,
		transformer: t,
		frame:       conf.Frame,
	}, nil
}

// Add attaches the providers to the mediator of the rig. Providers implementing Updater are updated
// every tick until they are destroyed.
func (r *Rig) Add(providers ...locomotion.Provider) {
	for _, p := range providers {
		r.mediator.Attach(p)
		r.providers = append(r.providers, p)
	}
}

// Mediator ...
func (r *Rig) Mediator() *locomotion.Mediator {
	return r.mediator
}

// Transformer ...
func (r *Rig) Transformer() *locomotion.Transformer {
	return r.transformer
}

// Frame returns the frame moved by the rig.
func (r *Rig) Frame() *body.Frame {
	return r.frame
}

// CurrentTick returns the tick the rig is at.
func (r *Rig) CurrentTick() uint64 {
	return r.clock.CurrentTick()
}

// Tick advances the rig by one tick: the clock moves forward, the mediator resolves provider states,
// providers are updated and the transformer applies everything that was queued.
func (r *Rig) Tick() {
	tick := r.clock.Advance()
	r.mediator.Update()

	n := 0
	for _, p := range r.providers {
		if p.Base().Destroyed() {
			continue
		}
		r.providers[n] = p
		n++
		if u, ok := p.(Updater); ok {
			u.Update()
		}
	}
	clear(r.providers[n:])
	r.providers = r.providers[:n]

	r.transformer.Update()

	if r.log.IsLevelEnabled(logrus.TraceLevel) {
		r.log.WithFields(logrus.Fields{
			"tick":   tick,
			"digest": body.Digest(r.frame),
			"pos":    r.frame.Position,
		}).Trace("rig ticked")
	}
}

// Run ticks the rig tps times per second until ctx is done. A panic during a tick stops the rig; it
// is reported to sentry and returned as an error.
func (r *Rig) Run(ctx context.Context, tps int) (err error) {
	if tps <= 0 {
		return oerror.New("%w: tick rate must be positive, got %d", oerror.ErrInvalidSettings, tps)
	}
	defer func() {
		if v := recover(); v != nil {
			err = oerror.New("rig crashed at tick %d: %v", r.clock.CurrentTick(), v)
			r.log.Error(err)
			hub := sentry.CurrentHub().Clone()
			hub.Recover(err)
			hub.Flush(time.Second * 5)
		}
	}()

	t := time.NewTicker(time.Second / time.Duration(tps))
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			r.Tick()
		}
	}
}

// Close disables the transformer of the rig, unlinking its manipulator.
func (r *Rig) Close() {
	r.transformer.Disable()
}
