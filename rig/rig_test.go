package rig

import (
	"context"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/body"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/metrics"
	"github.com/oomph-ac/locomotion/oerror"
	"github.com/oomph-ac/locomotion/transformation"
	"github.com/oomph-ac/locomotion/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

// walker prepares as soon as it is updated and walks forward one unit per tick once moving.
type walker struct {
	locomotion.BaseProvider
	updates int
	onMove  func(w *walker)
}

func (w *walker) Update() {
	w.updates++
	if w.LocomotionState() != locomotion.StateMoving {
		w.TryPrepareLocomotion()
		return
	}
	w.TryQueueTransformation(transformation.Translate{Displacement: mgl32.Vec3{0, 0, 1}})
	if w.onMove != nil {
		w.onMove(w)
	}
}

func newRig(t *testing.T) *Rig {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	r, err := New(Config{Log: log, Frame: body.NewFrame(1.6)})
	if err != nil {
		t.Fatalf("unable to create rig: %v", err)
	}
	return r
}

func TestNewRequiresFrame(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, oerror.ErrMissingFrame) {
		t.Fatalf("expected ErrMissingFrame, got %v", err)
	}
	frame := body.NewFrame(1.6)
	frame.Scale = 0
	if _, err := New(Config{Frame: frame}); !errors.Is(err, oerror.ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
}

func TestTickOrder(t *testing.T) {
	r := newRig(t)
	w := &walker{}
	r.Add(w)

	// Tick 1: the walker prepares. Tick 2: the mediator starts it and its first step is applied.
	r.Tick()
	if s := w.LocomotionState(); s != locomotion.StatePreparing {
		t.Fatalf("expected preparing after the first tick, got %v", s)
	}
	r.Tick()
	if s := w.LocomotionState(); s != locomotion.StateMoving {
		t.Fatalf("expected moving after the second tick, got %v", s)
	}
	if z := r.Frame().Position.Z(); z != 1 {
		t.Fatalf("expected the step queued during the tick to be applied in it, got z=%v", z)
	}
	r.Tick()
	if z := r.Frame().Position.Z(); z != 2 {
		t.Fatalf("expected z=2 after the third tick, got %v", z)
	}
	if r.CurrentTick() != 3 {
		t.Fatalf("expected tick 3, got %d", r.CurrentTick())
	}
	if r.Transformer().Pending() != 0 {
		t.Fatalf("expected an empty queue at the end of a tick")
	}
}

func TestDestroyedProviderIsNotUpdated(t *testing.T) {
	r := newRig(t)
	w := &walker{}
	r.Add(w)
	r.Tick()

	w.Destroy()
	r.Tick()
	r.Tick()
	if w.updates != 1 {
		t.Fatalf("expected a destroyed provider to stop being updated, got %d updates", w.updates)
	}
	if r.Mediator().Len() != 0 {
		t.Fatalf("expected the mediator to drop the destroyed provider")
	}
}

func TestTickTracesDigest(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.TraceLevel)
	frame := body.NewFrame(1.6)
	r, err := New(Config{Log: log, Frame: frame})
	if err != nil {
		t.Fatal(err)
	}

	r.Tick()
	var found bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.TraceLevel && entry.Data["digest"] == body.Digest(frame) {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected the pose digest to be traced")
	}
}

func TestRigMetrics(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	mt := metrics.New(prometheus.NewRegistry())
	r, err := New(Config{Log: log, Frame: body.NewFrame(1.6), Metrics: mt})
	if err != nil {
		t.Fatal(err)
	}
	r.Add(&walker{})
	for i := 0; i < 4; i++ {
		r.Tick()
	}
	if got := testutil.ToFloat64(mt.Applied.WithLabelValues("translate")); got != 3 {
		t.Fatalf("expected 3 translations, got %v", got)
	}
	if got := testutil.ToFloat64(mt.Transitions.WithLabelValues("moving")); got != 1 {
		t.Fatalf("expected 1 transition to moving, got %v", got)
	}
}

func TestRun(t *testing.T) {
	r := newRig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	moves := 0
	r.Add(&walker{onMove: func(*walker) {
		moves++
		if moves == 3 {
			cancel()
		}
	}})
	if err := r.Run(ctx, 1000); err != nil {
		t.Fatalf("expected a clean stop, got %v", err)
	}
	if z := r.Frame().Position.Z(); z < 3 {
		t.Fatalf("expected at least 3 steps, got z=%v", z)
	}
}

func TestRunRecoversPanic(t *testing.T) {
	r := newRig(t)
	r.Add(&walker{onMove: func(*walker) {
		panic("provider failure")
	}})
	err := r.Run(context.Background(), 1000)
	if err == nil {
		t.Fatalf("expected the panic to be returned as an error")
	}
	var oerr *oerror.Error
	if !errors.As(err, &oerr) {
		t.Fatalf("expected an *oerror.Error, got %T", err)
	}
}

func TestRunInvalidTickRate(t *testing.T) {
	r := newRig(t)
	if err := r.Run(context.Background(), 0); !errors.Is(err, oerror.ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
}

func TestClose(t *testing.T) {
	m := &manipulator{}
	log, _ := logtest.NewNullLogger()
	r, err := New(Config{Log: log, Frame: body.NewFrame(1.6), Manipulator: m})
	if err != nil {
		t.Fatal(err)
	}
	if m.LinkedBody() == nil {
		t.Fatalf("expected the manipulator to be linked")
	}
	r.Close()
	if m.LinkedBody() != nil || r.Transformer().Enabled() {
		t.Fatalf("expected close to disable the transformer")
	}
}

type manipulator struct {
	body.ManipulatorBase
}

func (m *manipulator) MoveBody(motion mgl32.Vec3) body.CollisionFlags {
	f := m.LinkedBody().Frame()
	f.Position = f.Position.Add(motion)
	return body.CollisionNone
}

func TestGroupTick(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	pool := worker.New(2, log)
	defer pool.Close()

	g := NewGroup(pool)
	for i := 0; i < 5; i++ {
		r := newRig(t)
		r.Add(&walker{})
		g.Add(r)
	}
	for i := 0; i < 3; i++ {
		g.Tick()
	}
	for i, r := range g.Rigs() {
		if z := r.Frame().Position.Z(); z != 2 {
			t.Fatalf("expected rig %d at z=2, got %v", i, z)
		}
	}
}

func TestGroupRun(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	pool := worker.New(2, log)
	defer pool.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r := newRig(t)
	r.Add(&walker{onMove: func(w *walker) {
		if w.updates >= 4 {
			cancel()
		}
	}})
	g := NewGroup(pool, r)
	if err := g.Run(ctx, 1000); err != nil {
		t.Fatalf("expected a clean stop, got %v", err)
	}
	if err := g.Run(ctx, -1); !errors.Is(err, oerror.ErrInvalidSettings) {
		t.Fatalf("expected ErrInvalidSettings, got %v", err)
	}
}

func TestGroupTickDropsWorkOfPanickingTick(t *testing.T) {
	log, _ := logtest.NewNullLogger()
	pool := worker.New(1, log)
	defer pool.Close()

	r := newRig(t)
	var broke bool
	r.Add(&walker{onMove: func(w *walker) {
		if !broke {
			broke = true
			w.TryQueueTransformationWithPriority(transformation.Delegate{Fn: func(*body.MovableBody) {
				panic("broken transformation")
			}}, -1)
		}
	}})
	g := NewGroup(pool, r)

	// Tick 2 panics before its step is applied; tick 3 applies only its own step.
	for i := 0; i < 3; i++ {
		g.Tick()
	}
	if r.Transformer().Pending() != 0 {
		t.Fatalf("expected an empty queue, got %d", r.Transformer().Pending())
	}
	if z := r.Frame().Position.Z(); z != 1 {
		t.Fatalf("expected the step of the panicking tick to be dropped, got z=%v", z)
	}
}
