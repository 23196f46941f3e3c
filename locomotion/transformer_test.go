package locomotion

import (
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/body"
	"github.com/oomph-ac/locomotion/metrics"
	"github.com/oomph-ac/locomotion/transformation"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
)

type mockManipulator struct {
	body.ManipulatorBase
}

func (m *mockManipulator) MoveBody(motion mgl32.Vec3) body.CollisionFlags {
	f := m.LinkedBody().Frame()
	f.Position = f.Position.Add(motion)
	return body.CollisionNone
}

// record returns a transformation that appends name to order when applied.
func record(order *[]string, name string) transformation.Transformation {
	return transformation.Delegate{Fn: func(*body.MovableBody) {
		*order = append(*order, name)
	}}
}

func newEnabledTransformer(t *testing.T) *Transformer {
	t.Helper()
	log, _ := logtest.NewNullLogger()
	tr := NewTransformer(log, nil, nil)
	tr.Enable(body.NewFrame(1.6))
	return tr
}

func TestTransformerPriorityOrder(t *testing.T) {
	tr := newEnabledTransformer(t)
	var order []string
	tr.QueueTransformation(record(&order, "p5"), 5)
	tr.QueueTransformation(record(&order, "p-1"), -1)
	tr.QueueTransformation(record(&order, "p0"), 0)
	tr.QueueTransformation(record(&order, "p3"), 3)

	tr.Update()
	if want := []string{"p-1", "p0", "p3", "p5"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
}

func TestTransformerFIFOWithinPriority(t *testing.T) {
	tr := newEnabledTransformer(t)
	var order []string
	tr.QueueTransformation(record(&order, "a"), 1)
	tr.QueueTransformation(record(&order, "x"), 0)
	tr.QueueTransformation(record(&order, "b"), 1)
	tr.QueueTransformation(record(&order, "c"), 1)
	tr.QueueTransformation(record(&order, "y"), 0)

	tr.Update()
	if want := []string{"x", "y", "a", "b", "c"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
}

func TestTransformerLowerPriorityFromOtherProviderFirst(t *testing.T) {
	tr := newEnabledTransformer(t)
	var order []string
	// Provider A queues first, provider B queues afterwards with a lower priority.
	tr.QueueTransformation(record(&order, "A"), 0)
	tr.QueueTransformation(record(&order, "B"), -1)

	tr.Update()
	if want := []string{"B", "A"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
}

func TestTransformerReentrantQueue(t *testing.T) {
	cases := []struct {
		name     string
		priority int
		want     []string
	}{
		{"jumps_ahead_of_remaining", -5, []string{"x", "z", "y"}},
		{"same_priority_ahead_of_higher", 0, []string{"x", "z", "y"}},
		{"after_remaining", 10, []string{"x", "y", "z"}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tr := newEnabledTransformer(t)
			var order []string
			tr.QueueTransformation(transformation.Delegate{Fn: func(*body.MovableBody) {
				order = append(order, "x")
				tr.QueueTransformation(record(&order, "z"), c.priority)
			}}, 0)
			tr.QueueTransformation(record(&order, "y"), 1)

			tr.Update()
			if !reflect.DeepEqual(order, c.want) {
				t.Fatalf("expected %v, got %v", c.want, order)
			}
			if tr.Pending() != 0 {
				t.Fatalf("expected the queue to be drained, %d left", tr.Pending())
			}
		})
	}
}

func TestTransformerDrainsEveryTick(t *testing.T) {
	tr := newEnabledTransformer(t)
	tr.QueueTransformation(transformation.Translate{Displacement: mgl32.Vec3{1, 0, 0}}, 0)
	tr.QueueTransformation(transformation.Translate{Displacement: mgl32.Vec3{0, 0, 1}}, 0)
	if tr.Pending() != 2 {
		t.Fatalf("expected 2 pending transformations, got %d", tr.Pending())
	}

	tr.Update()
	if tr.Pending() != 0 {
		t.Fatalf("expected an empty queue, got %d", tr.Pending())
	}
	if got := tr.Body().Frame().Position; got != (mgl32.Vec3{1, 0, 1}) {
		t.Fatalf("unexpected frame position %v", got)
	}

	// Nothing is applied twice.
	tr.Update()
	if got := tr.Body().Frame().Position; got != (mgl32.Vec3{1, 0, 1}) {
		t.Fatalf("expected the frame to stay put, got %v", got)
	}
}

func TestTransformerBeforeApply(t *testing.T) {
	tr := newEnabledTransformer(t)
	var order []string

	calls := 0
	cancel := tr.OnBeforeApply(func() {
		calls++
		order = append(order, "before")
		tr.QueueTransformation(record(&order, "queued-in-before"), 0)
	})
	var once func()
	once = tr.OnBeforeApply(func() {
		order = append(order, "once")
		once()
	})

	tr.QueueTransformation(record(&order, "queued"), 1)
	tr.Update()
	if want := []string{"before", "once", "queued-in-before", "queued"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}

	order = nil
	cancel()
	tr.Update()
	if len(order) != 0 {
		t.Fatalf("expected cancelled callbacks to stay quiet, got %v", order)
	}
	if calls != 1 {
		t.Fatalf("expected the persistent callback to run once, ran %d times", calls)
	}
}

func TestTransformerLifecycle(t *testing.T) {
	log, hook := logtest.NewNullLogger()
	m := &mockManipulator{}
	tr := NewTransformer(log, body.OriginEvaluator{}, m)

	if tr.Enabled() || tr.Body() != nil {
		t.Fatalf("expected a new transformer to be disabled")
	}
	tr.QueueTransformation(transformation.Translate{}, 0)
	tr.Update()
	if tr.Pending() != 0 {
		t.Fatalf("expected a disabled transformer to discard its queue")
	}
	if entry := hook.LastEntry(); entry == nil || entry.Level != logrus.WarnLevel {
		t.Fatalf("expected a warning for discarded work, got %v", entry)
	}

	frame := body.NewFrame(1.6)
	tr.Enable(frame)
	b := tr.Body()
	if b == nil || b.Frame() != frame {
		t.Fatalf("expected the body to wrap the frame")
	}
	if _, ok := b.Evaluator().(body.OriginEvaluator); !ok {
		t.Fatalf("expected the configured evaluator, got %T", b.Evaluator())
	}
	if b.ConstrainedManipulator() != m || m.LinkedBody() != b {
		t.Fatalf("expected the manipulator to be linked on enable")
	}

	tr.QueueTransformation(transformation.Translate{Displacement: mgl32.Vec3{0, 0, 1}}, 0)
	tr.Update()
	if frame.Position != (mgl32.Vec3{0, 0, 1}) {
		t.Fatalf("expected the translation to go through the manipulator, got %v", frame.Position)
	}

	tr.QueueTransformation(transformation.Translate{}, 0)
	tr.Disable()
	if tr.Enabled() || m.LinkedBody() != nil {
		t.Fatalf("expected disable to discard the body and unlink the manipulator")
	}
	if tr.Pending() != 0 {
		t.Fatalf("expected disable to drop queued work")
	}
}

func TestTransformerDisabledMidDrain(t *testing.T) {
	tr := newEnabledTransformer(t)
	var order []string
	tr.QueueTransformation(transformation.Delegate{Fn: func(*body.MovableBody) {
		order = append(order, "disable")
		tr.Disable()
	}}, 0)
	tr.QueueTransformation(record(&order, "after"), 1)

	tr.Update()
	if want := []string{"disable"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	if tr.Pending() != 0 {
		t.Fatalf("expected an empty queue, got %d", tr.Pending())
	}
}

func TestTransformerPanicEmptiesQueue(t *testing.T) {
	tr := newEnabledTransformer(t)
	var order []string
	tr.QueueTransformation(transformation.Delegate{Fn: func(*body.MovableBody) {
		panic("broken transformation")
	}}, 0)
	tr.QueueTransformation(record(&order, "leftover"), 1)

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected the panic to reach the caller")
			}
		}()
		tr.Update()
	}()
	if tr.Pending() != 0 {
		t.Fatalf("expected an empty queue after a panic, got %d", tr.Pending())
	}
	tr.Update()
	if len(order) != 0 {
		t.Fatalf("expected the leftovers to be dropped, got %v", order)
	}
}

func TestTransformerMetrics(t *testing.T) {
	tr := newEnabledTransformer(t)
	m := metrics.New(prometheus.NewRegistry())
	tr.SetMetrics(m)

	tr.QueueTransformation(transformation.Translate{}, 0)
	tr.QueueTransformation(transformation.Translate{}, 0)
	tr.QueueTransformation(transformation.Scale{Scale: 2}, 0)
	tr.Update()

	if got := testutil.ToFloat64(m.Applied.WithLabelValues("translate")); got != 2 {
		t.Fatalf("expected 2 translations, got %v", got)
	}
	if got := testutil.ToFloat64(m.Applied.WithLabelValues("scale")); got != 1 {
		t.Fatalf("expected 1 scale, got %v", got)
	}
}

func TestTransformerIgnoresNil(t *testing.T) {
	tr := newEnabledTransformer(t)
	tr.QueueTransformation(nil, 0)
	if tr.Pending() != 0 {
		t.Fatalf("expected a nil transformation to be ignored")
	}
}
