package locomotion

import (
	"container/list"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/oomph-ac/locomotion/body"
	"github.com/oomph-ac/locomotion/metrics"
	"github.com/oomph-ac/locomotion/transformation"
	"github.com/sirupsen/logrus"
)

// queuedTransformation is a transformation waiting in the queue of a Transformer.
type queuedTransformation struct {
	transformation transformation.Transformation
	priority       int
}

// Transformer owns a MovableBody and the queue of transformations waiting to be applied to it. All
// queued transformations are applied once per tick, during Update, in ascending priority order.
// Transformations of equal priority are applied in the order they were queued.
type Transformer struct {
	log         *logrus.Logger
	evaluator   body.PositionEvaluator
	manipulator body.ConstrainedManipulator
	metrics     *metrics.Metrics

	body  *body.MovableBody
	queue *list.List

	beforeApply *orderedmap.OrderedMap[uint64, func()]
	nextSubID   uint64
}

// NewTransformer returns a disabled Transformer. Once enabled, the body it constructs uses the
// evaluator passed (an UnderEyeEvaluator if nil) and is linked to manipulator if it is non-nil.
func NewTransformer(log *logrus.Logger, evaluator body.PositionEvaluator, manipulator body.ConstrainedManipulator) *Transformer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Transformer{
		log:         log,
		evaluator:   evaluator,
		manipulator: manipulator,
		queue:       list.New(),
		beforeApply: orderedmap.NewOrderedMap[uint64, func()](),
	}
}

// SetMetrics sets the collectors the transformer records applied transformations to.
func (t *Transformer) SetMetrics(m *metrics.Metrics) {
	t.metrics = m
}

// Enable constructs the MovableBody for the frame passed. A transformer that was already enabled is
// disabled first.
func (t *Transformer) Enable(frame *body.Frame) {
	if t.body != nil {
		t.Disable()
	}
	b := body.New(frame, t.evaluator)
	if t.manipulator != nil {
		b.LinkConstrainedManipulator(t.manipulator)
	}
	t.body = b
}

// Disable unlinks the manipulator from the body and discards the body along with any transformations
// still queued.
func (t *Transformer) Disable() {
	if t.body == nil {
		return
	}
	t.body.UnlinkConstrainedManipulator()
	t.body = nil
	t.discardQueue()
}

// Enabled returns true if the transformer currently owns a body.
func (t *Transformer) Enabled() bool {
	return t.body != nil
}

// Body returns the body owned by the transformer, or nil if the transformer is disabled.
func (t *Transformer) Body() *body.MovableBody {
	return t.body
}

// Pending returns the number of transformations waiting to be applied.
func (t *Transformer) Pending() int {
	return t.queue.Len()
}

// QueueTransformation queues tr to be applied during the next drain. Lower priorities are applied
// first. A transformation queued while a drain is in progress is applied within that same drain,
// ahead of any remaining transformation with a higher priority.
func (t *Transformer) QueueTransformation(tr transformation.Transformation, priority int) {
	if tr == nil {
		return
	}
	q := queuedTransformation{transformation: tr, priority: priority}
	// Walk from the back: most transformations share a priority, so this is usually O(1).
	for e := t.queue.Back(); e != nil; e = e.Prev() {
		if e.Value.(queuedTransformation).priority <= priority {
			t.queue.InsertAfter(q, e)
			return
		}
	}
	t.queue.PushFront(q)
}

// OnBeforeApply registers fn to be called at the start of every Update, before the queue is drained.
// Transformations queued from fn are part of that drain. The function returned cancels the
// registration and may be called from within fn.
func (t *Transformer) OnBeforeApply(fn func()) (cancel func()) {
	id := t.nextSubID
	t.nextSubID++
	t.beforeApply.Set(id, fn)
	return func() {
		t.beforeApply.Delete(id)
	}
}

// Update applies every queued transformation to the body. The queue is empty once Update returns,
// even if a transformation panics.
func (t *Transformer) Update() {
	if t.body == nil {
		t.discardQueue()
		return
	}
	defer t.queue.Init()

	for _, id := range t.beforeApply.Keys() {
		if fn, ok := t.beforeApply.Get(id); ok {
			fn()
		}
	}

	var applied int
	for e := t.queue.Front(); e != nil; e = t.queue.Front() {
		q := t.queue.Remove(e).(queuedTransformation)
		if t.body == nil {
			// The body was disabled by a transformation applied earlier in this drain.
			break
		}
		transformation.Apply(q.transformation, t.body)
		t.metrics.ObserveApplied(transformation.Kind(q.transformation))
		applied++
	}
	t.metrics.ObserveDrain(applied)
}

// discardQueue drops every queued transformation.
func (t *Transformer) discardQueue() {
	if n := t.queue.Len(); n > 0 {
		t.log.Warnf("body transformer is disabled, discarding %d queued transformation(s)", n)
		t.queue.Init()
	}
}
