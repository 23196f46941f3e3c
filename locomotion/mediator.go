package locomotion

import (
	"github.com/elliotchance/orderedmap/v2"
	"github.com/google/uuid"
	"github.com/oomph-ac/locomotion/metrics"
	"github.com/sirupsen/logrus"
)

// providerRecord is the state the mediator keeps for a single provider.
type providerRecord struct {
	state    State
	endFrame uint64
}

// Mediator arbitrates which providers may move the body. It tracks the state of every provider that
// requested locomotion, and hands the transformer to providers as they enter the Moving state.
type Mediator struct {
	log         *logrus.Logger
	transformer *Transformer
	metrics     *metrics.Metrics

	clock    Clock
	ownClock *FrameCounter

	providers *orderedmap.OrderedMap[Provider, *providerRecord]
}

// NewMediator returns a Mediator that lends transformer to moving providers. If clock is nil, the
// mediator counts ticks itself and advances the count at the start of every Update.
func NewMediator(log *logrus.Logger, transformer *Transformer, clock Clock) *Mediator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	m := &Mediator{
		log:         log,
		transformer: transformer,
		clock:       clock,
		providers:   orderedmap.NewOrderedMap[Provider, *providerRecord](),
	}
	if clock == nil {
		m.ownClock = &FrameCounter{}
		m.clock = m.ownClock
	}
	if transformer == nil {
		log.Error("locomotion mediator created without a body transformer, providers will not be able to move")
	}
	return m
}

// SetMetrics sets the collectors the mediator records transitions to.
func (m *Mediator) SetMetrics(mt *metrics.Metrics) {
	m.metrics = mt
}

// Transformer returns the transformer lent to moving providers.
func (m *Mediator) Transformer() *Transformer {
	return m.transformer
}

// Attach binds the provider to the mediator, so that its request methods go through m. No record is
// created until the provider first requests locomotion. A provider attached to another mediator is
// ended and forgotten there first.
func (m *Mediator) Attach(p Provider) {
	b := p.Base()
	if old := b.mediator; old != nil && old != m {
		old.TryEndLocomotion(p)
		old.providers.Delete(p)
		b.cancelPendingStep()
	}
	b.self = p
	b.mediator = m
	if b.id == uuid.Nil {
		b.id = uuid.New()
	}
}

// Len returns the number of providers the mediator holds a record for.
func (m *Mediator) Len() int {
	return m.providers.Len()
}

// GetProviderLocomotionState returns the state of the provider. A provider the mediator holds no
// record for is Idle.
func (m *Mediator) GetProviderLocomotionState(p Provider) State {
	if rec, ok := m.providers.Get(p); ok {
		return rec.state
	}
	return StateIdle
}

// TryPrepareLocomotion moves the provider to the Preparing state. It fails if the provider is
// already Preparing or Moving.
func (m *Mediator) TryPrepareLocomotion(p Provider) bool {
	if p.Base().Destroyed() {
		return false
	}
	rec := m.record(p)
	if rec.state.Active() {
		return false
	}
	m.setState(p, rec, StatePreparing)
	return true
}

// TryStartLocomotion moves the provider straight to the Moving state, without waiting for
// CanStartMoving. It fails if the provider is already Moving.
func (m *Mediator) TryStartLocomotion(p Provider) bool {
	if p.Base().Destroyed() {
		return false
	}
	rec := m.record(p)
	if rec.state == StateMoving {
		return false
	}
	m.startLocomotion(p, rec)
	return true
}

// TryEndLocomotion moves an active provider to the Ended state. It fails if the provider is neither
// Preparing nor Moving.
func (m *Mediator) TryEndLocomotion(p Provider) bool {
	rec, ok := m.providers.Get(p)
	if !ok || !rec.state.Active() {
		return false
	}
	m.finishLocomotion(p, rec)
	return true
}

// Update runs the per-tick sweep over all providers: records of destroyed providers are dropped,
// Preparing providers that can start moving enter the Moving state, and providers that ended in an
// earlier tick return to Idle.
func (m *Mediator) Update() {
	if m.ownClock != nil {
		m.ownClock.Advance()
	}
	tick := m.clock.CurrentTick()

	for _, p := range m.providers.Keys() {
		rec, ok := m.providers.Get(p)
		if !ok {
			// Removed by a hook run earlier in this sweep.
			continue
		}
		b := p.Base()
		if b.Destroyed() {
			m.providers.Delete(p)
			b.transformer = nil
			m.log.WithField("provider", b.id).Debug("dropped destroyed locomotion provider")
			continue
		}

		switch rec.state {
		case StatePreparing:
			if p.CanStartMoving() {
				m.startLocomotion(p, rec)
			}
		case StateEnded:
			if tick > rec.endFrame {
				m.setState(p, rec, StateIdle)
			}
		}
	}
}

// record returns the record of the provider, creating an Idle one if there is none.
func (m *Mediator) record(p Provider) *providerRecord {
	rec, ok := m.providers.Get(p)
	if !ok {
		rec = &providerRecord{state: StateIdle}
		m.providers.Set(p, rec)
	}
	return rec
}

// startLocomotion moves the provider to the Moving state, lends it the transformer, runs its starting
// hook and notifies its handler, in that order.
func (m *Mediator) startLocomotion(p Provider, rec *providerRecord) {
	m.setState(p, rec, StateMoving)

	b := p.Base()
	b.transformer = m.transformer
	p.OnLocomotionStarting()
	b.handler().HandleLocomotionStarted(p)
}

// finishLocomotion moves the provider to the Ended state. If it was Moving, its handler is notified,
// its ending hook runs and the transformer is taken back, in that order.
func (m *Mediator) finishLocomotion(p Provider, rec *providerRecord) {
	wasMoving := rec.state == StateMoving
	rec.endFrame = m.clock.CurrentTick()
	m.setState(p, rec, StateEnded)
	if !wasMoving {
		return
	}

	b := p.Base()
	b.handler().HandleLocomotionEnded(p)
	p.OnLocomotionEnding()
	b.transformer = nil
}

// setState updates the state held in the record of a provider.
func (m *Mediator) setState(p Provider, rec *providerRecord, state State) {
	rec.state = state
	m.metrics.ObserveTransition(state.String())
	if m.log.IsLevelEnabled(logrus.DebugLevel) {
		m.log.WithFields(logrus.Fields{
			"provider": p.Base().id,
			"state":    state,
			"tick":     m.clock.CurrentTick(),
		}).Debug("locomotion state changed")
	}
}
