package locomotion

import (
	"github.com/google/uuid"
	"github.com/oomph-ac/locomotion/transformation"
	"github.com/sirupsen/logrus"
)

// Provider is a producer of body transformations. Implementations embed BaseProvider, which supplies
// default hooks and the request methods, and override the hooks they need.
type Provider interface {
	// CanStartMoving reports whether the provider, while Preparing, is ready to move. The mediator
	// checks it once per tick.
	CanStartMoving() bool
	// OnLocomotionStarting is called once the provider has entered the Moving state and has access
	// to the transformer.
	OnLocomotionStarting()
	// OnLocomotionEnding is called when the provider leaves the Moving state. The provider still has
	// access to the transformer while it runs.
	OnLocomotionEnding()
	// Base returns the embedded BaseProvider.
	Base() *BaseProvider
}

// BaseProvider implements the parts of a Provider shared by every locomotion technique. The zero
// value is ready to be embedded; the provider must be attached to a Mediator before it can request
// locomotion.
type BaseProvider struct {
	id   uuid.UUID
	self Provider

	mediator    *Mediator
	transformer *Transformer

	h         ProviderHandler
	destroyed bool

	cancelBeforeStep func()
	queuedTick       uint64
}

// Base ...
func (b *BaseProvider) Base() *BaseProvider {
	return b
}

// CanStartMoving returns true, so providers move as soon as they have prepared unless they override it.
func (b *BaseProvider) CanStartMoving() bool {
	return true
}

// OnLocomotionStarting ...
func (b *BaseProvider) OnLocomotionStarting() {}

// OnLocomotionEnding ...
func (b *BaseProvider) OnLocomotionEnding() {}

// ID returns the identifier assigned to the provider when it was attached to a mediator.
func (b *BaseProvider) ID() uuid.UUID {
	return b.id
}

// Mediator returns the mediator the provider is attached to, or nil.
func (b *BaseProvider) Mediator() *Mediator {
	return b.mediator
}

// Transformer returns the transformer the provider may queue transformations into. It is only
// non-nil while the provider is Moving.
func (b *BaseProvider) Transformer() *Transformer {
	return b.transformer
}

// Handle sets the handler that receives the notifications of the provider. Passing nil resets it.
func (b *BaseProvider) Handle(h ProviderHandler) {
	b.h = h
}

// handler returns the handler of the provider.
func (b *BaseProvider) handler() ProviderHandler {
	if b.h == nil {
		return NopProviderHandler{}
	}
	return b.h
}

// Destroy invalidates the provider. The mediator drops it on its next tick without running any of
// its hooks, and the provider can no longer request locomotion.
func (b *BaseProvider) Destroy() {
	b.destroyed = true
	b.cancelPendingStep()
}

// cancelPendingStep drops the before-step subscription of the provider, if any.
func (b *BaseProvider) cancelPendingStep() {
	if b.cancelBeforeStep != nil {
		b.cancelBeforeStep()
		b.cancelBeforeStep = nil
	}
}

// Destroyed returns true if Destroy was called on the provider.
func (b *BaseProvider) Destroyed() bool {
	return b.destroyed
}

// LocomotionState returns the state of the provider, or StateIdle if it is not attached to a mediator.
func (b *BaseProvider) LocomotionState() State {
	if b.mediator == nil {
		return StateIdle
	}
	return b.mediator.GetProviderLocomotionState(b.self)
}

// IsLocomotionActive returns true if the provider is Preparing or Moving.
func (b *BaseProvider) IsLocomotionActive() bool {
	return b.LocomotionState().Active()
}

// TryPrepareLocomotion asks the mediator to move the provider to the Preparing state.
func (b *BaseProvider) TryPrepareLocomotion() bool {
	if !b.attached() {
		return false
	}
	return b.mediator.TryPrepareLocomotion(b.self)
}

// TryStartLocomotionImmediately asks the mediator to move the provider to the Moving state without
// waiting for CanStartMoving.
func (b *BaseProvider) TryStartLocomotionImmediately() bool {
	if !b.attached() {
		return false
	}
	return b.mediator.TryStartLocomotion(b.self)
}

// TryEndLocomotion asks the mediator to end the locomotion of the provider.
func (b *BaseProvider) TryEndLocomotion() bool {
	if !b.attached() {
		return false
	}
	return b.mediator.TryEndLocomotion(b.self)
}

// TryQueueTransformation queues t with a priority of 0. See TryQueueTransformationWithPriority.
func (b *BaseProvider) TryQueueTransformation(t transformation.Transformation) bool {
	return b.TryQueueTransformationWithPriority(t, 0)
}

// TryQueueTransformationWithPriority queues t into the transformer the provider holds. It returns
// false without queueing anything if the provider holds no transformer, which is the case whenever
// it is not Moving.
func (b *BaseProvider) TryQueueTransformationWithPriority(t transformation.Transformation, priority int) bool {
	if b.destroyed {
		return false
	}
	if b.transformer == nil {
		if b.mediator != nil && b.LocomotionState() == StateMoving {
			b.log().WithFields(logrus.Fields{
				"provider":  b.id,
				"invariant": "moving-without-transformer",
			}).Error("locomotion provider is moving but holds no body transformer")
		}
		return false
	}
	b.transformer.QueueTransformation(t, priority)
	if b.mediator != nil {
		b.queuedTick = b.mediator.clock.CurrentTick()
	}
	if b.cancelBeforeStep == nil {
		b.cancelBeforeStep = b.transformer.OnBeforeApply(b.beforeStep)
	}
	return true
}

// beforeStep notifies the handler once for all transformations queued in the current tick. Work
// queued during an earlier drain was applied there, so it is not notified.
func (b *BaseProvider) beforeStep() {
	b.cancelPendingStep()
	if b.destroyed || b.mediator == nil || b.queuedTick != b.mediator.clock.CurrentTick() {
		return
	}
	b.handler().HandleBeforeStepLocomotion(b.self)
}

// attached returns true if the provider is attached to a mediator, logging an error if it is not.
func (b *BaseProvider) attached() bool {
	if b.destroyed {
		return false
	}
	if b.mediator == nil {
		b.log().Error("locomotion provider has no mediator attached")
		return false
	}
	return true
}

// log returns the logger of the mediator the provider is attached to, or the standard logger.
func (b *BaseProvider) log() *logrus.Logger {
	if b.mediator != nil {
		return b.mediator.log
	}
	return logrus.StandardLogger()
}
