package locomotion

// ProviderHandler receives the notifications of a provider. Handlers are how external systems, such
// as feedback or effects, observe locomotion without taking part in it.
type ProviderHandler interface {
	// HandleLocomotionStarted is called once the provider has entered the Moving state.
	HandleLocomotionStarted(p Provider)
	// HandleLocomotionEnded is called when the provider leaves the Moving state, before the
	// provider's own ending hook runs.
	HandleLocomotionEnded(p Provider)
	// HandleBeforeStepLocomotion is called at most once per tick, right before the transformer
	// applies its queue, if the provider queued a transformation since the last time it was called.
	HandleBeforeStepLocomotion(p Provider)
}

// NopProviderHandler implements ProviderHandler without doing anything.
type NopProviderHandler struct{}

func (NopProviderHandler) HandleLocomotionStarted(Provider)    {}
func (NopProviderHandler) HandleLocomotionEnded(Provider)      {}
func (NopProviderHandler) HandleBeforeStepLocomotion(Provider) {}
