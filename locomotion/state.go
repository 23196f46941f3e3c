package locomotion

// State is the locomotion state of a provider, as tracked by a Mediator.
type State uint8

const (
	// StateIdle is the state of a provider that is not doing anything. A provider the mediator has no
	// record of is Idle.
	StateIdle State = iota
	// StatePreparing is the state of a provider that requested locomotion and waits for its
	// CanStartMoving condition.
	StatePreparing
	// StateMoving is the state of a provider that may queue transformations.
	StateMoving
	// StateEnded is the state of a provider that ended locomotion during the current tick. It returns
	// to Idle on the first mediator tick after the one it ended in.
	StateEnded
)

// Active returns true if the state is Preparing or Moving.
func (s State) Active() bool {
	return s == StatePreparing || s == StateMoving
}

// String ...
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateMoving:
		return "moving"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}
