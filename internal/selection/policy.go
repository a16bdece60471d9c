package selection

// ActionState says which list actions are available.
type ActionState struct {
	Edit   bool
	Delete bool
}

// Policy maps a selection count to the available actions.
type Policy func(count int) ActionState

// DefaultPolicy allows editing exactly one record and deleting any non-empty
// selection.
func DefaultPolicy(count int) ActionState {
	switch {
	case count <= 0:
		return ActionState{}
	case count == 1:
		return ActionState{Edit: true, Delete: true}
	default:
		return ActionState{Delete: true}
	}
}

// PolicyObserver adapts a policy and a sink into an Observer.
func PolicyObserver(policy Policy, apply func(ActionState)) Observer {
	if policy == nil {
		policy = DefaultPolicy
	}
	return func(count int) {
		apply(policy(count))
	}
}
