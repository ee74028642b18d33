package invoice

import "fmt"

// CreationState tracks a single invoice creation attempt. It is never persisted:
// a rejected attempt leaves no rows behind.
type CreationState string

const (
	StateDraft      CreationState = "DRAFT"
	StateValidating CreationState = "VALIDATING"
	StateRejected   CreationState = "REJECTED"
	StateCommitted  CreationState = "COMMITTED"
)

var allowedTransitions = map[CreationState][]CreationState{
	StateDraft:      {StateValidating, StateRejected},
	StateValidating: {StateRejected, StateCommitted},
}

// CanTransitionTo reports whether next is a legal successor state
func (s CreationState) CanTransitionTo(next CreationState) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s CreationState) IsTerminal() bool {
	return s == StateRejected || s == StateCommitted
}

// Creation is the state machine of one creation attempt
type Creation struct {
	state CreationState
}

// NewCreation starts in Draft
func NewCreation() *Creation {
	return &Creation{state: StateDraft}
}

// State returns the current state
func (c *Creation) State() CreationState {
	return c.state
}

// TransitionTo moves to next or returns an error for an illegal move
func (c *Creation) TransitionTo(next CreationState) error {
	if !c.state.CanTransitionTo(next) {
		return fmt.Errorf("invalid invoice creation transition %s -> %s", c.state, next)
	}
	c.state = next
	return nil
}
