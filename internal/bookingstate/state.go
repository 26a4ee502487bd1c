package bookingstate

import (
	"fmt"
	"strings"
)

type State string

const (
	StateDraft      State = "draft"
	StateBooked     State = "booked"
	StateInProgress State = "in_progress"
	StateDeparted   State = "departed"
	StateCompleted  State = "completed"
	StateCancelled  State = "cancelled"
)

// AllStates lists every state in lifecycle order.
func AllStates() []State {
	return []State{StateDraft, StateBooked, StateInProgress, StateDeparted, StateCompleted, StateCancelled}
}

func ParseState(s string) (State, error) {
	switch State(s) {
	case StateDraft, StateBooked, StateInProgress, StateDeparted, StateCompleted, StateCancelled:
		return State(s), nil
	default:
		return "", fmt.Errorf("unknown booking state: %s", s)
	}
}

func (s State) String() string { return string(s) }

// IsTerminal reports whether no transition can leave s.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateCancelled
}

type Action string

const (
	ActionStart         Action = "Start"
	ActionBook          Action = "Book"
	ActionCancel        Action = "Cancel"
	ActionManualConfirm Action = "Manual Confirm"
	ActionFinish        Action = "Finish"
)

func AllActions() []Action {
	return []Action{ActionStart, ActionBook, ActionCancel, ActionManualConfirm, ActionFinish}
}

// ParseAction accepts the display name in any case, with '_' or '-' in place of spaces
// ("manual_confirm", "Manual-Confirm").
func ParseAction(s string) (Action, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	for _, a := range AllActions() {
		if strings.ToLower(string(a)) == norm {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown booking action: %q", s)
}

func (a Action) String() string { return string(a) }
