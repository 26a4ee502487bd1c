package bookingstate

// Transition is one row of the transition table. Allowed=false keeps the row in the
// table while rejecting it.
type Transition struct {
	Action    Action `json:"action"`
	FromState State  `json:"fromState"`
	ToState   State  `json:"toState"`
	Allowed   bool   `json:"allowed"`
}

// Table is an immutable transition table keyed by (from state, action).
// The zero value has no transitions.
type Table struct {
	byState map[State][]Transition
}

// NewTable builds a table from rows. Row order per from-state is preserved and
// determines the order of ValidActions. A later row for the same (state, action)
// replaces the earlier one in place.
func NewTable(rows ...Transition) Table {
	byState := make(map[State][]Transition)
	for _, row := range rows {
		list := byState[row.FromState]
		replaced := false
		for i := range list {
			if list[i].Action == row.Action {
				list[i] = row
				replaced = true
				break
			}
		}
		if !replaced {
			list = append(list, row)
		}
		byState[row.FromState] = list
	}
	return Table{byState: byState}
}

// DefaultTable returns the car-wash booking lifecycle.
func DefaultTable() Table {
	return NewTable(
		Transition{Action: ActionStart, FromState: StateDraft, ToState: StateInProgress, Allowed: true},
		Transition{Action: ActionBook, FromState: StateDraft, ToState: StateBooked, Allowed: true},
		Transition{Action: ActionStart, FromState: StateBooked, ToState: StateInProgress, Allowed: true},
		Transition{Action: ActionCancel, FromState: StateBooked, ToState: StateCancelled, Allowed: true},
		Transition{Action: ActionManualConfirm, FromState: StateInProgress, ToState: StateDeparted, Allowed: true},
		Transition{Action: ActionFinish, FromState: StateInProgress, ToState: StateCompleted, Allowed: true},
		Transition{Action: ActionCancel, FromState: StateInProgress, ToState: StateCancelled, Allowed: true},
		Transition{Action: ActionFinish, FromState: StateDeparted, ToState: StateCompleted, Allowed: true},
	)
}

// Lookup returns the allowed transition for (state, action). ok is false when the
// table has no such row or the row is disallowed.
func (t Table) Lookup(state State, action Action) (Transition, bool) {
	for _, tr := range t.byState[state] {
		if tr.Action == action {
			if !tr.Allowed {
				return Transition{}, false
			}
			return tr, true
		}
	}
	return Transition{}, false
}

func (t Table) IsValidTransition(state State, action Action) bool {
	_, ok := t.Lookup(state, action)
	return ok
}

// ValidActions returns the allowed actions from state in table order. The result is
// never nil so it encodes as [] for terminal states.
func (t Table) ValidActions(state State) []Action {
	out := []Action{}
	for _, tr := range t.byState[state] {
		if tr.Allowed {
			out = append(out, tr.Action)
		}
	}
	return out
}

// Transitions returns a copy of the allowed rows leaving state.
func (t Table) Transitions(state State) []Transition {
	out := []Transition{}
	for _, tr := range t.byState[state] {
		if tr.Allowed {
			out = append(out, tr)
		}
	}
	return out
}
