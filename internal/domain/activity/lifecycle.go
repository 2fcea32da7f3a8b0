package activity

// transitions is the single transition table. It drives both enforcement and
// the valid_transitions affordance surfaced to polling clients, so the two can
// never disagree.
var transitions = map[State][]State{
	StateDraft:     {StateActive, StateCancelled},
	StateActive:    {StatePaused, StateCompleted, StateCancelled},
	StatePaused:    {StateActive, StateCompleted, StateCancelled},
	StateCompleted: {},
	StateCancelled: {},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidTransitions returns the set of states reachable from s. Terminal
// states return an empty (non-nil) slice.
func ValidTransitions(s State) []State {
	out := make([]State, len(transitions[s]))
	copy(out, transitions[s])
	return out
}

// Terminal reports whether no transitions leave s.
func Terminal(s State) bool {
	return len(transitions[s]) == 0
}
