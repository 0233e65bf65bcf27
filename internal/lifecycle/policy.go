package lifecycle

// Policy declares the governed lifecycle model. Policies are compiled
// from CUE files by the compiler package and are immutable afterwards.
type Policy struct {
	// States is the closed state set, in declaration order.
	States []string `json:"states"`

	// Transitions maps a state to its permitted forward targets.
	Transitions map[string][]string `json:"transitions"`

	// Terminal lists states with no outgoing transitions.
	Terminal []string `json:"terminal"`

	// NonProduction lists states that make a part an audit risk when
	// used in a production assembly.
	NonProduction []string `json:"non_production"`
}

// Recognized reports whether state is declared by the policy.
func (p *Policy) Recognized(state string) bool {
	for _, s := range p.States {
		if s == state {
			return true
		}
	}
	return false
}

// Allows reports whether the forward-transition table permits from→to.
func (p *Policy) Allows(from, to string) bool {
	for _, s := range p.Transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether state is terminal.
func (p *Policy) IsTerminal(state string) bool {
	for _, s := range p.Terminal {
		if s == state {
			return true
		}
	}
	return false
}

// NonProductionSet returns the non-production states as a set, the shape
// the audit layer consumes.
func (p *Policy) NonProductionSet() map[string]bool {
	out := make(map[string]bool, len(p.NonProduction))
	for _, s := range p.NonProduction {
		out[s] = true
	}
	return out
}

// DefaultPolicy returns the stock six-state policy used when no CUE
// policy directory is supplied.
func DefaultPolicy() *Policy {
	return &Policy{
		States: []string{"DRAFT", "PROTOTYPE", "ACTIVE", "NRND", "EOL", "OBSOLETE"},
		Transitions: map[string][]string{
			"DRAFT":     {"PROTOTYPE", "ACTIVE"},
			"PROTOTYPE": {"ACTIVE"},
			"ACTIVE":    {"NRND"},
			"NRND":      {"EOL"},
			"EOL":       {"OBSOLETE"},
		},
		Terminal:      []string{"OBSOLETE"},
		NonProduction: []string{"DRAFT", "PROTOTYPE", "EOL", "OBSOLETE"},
	}
}
