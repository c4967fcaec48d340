package domain

// Phase is the coarse stage of a planning conversation.
// Phases only move forward; PhaseError is a terminal escape.
type Phase string

const (
	PhaseGathering  Phase = "gathering"  // Asking questions and merging answers
	PhaseEnrichment Phase = "enrichment" // Collaborator adds suggestions
	PhaseSynthesis  Phase = "synthesis"  // Building the PlanDraft
	PhaseConfirming Phase = "confirming" // Waiting for the user to accept the draft
	PhaseConfirmed  Phase = "confirmed"  // Plan persisted (sink state)
	PhaseError      Phase = "error"      // Unrecoverable extraction failure (sink state)
)

var phaseOrder = map[Phase]int{
	PhaseGathering:  0,
	PhaseEnrichment: 1,
	PhaseSynthesis:  2,
	PhaseConfirming: 3,
	PhaseConfirmed:  4,
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	if p == PhaseError {
		return true
	}
	_, ok := phaseOrder[p]
	return ok
}

// Terminal reports whether no further turn can change the conversation.
func (p Phase) Terminal() bool {
	return p == PhaseConfirmed || p == PhaseError
}

// CanAdvanceTo reports whether moving from p to next respects the forward-only rule.
// Staying in the same phase is always allowed.
func (p Phase) CanAdvanceTo(next Phase) bool {
	if p == next {
		return true
	}
	if p.Terminal() {
		return false
	}
	if next == PhaseError {
		return true
	}
	from, ok := phaseOrder[p]
	if !ok {
		return false
	}
	to, ok := phaseOrder[next]
	return ok && to > from
}
