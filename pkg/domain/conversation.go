package domain

import (
	"fmt"
	"maps"
	"slices"
	"time"
)

// Role identifies the author of a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single entry of the conversation history.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the explicit state of one planning dialogue.
// The engine receives it on every call and returns an updated copy; it never keeps it.
type Conversation struct {
	ID     string `json:"id"`
	Domain string `json:"domain,omitempty"`
	Mode   Mode   `json:"mode,omitempty"`
	Phase  Phase  `json:"phase"`

	// Slots is authoritative. It is never recomputed from History.
	Slots Slots       `json:"slots"`
	Asked QuestionSet `json:"asked_questions"`

	// Clarifications counts unclear answers per question ID.
	Clarifications map[string]int `json:"clarifications,omitempty"`

	// PendingQuestion is the question ID the last assistant message asked.
	PendingQuestion string `json:"pending_question,omitempty"`

	Enrichment *Enrichment `json:"enrichment,omitempty"`
	Draft      *PlanDraft  `json:"draft,omitempty"`

	CreatedActivityID string `json:"created_activity_id,omitempty"`

	History   []Turn    `json:"history,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Sealed carries the encrypted conversation when it was stored through an
	// encrypting store. Only the store that sealed it can open it.
	Sealed string `json:"sealed,omitempty"`
}

// NewConversation creates an empty conversation in the gathering phase.
func NewConversation(id string) *Conversation {
	return &Conversation{
		ID:             id,
		Phase:          PhaseGathering,
		Slots:          make(Slots),
		Clarifications: make(map[string]int),
	}
}

// Clone returns a deep copy so callers can keep the original untouched.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	out.Slots = c.Slots.Clone()
	out.Asked = c.Asked.Clone()
	out.Clarifications = maps.Clone(c.Clarifications)
	if out.Clarifications == nil {
		out.Clarifications = make(map[string]int)
	}
	out.Enrichment = c.Enrichment.Clone()
	out.Draft = c.Draft.Clone()
	out.History = slices.Clone(c.History)
	return &out
}

// Validate checks the structural invariants of a conversation received from a caller.
func (c *Conversation) Validate() error {
	if c == nil {
		return nil
	}
	if c.Sealed != "" {
		return fmt.Errorf("%w: conversation is sealed", ErrMalformedState)
	}
	if c.Phase != "" && !c.Phase.Valid() {
		return fmt.Errorf("%w: unknown phase %q", ErrMalformedState, c.Phase)
	}
	if c.Mode != "" && !c.Mode.Valid() {
		return fmt.Errorf("%w: %w: %q", ErrMalformedState, ErrInvalidMode, c.Mode)
	}
	if err := c.Asked.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedState, err)
	}
	if err := c.Slots.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedState, err)
	}
	for id, n := range c.Clarifications {
		if n < 0 {
			return fmt.Errorf("%w: negative clarification count for %q", ErrMalformedState, id)
		}
	}
	if c.PendingQuestion != "" && !c.Asked.WasAsked(c.PendingQuestion) {
		return fmt.Errorf("%w: pending question %q was never asked", ErrMalformedState, c.PendingQuestion)
	}
	switch c.Phase {
	case PhaseConfirming:
		if c.Draft == nil {
			return fmt.Errorf("%w: confirming without a draft", ErrMalformedState)
		}
	case PhaseConfirmed:
		if c.CreatedActivityID == "" {
			return fmt.Errorf("%w: confirmed without an activity", ErrMalformedState)
		}
	}
	return nil
}
