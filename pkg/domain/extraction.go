package domain

// Intent is the conversational act recognized in an utterance.
type Intent string

const (
	IntentNone       Intent = ""
	IntentAffirm     Intent = "affirm"
	IntentCorrection Intent = "correction"
)

// ExtractRequest is the input of an extractor.
type ExtractRequest struct {
	Utterance string `json:"utterance"`
	// Domain is empty on cold start; the extractor then guesses it.
	Domain string `json:"domain,omitempty"`
	Slots  Slots  `json:"slots,omitempty"`
	// PendingQuestion is the question ID currently awaiting an answer.
	PendingQuestion string `json:"pending_question,omitempty"`
}

// ExtractResult is the proposed slot diff for one utterance. Extractors never mutate state.
type ExtractResult struct {
	DomainGuess string   `json:"domain_guess,omitempty"`
	Diff        SlotDiff `json:"diff,omitempty"`
	Intent      Intent   `json:"intent,omitempty"`
	Unclear     bool     `json:"unclear,omitempty"`
}
