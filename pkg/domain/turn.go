package domain

// TurnRequest is the input of a single dialogue turn.
type TurnRequest struct {
	Input string `json:"input"`
	// Conversation is the state returned by the previous turn; nil starts a new one.
	Conversation *Conversation `json:"conversation,omitempty"`
	Profile      UserProfile   `json:"profile"`
	Mode         Mode          `json:"mode,omitempty"`
	DomainHint   string        `json:"domain,omitempty"`
}

// TurnResponse is the envelope returned for every successful turn.
type TurnResponse struct {
	Message      string        `json:"message"`
	Phase        Phase         `json:"phase"`
	Domain       string        `json:"domain"`
	Conversation *Conversation `json:"conversation"`
	Progress     Progress      `json:"progress"`

	// Question is the ID of the question asked by Message, if any.
	Question string     `json:"question,omitempty"`
	Draft    *PlanDraft `json:"draft,omitempty"`

	CreatedActivity *Activity `json:"created_activity,omitempty"`
	CreatedTasks    []Task    `json:"created_tasks,omitempty"`
}
