package domain

import (
	"encoding/json"
	"fmt"
	"slices"
)

// QuestionSet is the ordered, append-only set of question IDs already presented.
// The zero value is an empty set ready to use.
type QuestionSet struct {
	ids []string
}

// NewQuestionSet builds a set from ids, dropping duplicates.
func NewQuestionSet(ids ...string) QuestionSet {
	var q QuestionSet
	for _, id := range ids {
		q.MarkAsked(id)
	}
	return q
}

// MarkAsked records id. It returns false if id was already present.
func (q *QuestionSet) MarkAsked(id string) bool {
	if id == "" || q.WasAsked(id) {
		return false
	}
	q.ids = append(q.ids, id)
	return true
}

// WasAsked reports whether id has been presented before.
func (q QuestionSet) WasAsked(id string) bool {
	return slices.Contains(q.ids, id)
}

// IDs returns the asked IDs in the order they were asked.
func (q QuestionSet) IDs() []string {
	return slices.Clone(q.ids)
}

// Len returns the number of asked questions.
func (q QuestionSet) Len() int {
	return len(q.ids)
}

// Clone returns an independent copy.
func (q QuestionSet) Clone() QuestionSet {
	return QuestionSet{ids: slices.Clone(q.ids)}
}

// Validate rejects sets that were decoded with duplicate or empty entries.
func (q QuestionSet) Validate() error {
	seen := make(map[string]struct{}, len(q.ids))
	for _, id := range q.ids {
		if id == "" {
			return fmt.Errorf("empty question id")
		}
		if _, ok := seen[id]; ok {
			return fmt.Errorf("question %q asked twice", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (q QuestionSet) MarshalJSON() ([]byte, error) {
	if q.ids == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(q.ids)
}

// UnmarshalJSON keeps the raw order so Validate can detect tampered state.
func (q *QuestionSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	q.ids = ids
	return nil
}
