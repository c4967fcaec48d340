package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Synthesize builds the PlanDraft for a completed conversation.
// Only filled slots contribute; no-preference answers are left out of the plan.
func Synthesize(def *catalog.Domain, slots domain.Slots, enr *domain.Enrichment) *domain.PlanDraft {
	var facts []string
	for _, s := range def.Slots {
		if v := slots.Get(s.Key); v.IsFilled() {
			facts = append(facts, fmt.Sprintf("%s: %s", capitalize(s.Label), v.Display()))
		}
	}
	if enr != nil {
		facts = append(facts, enr.Notes...)
	}

	draft := &domain.PlanDraft{
		Activity: domain.ActivityDraft{
			Title:       def.RenderTitle(slots),
			Description: strings.Join(facts, ". "),
			Category:    def.Category,
		},
	}
	if draft.Activity.Description != "" {
		draft.Activity.Description += "."
	}
	for _, t := range def.Tasks {
		if t.Applies(slots) {
			draft.Tasks = append(draft.Tasks, t.Render(slots))
		}
	}
	if enr != nil {
		for _, s := range enr.Suggestions {
			draft.Tasks = append(draft.Tasks, domain.TaskDraft{Title: s, Priority: domain.PriorityLow})
		}
	}
	return draft
}

// RenderDraft formats a draft as Markdown for chat transports.
func RenderDraft(d *domain.PlanDraft) string {
	if d == nil {
		return ""
	}
	var b strings.Builder
	fmt.Fprintf(&b, "**%s**\n", d.Activity.Title)
	if d.Activity.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", d.Activity.Description)
	}
	if len(d.Tasks) > 0 {
		b.WriteString("\n")
	}
	for i, t := range d.Tasks {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, t.Title, t.Priority)
		if t.Description != "" {
			fmt.Fprintf(&b, "   %s\n", t.Description)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
