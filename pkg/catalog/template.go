package catalog

import (
	"regexp"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

var placeholderRe = regexp.MustCompile(`\{([a-z._]+)\}`)

// Applies reports whether the template should be rendered for slots:
// every required slot is filled and no excluding slot is filled.
func (t TaskTemplate) Applies(slots domain.Slots) bool {
	for _, k := range t.Requires {
		if !slots.Get(k).IsFilled() {
			return false
		}
	}
	for _, k := range t.Unless {
		if slots.Get(k).IsFilled() {
			return false
		}
	}
	return true
}

// Render substitutes {slot.key} placeholders with filled slot values.
func (t TaskTemplate) Render(slots domain.Slots) domain.TaskDraft {
	return domain.TaskDraft{
		Title:       Expand(t.Title, slots),
		Description: Expand(t.Description, slots),
		Priority:    t.Priority,
	}
}

// Expand replaces placeholders in s. Unknown or unfilled keys render empty.
func Expand(s string, slots domain.Slots) string {
	out := placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
		key := domain.SlotKey(m[1 : len(m)-1])
		return slots.Get(key).Display()
	})
	return strings.Join(strings.Fields(out), " ")
}

// RenderTitle renders the domain title for slots. Titles whose placeholders are not all
// filled fall back to FallbackTitle so no-preference answers never appear in a title.
func (d *Domain) RenderTitle(slots domain.Slots) string {
	title := d.Title
	for _, m := range placeholderRe.FindAllStringSubmatch(title, -1) {
		if !slots.Get(domain.SlotKey(m[1])).IsFilled() {
			title = ""
			break
		}
	}
	if title == "" {
		title = d.FallbackTitle
	}
	if title == "" {
		title = "Plan"
	}
	title = Expand(title, slots)
	return strings.ToUpper(title[:1]) + title[1:]
}
