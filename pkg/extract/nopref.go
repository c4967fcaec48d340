package extract

import (
	"regexp"
	"strings"

	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
)

// genericNoPrefRe matches a whole utterance that answers "no preference" without naming a slot.
var genericNoPrefRe = regexp.MustCompile(`(?i)^(?:(?:i'?m|i am|we'?re|we are|honestly|really|totally|pretty|it'?s|that'?s|um|uh|well|oh)[ ,]+)*` +
	`(?:flexible|open|none|nothing|no|nope|n/?a|no preference|no preferences|doesn'?t matter|does not matter|don'?t care|do not care|` +
	`not important|not really|anything|anything works|anything is fine|whatever|whatever works|any|skip|pass|up to you|you choose|surprise me|no one|nobody)` +
	`(?:[ ,]+(?:really|at all|for now|thanks|thank you|either way|works|is fine|here))*[ .!]*$`)

// slotNoPref recognizes phrases that decline one named slot ("no budget", "flexible on dates").
type slotNoPref struct {
	key domain.SlotKey
	res []*regexp.Regexp
}

func compileNoPref(def *catalog.Domain) []slotNoPref {
	out := make([]slotNoPref, 0, len(def.Slots))
	for _, s := range def.Slots {
		terms := append([]string{s.Label}, s.Terms...)
		var alts []string
		seen := map[string]bool{}
		for _, t := range terms {
			t = strings.ToLower(strings.TrimSpace(t))
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			alts = append(alts, regexp.QuoteMeta(t))
		}
		if len(alts) == 0 {
			continue
		}
		term := `(?:` + strings.Join(alts, "|") + `)`
		out = append(out, slotNoPref{
			key: s.Key,
			res: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\bno\s+(?:specific\s+|particular\s+|fixed\s+|set\s+|real\s+|strict\s+|exact\s+)?` + term + `\b`),
				regexp.MustCompile(`(?i)\b(?:i'?m\s+|we'?re\s+)?flexible\s+(?:on\s+|with\s+|about\s+|regarding\s+)?(?:the\s+|my\s+|our\s+)?` + term + `\b`),
				regexp.MustCompile(`(?i)\b(?:the\s+)?` + term + `\s+(?:is|are)\s+(?:flexible|open|whatever|not important|tbd|up to you)\b`),
				regexp.MustCompile(`(?i)\b(?:the\s+)?` + term + `\s+(?:doesn'?t|does not|don'?t|do not)\s+matter\b`),
				regexp.MustCompile(`(?i)\b(?:i\s+|we\s+)?(?:don'?t|do not)\s+care\s+(?:about|on)\s+(?:the\s+)?` + term + `\b`),
				regexp.MustCompile(`(?i)\b(?:any|whatever)\s+` + term + `\s+(?:works|is fine|are fine)\b`),
				regexp.MustCompile(`(?i)\b` + term + `\s*[:=-]?\s*(?:none|n/?a|flexible|no preference|whatever|anything)\b`),
			},
		})
	}
	return out
}

// extractNoPreference returns no-preference updates for named slots and the text with
// those phrases blanked out so other parsers don't re-read them.
func extractNoPreference(rules []slotNoPref, text string) (domain.SlotDiff, string) {
	var diff domain.SlotDiff
	for _, r := range rules {
		matched := false
		for _, re := range r.res {
			if re.MatchString(text) {
				matched = true
				text = re.ReplaceAllStringFunc(text, blank)
			}
		}
		if matched {
			diff = append(diff, domain.SlotUpdate{Key: r.key, Slot: domain.NoPreference(domain.SourceExtracted)})
		}
	}
	return diff, text
}

// IsNoPreference reports whether the whole utterance declines to state a preference.
func IsNoPreference(text string) bool {
	return genericNoPrefRe.MatchString(strings.TrimSpace(text))
}

func blank(s string) string {
	return strings.Repeat(" ", len(s))
}
