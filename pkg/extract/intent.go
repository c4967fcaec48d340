package extract

import (
	"regexp"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

var (
	correctionRe = regexp.MustCompile(`(?i)\b(?:actually|instead|change|changed|switch|correction|make it|rather|scratch that|on second thought|i meant)\b`)
	affirmRe     = regexp.MustCompile(`(?i)^(?:yes|yeah|yep|yup|sure|ok|okay|confirm(?:ed)?|correct|perfect|great|absolutely|definitely|please do|do it|go ahead|go for it|sounds good|sounds great|looks good|looks great|that works|that'?s right|that'?s perfect|lgtm|save it|create it|book it|let'?s do it|let'?s go)\b`)
	planRe       = regexp.MustCompile(`(?i)\b(?:generate|create|make|build|save|finalize|confirm)\s+(?:the\s+|my\s+|this\s+|a\s+)?plan\b`)
	negationRe   = regexp.MustCompile(`(?i)^(?:no|nope|not yet|wait|hold on|don'?t|do not|stop)\b`)
)

// DetectIntent classifies the conversational act of an utterance.
// Corrections win over affirmations ("yes, but actually make it Houston").
func DetectIntent(text string) domain.Intent {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.IntentNone
	}
	if correctionRe.MatchString(text) {
		return domain.IntentCorrection
	}
	if negationRe.MatchString(text) {
		return domain.IntentNone
	}
	if affirmRe.MatchString(text) || planRe.MatchString(text) {
		return domain.IntentAffirm
	}
	return domain.IntentNone
}
