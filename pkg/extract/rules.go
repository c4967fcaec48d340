package extract

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/aretw0/waypoint/pkg/catalog"
	"github.com/aretw0/waypoint/pkg/domain"
)

// Rules is the deterministic extractor. It is safe for concurrent use.
type Rules struct {
	catalog *catalog.Catalog
	noPref  map[string][]slotNoPref
	logger  *slog.Logger
}

// RulesOption configures a Rules extractor.
type RulesOption func(*Rules)

// WithRulesLogger sets the logger used for debug traces.
func WithRulesLogger(logger *slog.Logger) RulesOption {
	return func(r *Rules) {
		r.logger = logger
	}
}

// NewRules builds a rule-based extractor for every domain in cat.
func NewRules(cat *catalog.Catalog, opts ...RulesOption) *Rules {
	r := &Rules{
		catalog: cat,
		noPref:  make(map[string][]slotNoPref, len(cat.Domains)),
		logger:  slog.New(slog.DiscardHandler),
	}
	for _, d := range cat.Domains {
		r.noPref[d.Name] = compileNoPref(d)
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var (
	fillerRe     = regexp.MustCompile(`(?i)^(?:hmm+|um+|uh+|huh|what|idk|i don'?t know|not sure|dunno|no idea|maybe|\?+|i'?m not sure|good question|let me think)[ .!?]*$`)
	answerLeadRe = regexp.MustCompile(`(?i)^(?:i'?d like to go to|i want to go to|we'?re going to|i'?m going to|going to|probably|maybe|i think|it'?s|it is|it will be|we'?ll|i'?ll|let'?s say|say|um|uh|well|to|in|at|with)\s+`)
	listSplitRe  = regexp.MustCompile(`(?i)\s*(?:,|;|&|/|\band\b|\bplus\b)\s*`)
	correctToRe  = regexp.MustCompile(`(?i)\b(?:make it|change (?:it|that|the ([\w ]{2,30}?)) to|switch (?:it |that )?to|go with|let'?s do|rather|instead of \w+,?)\s+([\w' ,.$-]{2,60}?)(?:\s+instead)?[.!?]*$`)
)

// maxAnswerWords bounds how long a free-text reply to the pending question may be.
const maxAnswerWords = 12

// Extract implements ports.Extractor.
func (r *Rules) Extract(ctx context.Context, req domain.ExtractRequest) (*domain.ExtractResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := strings.Join(strings.Fields(req.Utterance), " ")
	res := &domain.ExtractResult{Intent: DetectIntent(text)}

	name := req.Domain
	if name == "" {
		name = r.catalog.Guess(text)
		res.DomainGuess = name
		if name == "" {
			name = r.catalog.Default
		}
	}
	def, ok := r.catalog.Domain(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownDomain, name)
	}

	var pending *catalog.Question
	var pendingSlot *catalog.SlotDef
	if req.PendingQuestion != "" {
		if q, ok := def.Question(req.PendingQuestion); ok {
			pending = q
			pendingSlot, _ = def.Slot(q.Slot)
		}
	}

	diff, rest := extractNoPreference(r.noPref[def.Name], text)

	for _, s := range def.Slots {
		if diff.Touches(s.Key) {
			continue
		}
		isPending := pendingSlot != nil && pendingSlot.Key == s.Key
		if slot, ok := parseSlot(s, rest, isPending); ok {
			diff = append(diff, domain.SlotUpdate{Key: s.Key, Slot: slot})
		}
	}

	if pendingSlot != nil && !diff.Touches(pendingSlot.Key) {
		if IsNoPreference(rest) {
			diff = append(diff, domain.SlotUpdate{Key: pendingSlot.Key, Slot: domain.NoPreference(domain.SourceExtracted)})
		} else if slot, ok := freeTextAnswer(*pendingSlot, rest, len(diff) > 0); ok {
			diff = append(diff, domain.SlotUpdate{Key: pendingSlot.Key, Slot: slot})
		}
	}

	if res.Intent == domain.IntentCorrection {
		diff = r.markCorrections(def, diff, req.Slots, rest)
	}

	res.Diff = diff
	res.Unclear = pending != nil && len(diff) == 0

	r.logger.Debug("Extracted slots",
		"domain", def.Name,
		"pending", req.PendingQuestion,
		"keys", diff.Keys(),
		"intent", res.Intent,
		"unclear", res.Unclear)
	return res, nil
}

// markCorrections turns updates of already answered slots into corrections. When nothing
// parsed, "make it X" corrects the slot named in the phrase or the domain's main place slot.
func (r *Rules) markCorrections(def *catalog.Domain, diff domain.SlotDiff, current domain.Slots, text string) domain.SlotDiff {
	corrected := false
	for i, u := range diff {
		if current.Answered(u.Key) && u.Slot.IsFilled() {
			diff[i].Correction = true
			diff[i].Slot.Source = domain.SourceCorrection
			corrected = true
		}
	}
	if corrected {
		return diff
	}

	m := correctToRe.FindStringSubmatch(text)
	if m == nil {
		return diff
	}
	value := strings.Trim(strings.TrimSpace(m[2]), ".,!?")
	target := slotNamed(def, m[1])
	if target == nil {
		for i := range def.Slots {
			if def.Slots[i].Kind == catalog.KindPlace {
				target = &def.Slots[i]
				break
			}
		}
	}
	if target == nil || value == "" {
		return diff
	}
	slot, ok := parseSlot(*target, value, true)
	if !ok {
		slot, ok = freeTextAnswer(*target, value, false)
	}
	if !ok {
		return diff
	}
	slot.Source = domain.SourceCorrection
	out := diff[:0:0]
	for _, u := range diff {
		if u.Key != target.Key {
			out = append(out, u)
		}
	}
	return append(out, domain.SlotUpdate{Key: target.Key, Slot: slot, Correction: true})
}

func slotNamed(def *catalog.Domain, phrase string) *catalog.SlotDef {
	phrase = strings.ToLower(strings.TrimSpace(phrase))
	if phrase == "" {
		return nil
	}
	for i := range def.Slots {
		s := &def.Slots[i]
		for _, t := range append([]string{s.Label}, s.Terms...) {
			if strings.Contains(phrase, strings.ToLower(t)) {
				return s
			}
		}
	}
	return nil
}

// parseSlot runs the parser for one slot definition over text.
func parseSlot(s catalog.SlotDef, text string, pending bool) (domain.Slot, bool) {
	scalar := func(v string, ok bool) (domain.Slot, bool) {
		if !ok || v == "" {
			return domain.Slot{}, false
		}
		return domain.Filled(v, domain.SourceExtracted), true
	}
	list := func(v []string, ok bool) (domain.Slot, bool) {
		if !ok || len(v) == 0 {
			return domain.Slot{}, false
		}
		return domain.FilledList(v, domain.SourceExtracted), true
	}

	switch s.Key {
	case domain.SlotDestination:
		return scalar(parseDestination(text))
	case domain.SlotOrigin:
		return scalar(parseOrigin(text))
	case domain.SlotVenue:
		return scalar(parseVenue(text))
	case domain.SlotPurpose:
		return scalar(parsePurpose(text))
	case domain.SlotActivities:
		return list(parseActivities(text))
	case domain.SlotAccommodation:
		return scalar(parseAccommodation(text))
	case domain.SlotEventType:
		return scalar(parseEventType(text))
	case domain.SlotTheme:
		return scalar(parseTheme(text))
	case domain.SlotFood:
		return list(parseFood(text))
	case domain.SlotGoal:
		return scalar(parseGoal(text))
	}

	switch s.Kind {
	case catalog.KindDate:
		return scalar(parseDate(text))
	case catalog.KindDuration:
		return scalar(parseDuration(text))
	case catalog.KindBudget:
		return scalar(parseBudget(text))
	case catalog.KindCompanions:
		return list(parseCompanions(text))
	case catalog.KindTransport:
		return list(parseTransport(text))
	case catalog.KindCount:
		return scalar(parseGuests(text, pending))
	}
	return domain.Slot{}, false
}

// freeTextAnswer accepts a short reply to the pending question as its value.
// Typed slots (dates, budgets, counts, durations) only accept parsed values. When the
// reply already filled another slot (answered is true), only a place name is taken.
func freeTextAnswer(s catalog.SlotDef, text string, answered bool) (domain.Slot, bool) {
	switch s.Kind {
	case catalog.KindDate, catalog.KindBudget, catalog.KindCount, catalog.KindDuration:
		return domain.Slot{}, false
	}
	if answered && s.Kind != catalog.KindPlace {
		return domain.Slot{}, false
	}
	text = strings.TrimSpace(text)
	if text == "" || fillerRe.MatchString(text) || strings.HasSuffix(text, "?") {
		return domain.Slot{}, false
	}
	if s.Kind != catalog.KindCompanions && aboutCompanions(text) {
		return domain.Slot{}, false
	}
	if DetectIntent(text) == domain.IntentAffirm {
		return domain.Slot{}, false
	}
	if len(strings.Fields(text)) > maxAnswerWords {
		return domain.Slot{}, false
	}
	for {
		trimmed := answerLeadRe.ReplaceAllString(text, "")
		if trimmed == text {
			break
		}
		text = trimmed
	}
	text = strings.Trim(text, " .,!;:")
	if text == "" {
		return domain.Slot{}, false
	}

	switch s.Kind {
	case catalog.KindList, catalog.KindCompanions, catalog.KindTransport:
		var values []string
		for _, v := range listSplitRe.Split(text, -1) {
			if v = strings.TrimSpace(v); v != "" {
				values = append(values, v)
			}
		}
		if len(values) == 0 {
			return domain.Slot{}, false
		}
		return domain.FilledList(values, domain.SourceExtracted), true
	case catalog.KindPlace:
		if place := cutPlace(text); place != "" {
			return domain.Filled(place, domain.SourceExtracted), true
		}
		// "my backyard", "a quiet cabin": short possessive or article phrases
		words := strings.Fields(text)
		if len(words) < 2 || len(words) > 4 || len(findDates(text)) > 0 || !placeDeterminers[strings.ToLower(words[0])] {
			return domain.Slot{}, false
		}
		return domain.Filled(text, domain.SourceExtracted), true
	default:
		return domain.Filled(text, domain.SourceExtracted), true
	}
}

// companionFiller are the words a reply about companions may hold besides the companions.
var companionFiller = toSet(`with my our me us and the a an plus both few some of all
two three four five six seven eight nine ten little young`)

// aboutCompanions reports whether text only says who is coming ("just me", "my wife and kids").
func aboutCompanions(text string) bool {
	if soloRe.MatchString(text) {
		return true
	}
	if !companionRe.MatchString(text) {
		return false
	}
	for _, w := range strings.Fields(companionRe.ReplaceAllString(text, " ")) {
		w = strings.ToLower(strings.Trim(w, ".,;:!?"))
		if w != "" && !companionFiller[w] && !startsWithDigit(w) {
			return false
		}
	}
	return true
}
