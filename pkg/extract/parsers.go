package extract

import (
	"regexp"
	"sort"
	"strings"
)

const (
	monthNames = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`
	weekdays   = `(?:monday|tuesday|wednesday|thursday|friday|saturday|sunday)`
	seasons    = `(?:spring|summer|fall|autumn|winter|christmas|thanksgiving|easter|new year'?s|the holidays|spring break|labor day|memorial day)`
	ordinal    = `\d{1,2}(?:st|nd|rd|th)`
	numberWord = `(?:\d+|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve|fifteen|twenty|thirty|forty|fifty|a hundred|hundred|a dozen|dozen|a few|a couple(?: of)?|several)`
)

// dateRes are ordered from most to least specific; overlapping matches keep the first.
var dateRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:from\s+)?(?:the\s+)?` + ordinal + `\s+(?:to|through|thru|until|till|-)\s+(?:the\s+)?` + ordinal + `\b`),
	regexp.MustCompile(`(?i)\b(?:from\s+)?` + monthNames + `\.?\s+\d{1,2}(?:st|nd|rd|th)?(?:\s*(?:-|–|to|through|thru|until)\s*(?:` + monthNames + `\.?\s+)?\d{1,2}(?:st|nd|rd|th)?)?(?:,?\s+\d{4})?\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2,4})?(?:\s*(?:-|to|through)\s*\d{1,2}/\d{1,2}(?:/\d{2,4})?)?\b`),
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}(?:\s*(?:to|through|-)\s*\d{4}-\d{2}-\d{2})?\b`),
	regexp.MustCompile(`(?i)\b(?:next|this|coming|the following|later this|early next|end of (?:the|this|next))\s+(?:weekend|week|month|year|` + seasons + `|` + weekdays + `)\b`),
	regexp.MustCompile(`(?i)\b(?:in|during|over|around|for|by)\s+(?:early\s+|late\s+|mid[- ]?)?(?:` + monthNames + `|` + seasons + `)\b`),
	regexp.MustCompile(`(?i)\bin\s+` + numberWord + `\s+(?:days?|weeks?|months?)\b`),
	regexp.MustCompile(`(?i)\b(?:on\s+)?(?:the\s+)?` + ordinal + `(?:\s+of\s+` + monthNames + `)?\b`),
	regexp.MustCompile(`(?i)\b(?:on\s+)?` + weekdays + `\b`),
	regexp.MustCompile(`(?i)\b(?:tomorrow|tonight|today|this evening|asap|as soon as possible|end of the month)\b`),
}

var (
	durationRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bfor\s+(?:a\s+|an\s+|about\s+|around\s+|roughly\s+|maybe\s+|the\s+)?(?:` + numberWord + `\s+)?(?:days?|nights?|weeks?|months?|weekend|hours?)(?:\s+(?:a|per|each)\s+(?:day|week|month))?\b`),
		regexp.MustCompile(`(?i)\b` + numberWord + `[- ](?:days?|nights?|weeks?|hours?)(?:\s+(?:a|per|each)\s+(?:day|week|month))?\b`),
		regexp.MustCompile(`(?i)\b(?:a|one)\s+(?:week|weekend|day|night|month)\b`),
	}

	companionRe = regexp.MustCompile(`(?i)\b(girlfriend|boyfriend|wife|husband|partner|spouse|fianc[ée]e?|kids|children|child|son|daughter|family|parents|mom|dad|mother|father|friends?|buddies|coworkers?|colleagues?|sister|brother|siblings|grandparents|grandma|grandpa|baby|toddler|dog|cousins?|roommates?)\b`)
	soloRe      = regexp.MustCompile(`(?i)\b(?:alone|solo|by myself|on my own|just me|only me|just myself)\b`)
	groupRe     = regexp.MustCompile(`(?i)\b(` + numberWord + `)\s+(?:of us|people|adults|travell?ers|persons)\b`)

	transportRes = []struct {
		re    *regexp.Regexp
		value string
	}{
		{regexp.MustCompile(`(?i)\b(?:fly|flying|flies|flew|flight|flights|plane|airline|by air)\b`), "flight"},
		{regexp.MustCompile(`(?i)\b(?:drive|driving|drove|road trip|car|rental car|by car)\b`), "car"},
		{regexp.MustCompile(`(?i)\b(?:train|trains|amtrak|rail)\b`), "train"},
		{regexp.MustCompile(`(?i)\b(?:bus|coach|greyhound)\b`), "bus"},
		{regexp.MustCompile(`(?i)\b(?:cruise|ferry|boat|sail|sailing)\b`), "boat"},
		{regexp.MustCompile(`(?i)\b(?:bike|biking|cycling|bicycle)\b`), "bike"},
	}

	moneyRe     = regexp.MustCompile(`(?i)(?:\b(?:under|below|less than|up to|around|about|roughly|max(?:imum)?|at most|no more than|between)\s+)?(?:[$€£]\s?\d[\d,]*(?:\.\d+)?\s?[kK]?\b|\b\d[\d,]*(?:\.\d+)?\s?[kK]?\s*(?:dollars|bucks|usd|eur|euros|pounds)\b)(?:\s*(?:-|–|to|and)\s*(?:[$€£]\s?)?\d[\d,]*(?:\.\d+)?\s?[kK]?(?:\s*(?:dollars|bucks|usd|euros|pounds))?\b)?`)
	budgetTiers = []struct {
		re    *regexp.Regexp
		value string
	}{
		{regexp.MustCompile(`(?i)\b(?:cheap|cheaply|inexpensive|affordable|budget[- ]friendly|on a budget|tight budget|shoestring|low[- ]cost|frugal|keep it cheap)\b`), "budget-friendly"},
		{regexp.MustCompile(`(?i)\b(?:mid[- ]range|moderate|reasonable|middle of the road|not too expensive)\b`), "mid-range"},
		{regexp.MustCompile(`(?i)\b(?:splurge|luxury|luxurious|high[- ]end|upscale|premium|lavish|money is no object)\b`), "luxury"},
	}

	purposeRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bfor\s+(?:a\s+|an\s+|my\s+|our\s+|the\s+|his\s+|her\s+|their\s+)?((?:[\w']+\s+)?(?:wedding|honeymoon|anniversary|birthday|conference|business|work|meeting|graduation|reunion|funeral|concert|festival|game|bachelorette|bachelor party|interview|retreat|tournament))\b`),
		regexp.MustCompile(`(?i)\b(business trip|work trip|honeymoon|family visit|anniversary trip|birthday trip|babymoon|girls'? trip|guys'? trip|ski trip|beach vacation|vacation|holiday)\b`),
		regexp.MustCompile(`(?i)\bto\s+(celebrate\s+[\w' ]{3,40}?)(?:[.,!?]|$|\s+(?:in|at|with|next|this)\b)`),
	}

	activityRe = regexp.MustCompile(`(?i)\b(hiking|hike|museums?|food tours?|restaurants|dining|eating|beach(?:es)?|shopping|nightlife|bars|sightseeing|concerts?|live music|sports?|golf|golfing|spa|skiing|snowboarding|snorkeling|scuba|diving|surfing|art|galleries|history|theme parks?|zoos?|aquariums?|parks|wine tasting|wineries|breweries|brewery tours?|tours|camping|fishing|kayaking|biking|rodeo|bbq|barbecue|theater|theatre|shows|relaxing|photography)\b`)

	accommodationRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bstay(?:ing)?\s+(with\s+(?:friends|family|relatives|my\s+\w+|our\s+\w+))\b`),
		regexp.MustCompile(`(?i)\b(bed and breakfast|b&b|vacation rental|boutique hotel|hotel|hostel|airbnb|resort|motel|cabin|campsite|camping|inn|condo)\b`),
	}

	eventTypeRe  = regexp.MustCompile(`(?i)\b(surprise party|birthday party|baby shower|bridal shower|graduation party|retirement party|holiday party|dinner party|engagement party|bachelorette party|bachelor party|housewarming(?: party)?|wedding reception|wedding|birthday|shower|reunion|anniversary|graduation|baptism|christening|retirement|fundraiser|game night|potluck|party|gathering|celebration)\b`)
	guestRe      = regexp.MustCompile(`(?i)\b(` + numberWord + `)\s*\+?\s*(?:guests|people|attendees|persons|friends|kids|adults|of us|folks)\b`)
	numberOnlyRe = regexp.MustCompile(`(?i)^\D*?(?:about|around|roughly|maybe|like)?\s*(\d+|` + numberWord + `)\s*(?:guests|people|or so|ish)?\W*$`)
	venueRe      = regexp.MustCompile(`(?i)\b(?:at|in)\s+((?:my|our|a|the|his|her|their)\s+(?:[a-z']+\s+){0,2}?(?:place|house|home|apartment|backyard|yard|garden|restaurant|park|bar|pub|beach|hall|venue|office|club|center|centre|church|hotel|rooftop|barn|winery|brewery|cafe|studio))\b`)
	themeRes     = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b([\w']+(?:\s+[\w']+)?)[- ]themed\b`),
		regexp.MustCompile(`(?i)\btheme\s+(?:is|will be|of|should be)\s+([\w' ]{2,30}?)(?:[.,!?]|$)`),
	}
	foodRe = regexp.MustCompile(`(?i)\b(catering|catered|potluck|bbq|barbecue|pizza|buffet|cake|cupcakes|tacos|finger food|snacks|appetizers|dinner|brunch|cocktails|drinks|desserts|food truck)\b`)
	goalRe = regexp.MustCompile(`(?i)\b(?:help me|i need to|i want to|i'?d like to|we need to|we want to|i'?m trying to)\s+(?:plan|organize|prepare for|prepare|get ready for|figure out|finish|start)?\s*(?:my\s+|our\s+|a\s+|an\s+|the\s+)?([\w' -]{3,60}?)(?:[.!?,]|$|\s+(?:by|before|with|next|this|in)\b)`)
)

type span struct{ start, end int }

// findDates returns every date phrase in order of appearance, skipping overlaps.
func findDates(text string) []string {
	var taken []span
	type hit struct {
		span
		value string
	}
	var hits []hit
	for _, re := range dateRes {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			s := span{loc[0], loc[1]}
			if overlaps(taken, s) {
				continue
			}
			taken = append(taken, s)
			v := strings.TrimSpace(text[s.start:s.end])
			v = strings.TrimPrefix(strings.TrimPrefix(v, "from "), "From ")
			hits = append(hits, hit{span: s, value: v})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].start < hits[j].start })
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.value)
	}
	return out
}

func overlaps(spans []span, s span) bool {
	for _, t := range spans {
		if s.start < t.end && t.start < s.end {
			return true
		}
	}
	return false
}

func parseDate(text string) (string, bool) {
	dates := findDates(text)
	if len(dates) == 0 {
		return "", false
	}
	return strings.Join(dates, ", "), true
}

func parseDuration(text string) (string, bool) {
	for _, re := range durationRes {
		if m := re.FindString(text); m != "" {
			m = strings.TrimSpace(m)
			if len(m) > 4 && strings.EqualFold(m[:4], "for ") {
				m = m[4:]
			}
			return m, true
		}
	}
	return "", false
}

func parseCompanions(text string) ([]string, bool) {
	if soloRe.MatchString(text) {
		return []string{"solo"}, true
	}
	var out []string
	for _, m := range companionRe.FindAllString(text, -1) {
		out = append(out, strings.ToLower(m))
	}
	for _, m := range groupRe.FindAllString(text, -1) {
		out = append(out, strings.ToLower(m))
	}
	return out, len(out) > 0
}

func parseTransport(text string) ([]string, bool) {
	type hit struct {
		pos   int
		value string
	}
	var hits []hit
	for _, t := range transportRes {
		if loc := t.re.FindStringIndex(text); loc != nil {
			hits = append(hits, hit{loc[0], t.value})
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.value)
	}
	return out, len(out) > 0
}

func parseBudget(text string) (string, bool) {
	if m := moneyRe.FindString(text); m != "" {
		return strings.TrimSpace(m), true
	}
	for _, t := range budgetTiers {
		if t.re.MatchString(text) {
			return t.value, true
		}
	}
	return "", false
}

func parsePurpose(text string) (string, bool) {
	for _, re := range purposeRes {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.ToLower(strings.TrimSpace(m[1])), true
		}
	}
	return "", false
}

func parseActivities(text string) ([]string, bool) {
	var out []string
	for _, m := range activityRe.FindAllString(text, -1) {
		out = append(out, strings.ToLower(m))
	}
	return out, len(out) > 0
}

func parseAccommodation(text string) (string, bool) {
	for _, re := range accommodationRes {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.ToLower(m[1]), true
		}
	}
	return "", false
}

func parseEventType(text string) (string, bool) {
	if m := eventTypeRe.FindString(text); m != "" {
		return strings.ToLower(m), true
	}
	return "", false
}

func parseGuests(text string, pending bool) (string, bool) {
	if m := guestRe.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1]) + " guests", true
	}
	if pending {
		if m := numberOnlyRe.FindStringSubmatch(strings.TrimSpace(text)); m != nil {
			return strings.ToLower(m[1]) + " guests", true
		}
	}
	return "", false
}

func parseVenue(text string) (string, bool) {
	if m := venueRe.FindStringSubmatch(text); m != nil {
		return strings.ToLower(m[1]), true
	}
	return "", false
}

func parseTheme(text string) (string, bool) {
	for _, re := range themeRes {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.ToLower(strings.TrimSpace(m[1])), true
		}
	}
	return "", false
}

func parseFood(text string) ([]string, bool) {
	var out []string
	for _, m := range foodRe.FindAllString(text, -1) {
		out = append(out, strings.ToLower(m))
	}
	return out, len(out) > 0
}

func parseGoal(text string) (string, bool) {
	if m := goalRe.FindStringSubmatch(text); m != nil {
		goal := strings.TrimSpace(m[1])
		if len(strings.Fields(goal)) > 0 {
			return goal, true
		}
	}
	return "", false
}
