package extract

import (
	"regexp"
	"strings"
)

// placeWords captures up to five words after a trigger; cutPlace trims them to a place name.
const placeWords = `((?:[A-Za-z][\w'.&-]*)(?:[ \t]+[A-Za-z][\w'.&-]*){0,4})`

var (
	destinationRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:trip|travel|traveling|travelling|vacation|getaway|holiday|journey|going|go|goes|heading|head|fly|flying|flight|flights|drive|driving|road trip|move|moving|headed|get away)\b(?:[ \t]+\w+){0,3}?[ \t]+to[ \t]+` + placeWords),
		regexp.MustCompile(`(?i)\b(?:visit|visiting|explore|exploring|see|seeing)[ \t]+` + placeWords),
		regexp.MustCompile(`(?i)\b(?:trip|vacation|getaway|holiday|weekend|week)[ \t]+in[ \t]+` + placeWords),
	}
	originRes = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\b(?:driving|leaving|departing|starting|coming|flying|traveling|travelling|heading out|setting off|taking off|drive|leave|depart|start|come|fly|travel)[ \t]+(?:out[ \t]+)?from[ \t]+` + placeWords),
		regexp.MustCompile(`(?i)\b(?:i|we)[ \t]+(?:live|am based|are based|'m based|'re based|am located|'m located)[ \t]+in[ \t]+` + placeWords),
		regexp.MustCompile(`(?i)\b(?:based|located|living)[ \t]+(?:out[ \t]+of|in)[ \t]+` + placeWords),
	}
	// bareFromRe is the lowest priority origin form; the preceding word is checked in code.
	bareFromRe = regexp.MustCompile(`(?i)(\w+)?[ \t]+from[ \t]+` + placeWords)
)

// placeStop ends a place phrase.
var placeStop = toSet(`next this last from on in for with and to by at around during over
tomorrow today tonight weekend weekends week weeks month months year years day days night nights
i we my our me us you because so but then via when where after before until till soon later early late please
instead actually asap it is are was were will would can could should be am
january february march april may june july august september october november december
jan feb mar apr jun jul aug sep sept oct nov dec
monday tuesday wednesday thursday friday saturday sunday or if as than`)

// placeReject discards phrases that start with a verb, pronoun or determiner other than "the".
var placeReject = toSet(`a an my our your his her their some any see visit get be have do take make bring meet celebrate
attend spend stay plan check find book relax go come fly drive there here home it this that them him
first second third fourth fifth beginning middle end start just only`)

var placeDeterminers = toSet(`my our a an the his her their`)

// cutPlace trims a captured phrase to the place name it starts with, or "" if it is not a place.
func cutPlace(phrase string) string {
	words := strings.Fields(phrase)
	var out []string
	for i, w := range words {
		clean := strings.Trim(w, ".,;:!?")
		lower := strings.ToLower(clean)
		if i == 0 && lower == "the" {
			out = append(out, clean)
			continue
		}
		if lower == "" || placeStop[lower] || startsWithDigit(lower) {
			break
		}
		out = append(out, clean)
		if clean != w {
			// punctuation ends the phrase ("Austin, Texas" keeps "Austin")
			break
		}
	}
	if len(out) > 0 && strings.EqualFold(out[0], "the") {
		if len(out) == 1 {
			return ""
		}
		if placeReject[strings.ToLower(out[1])] {
			return ""
		}
	} else if len(out) > 0 && placeReject[strings.ToLower(out[0])] {
		return ""
	}
	return strings.Join(out, " ")
}

func parseDestination(text string) (string, bool) {
	for _, re := range destinationRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if place := cutPlace(m[1]); place != "" {
				return place, true
			}
		}
	}
	return "", false
}

func parseOrigin(text string) (string, bool) {
	for _, re := range originRes {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			if place := cutPlace(m[1]); place != "" {
				return place, true
			}
		}
	}
	// "from X" alone, unless it describes someone else arriving ("in from LAX")
	// or a date ("from the 10th").
	for _, m := range bareFromRe.FindAllStringSubmatch(text, -1) {
		prev := strings.ToLower(m[1])
		if prev == "in" || prev == "back" || prev == "away" || prev == "them" || prev == "her" || prev == "him" {
			continue
		}
		if place := cutPlace(m[2]); place != "" {
			return place, true
		}
	}
	return "", false
}

func startsWithDigit(s string) bool {
	return s != "" && s[0] >= '0' && s[0] <= '9'
}

func toSet(words string) map[string]bool {
	out := make(map[string]bool)
	for _, w := range strings.Fields(words) {
		out[w] = true
	}
	return out
}
