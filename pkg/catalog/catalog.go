// Package catalog holds the planning domains the engine knows about: which slots each
// domain tracks, which questions fill them, how many questions each mode may ask, and
// which tasks a finished plan contains.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"regexp"
	"slices"
	"strings"
	"sync"

	"github.com/aretw0/waypoint/pkg/domain"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Question budget bounds every domain must respect.
const (
	MaxQuickQuestions = 6
	MinSmartQuestions = 6
)

// SlotKind selects how a slot value is parsed out of free text.
type SlotKind string

const (
	KindText       SlotKind = "text"
	KindPlace      SlotKind = "place"
	KindDate       SlotKind = "date"
	KindDuration   SlotKind = "duration"
	KindBudget     SlotKind = "budget"
	KindCompanions SlotKind = "companions"
	KindList       SlotKind = "list"
	KindTransport  SlotKind = "transport"
	KindCount      SlotKind = "count"
	KindEvent      SlotKind = "event"
)

// SlotDef describes one slot of a domain.
type SlotDef struct {
	Key   domain.SlotKey `yaml:"key" json:"key"`
	Label string         `yaml:"label" json:"label"`
	Kind  SlotKind       `yaml:"kind" json:"kind"`
	// Terms are the words a user may use to name the slot ("no budget").
	Terms []string `yaml:"terms" json:"terms,omitempty"`
}

// Question is a prompt that fills exactly one slot.
type Question struct {
	ID      string         `yaml:"id" json:"id"`
	Slot    domain.SlotKey `yaml:"slot" json:"slot"`
	Prompt  string         `yaml:"prompt" json:"prompt"`
	Clarify string         `yaml:"clarify" json:"clarify"`
}

// TaskTemplate renders a task from slot values. Placeholders use the {slot.key} form.
type TaskTemplate struct {
	Title       string           `yaml:"title" json:"title"`
	Description string           `yaml:"description" json:"description,omitempty"`
	Priority    domain.Priority  `yaml:"priority" json:"priority"`
	Requires    []domain.SlotKey `yaml:"requires" json:"requires,omitempty"`
	Unless      []domain.SlotKey `yaml:"unless" json:"unless,omitempty"`
}

// Domain is a planning domain such as travel.
type Domain struct {
	Name     string `yaml:"name" json:"name"`
	Category string `yaml:"category" json:"category"`
	// Title is rendered when every placeholder is filled, otherwise FallbackTitle is used.
	Title         string                   `yaml:"title" json:"title,omitempty"`
	FallbackTitle string                   `yaml:"fallback_title" json:"fallback_title,omitempty"`
	Keywords      []string                 `yaml:"keywords" json:"keywords,omitempty"`
	Slots         []SlotDef                `yaml:"slots" json:"slots"`
	Questions     []Question               `yaml:"questions" json:"questions"`
	Modes         map[domain.Mode][]string `yaml:"modes" json:"modes"`
	Tasks         []TaskTemplate           `yaml:"tasks" json:"tasks,omitempty"`

	keywordRe []*regexp.Regexp
}

// Catalog is the validated set of domains.
type Catalog struct {
	Default string    `yaml:"default" json:"default"`
	Domains []*Domain `yaml:"domains" json:"domains"`

	byName map[string]*Domain
}

var (
	defaultOnce sync.Once
	defaultCat  *Catalog
)

// Default returns the embedded catalog. It panics if the embedded file is invalid,
// which the package tests guard against.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(defaultCatalog)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
		}
		defaultCat = c
	})
	return defaultCat
}

// Load reads and validates a catalog from r.
func Load(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.init(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) init() error {
	if len(c.Domains) == 0 {
		return errors.New("catalog has no domains")
	}
	c.byName = make(map[string]*Domain, len(c.Domains))
	for _, d := range c.Domains {
		if err := d.validate(); err != nil {
			return fmt.Errorf("domain %q: %w", d.Name, err)
		}
		if _, dup := c.byName[d.Name]; dup {
			return fmt.Errorf("domain %q defined twice", d.Name)
		}
		c.byName[d.Name] = d
		d.compileKeywords()
	}
	if c.Default == "" {
		c.Default = c.Domains[len(c.Domains)-1].Name
	}
	if _, ok := c.byName[c.Default]; !ok {
		return fmt.Errorf("default domain %q is not defined", c.Default)
	}
	return nil
}

// Domain looks up a domain by name.
func (c *Catalog) Domain(name string) (*Domain, bool) {
	d, ok := c.byName[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

// Names lists the domain names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.Domains))
	for _, d := range c.Domains {
		names = append(names, d.Name)
	}
	return names
}

// Guess scores utterance against every domain's keywords and returns the best match.
// Ties go to the domain listed first. It returns "" when nothing matches.
func (c *Catalog) Guess(utterance string) string {
	text := strings.ToLower(utterance)
	best, bestScore := "", 0
	for _, d := range c.Domains {
		score := 0
		for _, re := range d.keywordRe {
			score += len(re.FindAllStringIndex(text, -1))
		}
		if score > bestScore {
			best, bestScore = d.Name, score
		}
	}
	return best
}

// Budget returns the questions asked in mode, in asking order.
func (d *Domain) Budget(mode domain.Mode) []*Question {
	ids := d.Modes[mode]
	out := make([]*Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := d.Question(id); ok {
			out = append(out, q)
		}
	}
	return out
}

// Question looks up a question by ID.
func (d *Domain) Question(id string) (*Question, bool) {
	for i := range d.Questions {
		if d.Questions[i].ID == id {
			return &d.Questions[i], true
		}
	}
	return nil, false
}

// Slot looks up a slot definition by key.
func (d *Domain) Slot(key domain.SlotKey) (*SlotDef, bool) {
	for i := range d.Slots {
		if d.Slots[i].Key == key {
			return &d.Slots[i], true
		}
	}
	return nil, false
}

func (d *Domain) validate() error {
	if d.Name == "" {
		return errors.New("missing name")
	}
	d.Name = strings.ToLower(d.Name)
	if d.Category == "" {
		d.Category = d.Name
	}

	for _, s := range d.Slots {
		if s.Key == "" || s.Kind == "" {
			return fmt.Errorf("slot %q needs a key and a kind", s.Key)
		}
	}

	seen := make(map[string]bool)
	for _, q := range d.Questions {
		if q.ID == "" || q.Prompt == "" {
			return errors.New("question needs an id and a prompt")
		}
		if seen[q.ID] {
			return fmt.Errorf("question %q defined twice", q.ID)
		}
		seen[q.ID] = true
		if _, ok := d.Slot(q.Slot); !ok {
			return fmt.Errorf("question %q fills unknown slot %q", q.ID, q.Slot)
		}
	}

	quick, smart := d.Modes[domain.ModeQuick], d.Modes[domain.ModeSmart]
	for mode, ids := range d.Modes {
		if !mode.Valid() {
			return fmt.Errorf("%w: %q", domain.ErrInvalidMode, mode)
		}
		for i, id := range ids {
			if !seen[id] {
				return fmt.Errorf("mode %s references unknown question %q", mode, id)
			}
			if slices.Contains(ids[:i], id) {
				return fmt.Errorf("mode %s lists question %q twice", mode, id)
			}
		}
	}
	if len(quick) == 0 || len(quick) > MaxQuickQuestions {
		return fmt.Errorf("quick mode must ask between 1 and %d questions, has %d", MaxQuickQuestions, len(quick))
	}
	if len(smart) < MinSmartQuestions || len(smart) <= len(quick) {
		return fmt.Errorf("smart mode must ask at least %d questions and more than quick (%d), has %d",
			MinSmartQuestions, len(quick), len(smart))
	}

	for _, t := range d.Tasks {
		if t.Title == "" {
			return errors.New("task template needs a title")
		}
		switch t.Priority {
		case domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow:
		default:
			return fmt.Errorf("task %q has unknown priority %q", t.Title, t.Priority)
		}
	}
	return nil
}

func (d *Domain) compileKeywords() {
	d.keywordRe = d.keywordRe[:0]
	for _, kw := range d.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		d.keywordRe = append(d.keywordRe, regexp.MustCompile(`\b`+regexp.QuoteMeta(kw)+`\b`))
	}
}
