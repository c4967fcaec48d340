package domain

import (
	"fmt"
	"slices"
	"strings"
)

// SlotKey names a piece of planning information. Keys are namespaced by concern.
type SlotKey string

const (
	SlotDestination    SlotKey = "location.destination"
	SlotOrigin         SlotKey = "location.origin"
	SlotVenue          SlotKey = "location.venue"
	SlotDate           SlotKey = "timing.date"
	SlotDuration       SlotKey = "timing.duration"
	SlotBudget         SlotKey = "budget.range"
	SlotCompanions     SlotKey = "companions"
	SlotActivities     SlotKey = "activities"
	SlotPurpose        SlotKey = "purpose"
	SlotTransportation SlotKey = "transportation"
	SlotAccommodation  SlotKey = "accommodation"
	SlotEventType      SlotKey = "event.type"
	SlotGuestCount     SlotKey = "event.guests"
	SlotTheme          SlotKey = "event.theme"
	SlotFood           SlotKey = "event.food"
	SlotGoal           SlotKey = "general.goal"
	SlotConstraints    SlotKey = "general.constraints"
)

// SlotStatus is the tri-state of a slot. The zero value means unset.
type SlotStatus string

const (
	SlotUnset        SlotStatus = ""
	SlotFilled       SlotStatus = "filled"
	SlotNoPreference SlotStatus = "no_preference"
)

// SlotSource records where a slot value came from.
type SlotSource string

const (
	SourceExtracted  SlotSource = "extracted"
	SourceProfile    SlotSource = "profile"
	SourceFallback   SlotSource = "fallback"
	SourceCorrection SlotSource = "correction"
)

// Slot is a single typed answer. List slots (companions, activities...) use Values.
type Slot struct {
	Status SlotStatus `json:"status,omitempty"`
	Value  string     `json:"value,omitempty"`
	Values []string   `json:"values,omitempty"`
	Source SlotSource `json:"source,omitempty"`
}

// Filled builds a filled scalar slot.
func Filled(value string, source SlotSource) Slot {
	return Slot{Status: SlotFilled, Value: strings.TrimSpace(value), Source: source}
}

// FilledList builds a filled list slot.
func FilledList(values []string, source SlotSource) Slot {
	return Slot{Status: SlotFilled, Values: dedupe(values), Source: source}
}

// NoPreference builds an explicit "answered, no preference" slot.
func NoPreference(source SlotSource) Slot {
	return Slot{Status: SlotNoPreference, Source: source}
}

// Answered reports whether the slot counts toward progress.
func (s Slot) Answered() bool {
	return s.Status == SlotFilled || s.Status == SlotNoPreference
}

// IsFilled reports whether the slot carries a concrete value.
func (s Slot) IsFilled() bool {
	return s.Status == SlotFilled
}

// IsList reports whether the slot stores multiple values.
func (s Slot) IsList() bool {
	return len(s.Values) > 0
}

// Display renders the slot value for messages. No-preference slots render empty.
func (s Slot) Display() string {
	if s.Status != SlotFilled {
		return ""
	}
	if s.IsList() {
		return joinList(s.Values)
	}
	return s.Value
}

func (s Slot) valid() error {
	switch s.Status {
	case SlotUnset, SlotNoPreference:
		return nil
	case SlotFilled:
		if s.Value == "" && len(s.Values) == 0 {
			return fmt.Errorf("filled slot has no value")
		}
		return nil
	default:
		return fmt.Errorf("unknown slot status %q", s.Status)
	}
}

func (s Slot) clone() Slot {
	s.Values = slices.Clone(s.Values)
	return s
}

// Slots is the authoritative slot state of a conversation.
type Slots map[SlotKey]Slot

// Get returns the slot for key, or the unset zero value.
func (s Slots) Get(key SlotKey) Slot {
	return s[key]
}

// Answered reports whether key is filled or explicitly no-preference.
func (s Slots) Answered(key SlotKey) bool {
	return s[key].Answered()
}

// Clone returns a deep copy.
func (s Slots) Clone() Slots {
	out := make(Slots, len(s))
	for k, v := range s {
		out[k] = v.clone()
	}
	return out
}

// Validate checks every slot for a known status and a value when filled.
func (s Slots) Validate() error {
	for k, v := range s {
		if err := v.valid(); err != nil {
			return fmt.Errorf("slot %s: %w", k, err)
		}
	}
	return nil
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}

func joinList(values []string) string {
	switch len(values) {
	case 0:
		return ""
	case 1:
		return values[0]
	case 2:
		return values[0] + " and " + values[1]
	default:
		return strings.Join(values[:len(values)-1], ", ") + " and " + values[len(values)-1]
	}
}
