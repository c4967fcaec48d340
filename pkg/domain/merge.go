package domain

import "slices"

// SlotUpdate is one proposed change to a slot.
// Only corrections may replace an answered slot; Clear is honoured only with Correction.
type SlotUpdate struct {
	Key        SlotKey `json:"key"`
	Slot       Slot    `json:"slot"`
	Correction bool    `json:"correction,omitempty"`
	Clear      bool    `json:"clear,omitempty"`
}

// SlotDiff is the ordered set of updates derived from a single utterance.
type SlotDiff []SlotUpdate

// Touches reports whether the diff answers or corrects key.
func (d SlotDiff) Touches(key SlotKey) bool {
	for _, u := range d {
		if u.Key != key {
			continue
		}
		if u.Correction || u.Slot.Answered() {
			return true
		}
	}
	return false
}

// Keys lists the distinct keys the diff touches, in order of appearance.
func (d SlotDiff) Keys() []SlotKey {
	var keys []SlotKey
	for _, u := range d {
		if !slices.Contains(keys, u.Key) {
			keys = append(keys, u.Key)
		}
	}
	return keys
}

// Merge applies diff to current and returns the next slot state.
// current is never modified. Applying the same diff twice yields the same result as once.
func Merge(current Slots, diff SlotDiff) Slots {
	next := current.Clone()
	for _, u := range diff {
		applyUpdate(next, u)
	}
	return next
}

func applyUpdate(slots Slots, u SlotUpdate) {
	if u.Key == "" {
		return
	}
	if u.Correction {
		if u.Clear {
			delete(slots, u.Key)
			return
		}
		if !u.Slot.Answered() {
			return
		}
		slots[u.Key] = normalize(u.Slot)
		return
	}

	incoming := normalize(u.Slot)
	if !incoming.Answered() {
		return
	}
	existing, ok := slots[u.Key]
	switch {
	case !ok || !existing.Answered():
		slots[u.Key] = incoming
	case existing.Status == SlotNoPreference && incoming.IsFilled():
		slots[u.Key] = incoming
	case existing.IsFilled() && incoming.IsFilled() && existing.IsList() && incoming.IsList():
		existing.Values = dedupe(append(slices.Clone(existing.Values), incoming.Values...))
		slots[u.Key] = existing
	}
}

func normalize(s Slot) Slot {
	s = s.clone()
	if len(s.Values) > 0 {
		s.Values = dedupe(s.Values)
	}
	if s.Status == SlotNoPreference {
		s.Value = ""
		s.Values = nil
	}
	if s.Status == SlotFilled && s.Value == "" && len(s.Values) == 0 {
		s.Status = SlotUnset
	}
	return s
}
