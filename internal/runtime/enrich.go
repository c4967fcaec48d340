package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// ProfileEnricher suggests additions from the user's stored preferences.
// It only suggests for slots that were never answered, so declined slots stay unmentioned.
type ProfileEnricher struct{}

// Enrich implements ports.Enricher.
func (ProfileEnricher) Enrich(ctx context.Context, conv *domain.Conversation, profile domain.UserProfile) (*domain.Enrichment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prefs, err := DecodePreferences(profile.Preferences)
	if err != nil {
		return nil, err
	}

	enr := &domain.Enrichment{}
	where := ""
	if dest := conv.Slots.Get(domain.SlotDestination); dest.IsFilled() {
		where = " in " + dest.Display()
	}
	unset := func(key domain.SlotKey) bool {
		return conv.Slots.Get(key).Status == domain.SlotUnset
	}

	if unset(domain.SlotActivities) {
		for _, a := range prefs.Activities {
			enr.Suggestions = append(enr.Suggestions, fmt.Sprintf("Look into %s options%s", a, where))
		}
	}
	if prefs.Accommodation != "" && unset(domain.SlotAccommodation) && conv.Domain == "travel" {
		enr.Suggestions = append(enr.Suggestions, fmt.Sprintf("Check %s availability%s", prefs.Accommodation, where))
	}
	if prefs.Transportation != "" && unset(domain.SlotTransportation) && conv.Domain == "travel" {
		enr.Suggestions = append(enr.Suggestions, fmt.Sprintf("Compare %s options%s", prefs.Transportation, where))
	}
	if prefs.Pace != "" {
		enr.Notes = append(enr.Notes, "Preferred pace: "+prefs.Pace)
	}
	if len(prefs.Dietary) > 0 {
		enr.Notes = append(enr.Notes, "Dietary needs: "+strings.Join(prefs.Dietary, ", "))
	}
	return enr, nil
}

// DecodePreferences converts the loosely typed profile preferences into ProfilePreferences.
// A single string where a list is expected is accepted.
func DecodePreferences(raw map[string]any) (domain.ProfilePreferences, error) {
	var prefs domain.ProfilePreferences
	if len(raw) == 0 {
		return prefs, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &prefs,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return prefs, err
	}
	if err := dec.Decode(raw); err != nil {
		return prefs, fmt.Errorf("invalid profile preferences: %w", err)
	}
	return prefs, nil
}
