package domain

// UserProfile is the read-only profile the engine uses for defaulting.
type UserProfile struct {
	ID          string         `json:"id,omitempty"`
	Name        string         `json:"name,omitempty"`
	Location    string         `json:"location,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

// ProfilePreferences is the typed view of UserProfile.Preferences.
type ProfilePreferences struct {
	Budget         string   `mapstructure:"budget"`
	Companions     []string `mapstructure:"companions"`
	Activities     []string `mapstructure:"activities"`
	Transportation string   `mapstructure:"transportation"`
	Accommodation  string   `mapstructure:"accommodation"`
	Pace           string   `mapstructure:"pace"`
	Dietary        []string `mapstructure:"dietary"`
}
