package graph

// Default field values for the flat projection. Declared once so every read
// site agrees on what a missing value looks like.
const (
	DefaultBudget   = "unknown"
	DefaultLocation = "unknown"
)

// Preference is a stored preference within one scope (a user, or a
// user+location pair). Type is the merge key: at most one intensity is
// stored per type within a scope.
type Preference struct {
	Type      string `json:"type"`
	Intensity string `json:"intensity"`
}

// PreferenceUpdate is a single entry of an incoming delta. Intensity is
// optional: a nil value means the caller did not state one, and the
// location-scoped write path keeps the previously stored intensity in that
// case.
type PreferenceUpdate struct {
	Type      string  `json:"type" binding:"required"`
	Intensity *string `json:"intensity"`
}

// UserDelta is a partial update to the flat user profile. Absent fields fall
// back to the currently stored values.
type UserDelta struct {
	Budget      *string            `json:"budget"`
	Location    *string            `json:"location"`
	Preferences []PreferenceUpdate `json:"preferences"`
}

// UserSnapshot is the flat (location-independent) projection of a user
type UserSnapshot struct {
	UserID      string       `json:"user_id"`
	Budget      string       `json:"budget"`
	Location    string       `json:"location"`
	Preferences []Preference `json:"preferences"`
}

// LocationPreferences groups a user's preferences under one associated
// location, ordered most recently associated first.
type LocationPreferences struct {
	Location    string       `json:"location"`
	Preferences []Preference `json:"preferences"`
}

func defaultSnapshot(userID string) *UserSnapshot {
	return &UserSnapshot{
		UserID:      userID,
		Budget:      DefaultBudget,
		Location:    DefaultLocation,
		Preferences: []Preference{},
	}
}
