// Package models defines data structures for papertrade
package models

// User represents the platform account as returned by /auth/me.
// The backend uses camelCase field names.
type User struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Email              string   `json:"email"`
	Avatar             string   `json:"avatar,omitempty"`
	OnboardingComplete bool     `json:"onboardingComplete"`
	Experience         string   `json:"experience,omitempty"`
	Interests          []string `json:"interests"`
	Notifications      bool     `json:"notifications"`
}

// Normalize fills defaults on a freshly decoded User so callers never
// branch on absent fields.
func (u *User) Normalize() {
	if u.Experience == "" {
		u.Experience = "beginner"
	}
	if u.Interests == nil {
		u.Interests = []string{}
	}
}

// OnboardingDetails is the payload for POST /user/onboarding.
type OnboardingDetails struct {
	Name               string   `json:"name"`
	Experience         string   `json:"experience"`
	Interests          []string `json:"interests"`
	Notifications      bool     `json:"notifications"`
	OnboardingComplete bool     `json:"onboardingComplete"`
}

// ProfileUpdate is the payload for PUT /user/profile. Zero-valued fields
// are omitted so partial updates do not clobber existing values.
type ProfileUpdate struct {
	Name          string   `json:"name,omitempty"`
	Avatar        string   `json:"avatar,omitempty"`
	Experience    string   `json:"experience,omitempty"`
	Interests     []string `json:"interests,omitempty"`
	Notifications *bool    `json:"notifications,omitempty"`
}
