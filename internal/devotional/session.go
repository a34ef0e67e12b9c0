package devotional

import "github.com/google/uuid"

// Session is per-reader state the host carries between requests. It replaces
// a process-wide "premium content already generated" flag: each session is
// eligible for premium generation once until Reset.
type Session struct {
	ID               string `json:"id,omitempty"`
	PremiumGenerated bool   `json:"premium_generated"`
}

// NewSession returns a fresh session with a random id.
func NewSession() Session {
	return Session{ID: uuid.NewString()}
}

// claimPremium reports whether the session was still eligible and returns
// the session with the claim recorded.
func (s Session) claimPremium() (Session, bool) {
	if s.PremiumGenerated {
		return s, false
	}
	s.PremiumGenerated = true
	return s, true
}

// Reset makes the session eligible for premium generation again.
func (s Session) Reset() Session {
	s.PremiumGenerated = false
	return s
}
