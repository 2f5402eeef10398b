package domain

import "time"

// StateFreshnessWindow bounds how long an OAuth state token stays valid
// between initiation and callback. Tokens are tamper-evident but not
// single-use; this window is the replay bound.
const StateFreshnessWindow = 10 * time.Minute

// OAuthState is the self-contained transaction token round-tripped
// through the provider redirect. It is never persisted server-side; the
// encoded form is the server's only memory of the transaction.
type OAuthState struct {
	UserID    string
	Provider  string
	ReturnURL string
	Nonce     string
	CreatedAt time.Time
}

// Expired reports whether the token fell outside the freshness window as
// of now.
func (s *OAuthState) Expired(now time.Time) bool {
	return now.Sub(s.CreatedAt) > StateFreshnessWindow
}
