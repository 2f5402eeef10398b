package ports

import "opshub-integrations-layer/internal/domain"

// StateCodec encodes and decodes the self-contained OAuth transaction
// token. Decode must reject anything that is not a token this process
// issued (malformed, forged, or tampered input); freshness is the
// caller's concern.
type StateCodec interface {
	Encode(state *domain.OAuthState) (string, error)
	Decode(encoded string) (*domain.OAuthState, error)
}
