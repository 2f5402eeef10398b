// Package oauthstate encodes the OAuth transaction token that rides
// through the provider redirect. The token is a signed JWT so a tampered
// or forged state fails decoding; freshness is deliberately not checked
// here. The callback handler owns the 10-minute window.
package oauthstate

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"opshub-integrations-layer/internal/domain"
)

type stateClaims struct {
	Provider  string `json:"provider"`
	ReturnURL string `json:"return_url"`
	Nonce     string `json:"nonce"`
	jwt.RegisteredClaims
}

// Codec signs and verifies state tokens with a process-wide secret.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Encode produces the URL-safe encoded form of the token.
func (c *Codec) Encode(state *domain.OAuthState) (string, error) {
	claims := stateClaims{
		Provider:  state.Provider,
		ReturnURL: state.ReturnURL,
		Nonce:     state.Nonce,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  state.UserID,
			IssuedAt: jwt.NewNumericDate(state.CreatedAt.UTC().Truncate(time.Second)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
}

// Decode verifies the signature and shape of an encoded state and
// reconstructs the token. Any parse or signature failure is a malformed
// state; age is not evaluated here.
func (c *Codec) Decode(encoded string) (*domain.OAuthState, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)

	var claims stateClaims
	_, err := parser.ParseWithClaims(encoded, &claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		return nil, domain.NewAuthError(domain.AuthCodeMalformedState, "invalid state")
	}
	if claims.Subject == "" || claims.IssuedAt == nil {
		return nil, domain.NewAuthError(domain.AuthCodeMalformedState, "invalid state")
	}

	return &domain.OAuthState{
		UserID:    claims.Subject,
		Provider:  claims.Provider,
		ReturnURL: claims.ReturnURL,
		Nonce:     claims.Nonce,
		CreatedAt: claims.IssuedAt.Time,
	}, nil
}
