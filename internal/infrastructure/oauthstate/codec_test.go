package oauthstate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opshub-integrations-layer/internal/domain"
)

func TestCodecRoundTrip(t *testing.T) {
	codec := NewCodec("test-secret")
	issued := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	state := &domain.OAuthState{
		UserID:    "user-42",
		Provider:  domain.ProviderShopify,
		ReturnURL: "/dashboard/settings",
		Nonce:     "nonce-1",
		CreatedAt: issued,
	}

	encoded, err := codec.Encode(state)
	require.NoError(t, err)
	require.NotEmpty(t, encoded)

	decoded, err := codec.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, state.UserID, decoded.UserID)
	assert.Equal(t, state.Provider, decoded.Provider)
	assert.Equal(t, state.ReturnURL, decoded.ReturnURL)
	assert.Equal(t, state.Nonce, decoded.Nonce)
	assert.True(t, decoded.CreatedAt.Equal(issued))
}

func TestCodecRejectsMalformedInput(t *testing.T) {
	codec := NewCodec("test-secret")

	for _, encoded := range []string{"", "not-a-token", "a.b.c"} {
		_, err := codec.Decode(encoded)
		require.Error(t, err)

		var authErr *domain.AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, domain.AuthCodeMalformedState, authErr.Code)
	}
}

func TestCodecRejectsTamperedToken(t *testing.T) {
	codec := NewCodec("test-secret")

	encoded, err := codec.Encode(&domain.OAuthState{
		UserID:    "user-42",
		Provider:  domain.ProviderShopify,
		ReturnURL: "/dashboard/settings",
		Nonce:     "nonce-1",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	// Flip the payload segment; the signature no longer matches.
	parts := strings.Split(encoded, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1][1:] + parts[1][:1] + "." + parts[2]

	_, err = codec.Decode(tampered)
	require.Error(t, err)
}

func TestCodecRejectsForeignSecret(t *testing.T) {
	encoded, err := NewCodec("secret-a").Encode(&domain.OAuthState{
		UserID:    "user-42",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	_, err = NewCodec("secret-b").Decode(encoded)
	require.Error(t, err)
}

func TestCodecDoesNotEvaluateFreshness(t *testing.T) {
	codec := NewCodec("test-secret")
	stale := time.Now().Add(-time.Hour)

	encoded, err := codec.Encode(&domain.OAuthState{
		UserID:    "user-42",
		CreatedAt: stale,
	})
	require.NoError(t, err)

	// Decode succeeds; expiry is the callback handler's decision.
	decoded, err := codec.Decode(encoded)
	require.NoError(t, err)
	assert.True(t, decoded.Expired(time.Now()))
}
