package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hkaya/meallogger/internal/apperrors"
)

func TestStaticProvider(t *testing.T) {
	p := NewStaticProvider("")
	assert.False(t, p.HasValidCredential())

	_, err := p.Token()
	assert.True(t, apperrors.Is(err, apperrors.ErrSyncAuthFailed))

	p.SetToken("ya29.token")
	assert.True(t, p.HasValidCredential())
	tok, err := p.Token()
	require.NoError(t, err)
	assert.Equal(t, "ya29.token", tok)

	p.Revoke()
	assert.False(t, p.HasValidCredential())
}

func TestTokenSource(t *testing.T) {
	p := NewStaticProvider("ya29.token")

	src, err := TokenSource(p)
	require.NoError(t, err)
	tok, err := src.Token()
	require.NoError(t, err)
	assert.Equal(t, "ya29.token", tok.AccessToken)

	_, err = TokenSource(NewStaticProvider(""))
	assert.Error(t, err)
}
