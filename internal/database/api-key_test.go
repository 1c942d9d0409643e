package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ChatCRM/entity"
)

func TestApiKeyRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	owner := seedUser(t, s, "boss", entity.AdminType)

	token, err := s.GenerateApiKey(context.Background(), "ci", owner.UserID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	user, err := s.AuthenticateByToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, owner.UserID, user.UserID)

	_, err = s.AuthenticateByToken(context.Background(), "bogus")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.AuthenticateByToken(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRevokedKeyStopsAuthenticating(t *testing.T) {
	s := newTestStorage(t)
	owner := seedUser(t, s, "boss", entity.AdminType)

	token, err := s.GenerateApiKey(context.Background(), "ci", owner.UserID)
	require.NoError(t, err)

	require.NoError(t, s.RevokeApiKey(context.Background(), token[:8], owner.UserID))

	_, err = s.AuthenticateByToken(context.Background(), token)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, s.RevokeApiKey(context.Background(), "nope1234", owner.UserID), ErrNotFound)
}
