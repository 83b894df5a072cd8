package services

import (
	"context"
	"testing"

	"github.com/rivalsarena/arena-server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService(repo *fakePlayerRepo) AuthService {
	rating := NewRatingService(repo, DefaultRatingPolicy(), testLogger())
	return NewAuthService(repo, rating)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestAuthService(newFakePlayerRepo())

	testCases := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{
			name:    "empty username",
			input:   RegisterInput{Username: "  ", Email: "a@b.c", Password: "longenough", RivalsLevel: 50},
			wantErr: ErrUsernameRequired,
		},
		{
			name:    "short password",
			input:   RegisterInput{Username: "alice", Email: "a@b.c", Password: "short", RivalsLevel: 50},
			wantErr: ErrPasswordTooShort,
		},
		{
			name:    "rivals level out of range",
			input:   RegisterInput{Username: "alice", Email: "a@b.c", Password: "longenough", RivalsLevel: 501},
			wantErr: ErrInvalidRivalsLevel,
		},
		{
			name:    "malformed email",
			input:   RegisterInput{Username: "alice", Email: "not-an-email", Password: "longenough", RivalsLevel: 50},
			wantErr: ErrInvalidEmail,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tc.input)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestRegisterDefaultsAndConflicts(t *testing.T) {
	repo := newFakePlayerRepo()
	svc := newTestAuthService(repo)

	player, err := svc.Register(context.Background(), RegisterInput{
		Username:    "alice",
		Email:       "Alice@Example.com",
		Password:    "longenough",
		RivalsLevel: 120,
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", player.Username)
	assert.Equal(t, "alice@example.com", player.Email)
	assert.Equal(t, models.RolePlayer, player.Role)
	assert.Equal(t, models.DefaultRating, player.Rating)
	assert.Equal(t, "Silver", player.Rank)
	assert.Empty(t, player.PasswordHash, "hash must not leak in responses")

	_, err = svc.Register(context.Background(), RegisterInput{
		Username:    "alice",
		Email:       "other@example.com",
		Password:    "longenough",
		RivalsLevel: 120,
	})
	assert.ErrorIs(t, err, ErrPlayerUsernameConflict)
}

func TestLogin(t *testing.T) {
	repo := newFakePlayerRepo()
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), RegisterInput{
		Username:    "alice",
		Email:       "alice@example.com",
		Password:    "longenough",
		RivalsLevel: 120,
	})
	require.NoError(t, err)

	player, err := svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, "alice", player.Username)
	assert.Empty(t, player.PasswordHash)

	_, err = svc.Login(context.Background(), LoginInput{Email: "alice@example.com", Password: "wrongpass"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), LoginInput{Email: "nobody@example.com", Password: "longenough"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
