package auth

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestService(repo Repository) *Service {
	return NewService(ServiceConfig{
		Repository: repo,
		JWT: NewJWTService(JWTConfig{
			SigningKey: "test-signing-key",
			Issuer:     "roadwatch-test",
			Audience:   "roadwatch-api",
		}),
		Logger:     zerolog.Nop(),
		BcryptCost: bcrypt.MinCost,
	})
}

func registerInput() RegisterInput {
	return RegisterInput{
		BadgeNumber: "TP-4821",
		Name:        "A. Perera",
		Password:    "patrol-route-9",
		Station:     "Colombo Central",
	}
}

func TestRegister(t *testing.T) {
	repo := NewMemoryRepository()
	svc := newTestService(repo)

	sess, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	assert.Equal(t, "TP-4821", sess.Officer.BadgeNumber)
	assert.Equal(t, RoleOfficer, sess.Officer.Role)
	assert.NotEmpty(t, sess.AccessToken)
	assert.True(t, sess.ExpiresAt.After(time.Now()))

	// The password is never stored in the clear.
	stored, err := repo.GetByBadge(context.Background(), "TP-4821")
	require.NoError(t, err)
	assert.NotContains(t, stored.PasswordHash, "patrol-route-9")
}

func TestRegisterDuplicateBadge(t *testing.T) {
	svc := newTestService(NewMemoryRepository())

	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), registerInput())
	assert.ErrorIs(t, err, ErrBadgeAlreadyTaken)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(NewMemoryRepository())

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"missing badge", func(in *RegisterInput) { in.BadgeNumber = "  " }},
		{"missing name", func(in *RegisterInput) { in.Name = "" }},
		{"short password", func(in *RegisterInput) { in.Password = "short" }},
		{"unknown role", func(in *RegisterInput) { in.Role = "superuser" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := registerInput()
			tt.mutate(&in)

			_, err := svc.Register(context.Background(), in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestLogin(t *testing.T) {
	svc := newTestService(NewMemoryRepository())

	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	sess, err := svc.Login(context.Background(), LoginInput{
		BadgeNumber: "TP-4821",
		Password:    "patrol-route-9",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sess.AccessToken)

	claims, err := svc.jwt.ValidateAccessToken(sess.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, sess.Officer.ID.String(), claims.OfficerID)
	assert.Equal(t, RoleOfficer, claims.Role)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(NewMemoryRepository())

	_, err := svc.Register(context.Background(), registerInput())
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), LoginInput{
		BadgeNumber: "TP-4821",
		Password:    "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownBadge(t *testing.T) {
	svc := newTestService(NewMemoryRepository())

	_, err := svc.Login(context.Background(), LoginInput{
		BadgeNumber: "TP-0000",
		Password:    "whatever-password",
	})

	// Indistinguishable from a wrong password.
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
