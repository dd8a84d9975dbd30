package user

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/court-docket-backend/internal/auth"
)

func newTestService() (Service, Repository) {
	repo := NewMemoryRepository()
	return NewService(repo, auth.NewBcryptPasswordHasher(4), zerolog.Nop()), repo
}

func TestRegister(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	u, err := svc.Register(ctx, "  Advocate@Example.com ", "password1", " Meera Iyer ")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "advocate@example.com", u.Email)
	require.NotNil(t, u.DisplayName)
	assert.Equal(t, "Meera Iyer", *u.DisplayName)
	assert.NotEqual(t, "password1", u.PasswordHash)
	assert.True(t, u.IsActive)

	_, err = svc.Register(ctx, "advocate@example.com", "password2", "")
	assert.ErrorIs(t, err, ErrEmailAlreadyUsed)

	_, err = svc.Register(ctx, " ", "password1", "")
	assert.ErrorIs(t, err, ErrEmailRequired)

	_, err = svc.Register(ctx, "clerk@example.com", "short", "")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestLogin(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	registered, err := svc.Register(ctx, "advocate@example.com", "password1", "")
	require.NoError(t, err)

	u, err := svc.Login(ctx, "ADVOCATE@example.com", "password1")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)
	require.NotNil(t, u.LastLoginAt)

	stored, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)

	_, err = svc.Login(ctx, "advocate@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, "advocate@example.com", " ")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGetByID(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
