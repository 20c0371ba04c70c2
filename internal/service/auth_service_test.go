package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventra/event-ticketing/internal/apperr"
	"github.com/eventra/event-ticketing/internal/model"
)

func signup(role model.Role) SignupInput {
	return SignupInput{
		Name:     "Ada",
		Email:    "ada@example.com",
		Password: "correct-horse",
		Role:     role,
	}
}

func TestSignupAndLogin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	account, pair, err := f.auth.Signup(ctx, signup(model.RoleCustomer))
	require.NoError(t, err)
	assert.Equal(t, model.RoleCustomer, account.Role)
	assert.NotEmpty(t, pair.Access.Token)
	assert.NotEmpty(t, pair.Refresh.Raw)
	assert.NotEmpty(t, account.PasswordHash)
	assert.NotEqual(t, "correct-horse", account.PasswordHash)

	got, _, err := f.auth.Login(ctx, "ada@example.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, account.ID, got.ID)

	// Email matching is case-insensitive.
	_, _, err = f.auth.Login(ctx, "ADA@example.com", "correct-horse")
	require.NoError(t, err)
}

func TestSignupDuplicateEmailConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, _, err := f.auth.Signup(ctx, signup(model.RoleCustomer))
	require.NoError(t, err)

	_, _, err = f.auth.Signup(ctx, signup(model.RoleOrganizer))
	require.Error(t, err)
	ae := apperr.From(err)
	assert.Equal(t, apperr.KindConflict, ae.Kind)
	assert.Equal(t, 409, ae.HTTPStatus())
}

func TestSignupRejectsUnknownRole(t *testing.T) {
	f := newFixture()

	in := signup("admin")
	_, _, err := f.auth.Signup(context.Background(), in)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, _, err := f.auth.Signup(ctx, signup(model.RoleCustomer))
	require.NoError(t, err)

	_, _, wrongPassword := f.auth.Login(ctx, "ada@example.com", "wrong")
	_, _, wrongEmail := f.auth.Login(ctx, "nobody@example.com", "correct-horse")

	for _, err := range []error{wrongPassword, wrongEmail} {
		require.Error(t, err)
		ae := apperr.From(err)
		assert.Equal(t, apperr.KindUnauthenticated, ae.Kind)
		assert.Equal(t, "invalid email or password", ae.Message)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, pair, err := f.auth.Signup(ctx, signup(model.RoleCustomer))
	require.NoError(t, err)

	rotated, err := f.auth.Refresh(ctx, pair.Refresh.Raw)
	require.NoError(t, err)
	assert.NotEqual(t, pair.Refresh.Raw, rotated.Refresh.Raw)

	// The old token is spent.
	_, err = f.auth.Refresh(ctx, pair.Refresh.Raw)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))

	// The new one works.
	_, err = f.auth.Refresh(ctx, rotated.Refresh.Raw)
	require.NoError(t, err)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, pair, err := f.auth.Signup(ctx, signup(model.RoleCustomer))
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, pair.Refresh.Raw))

	err = f.auth.Logout(ctx, pair.Refresh.Raw)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))

	_, err = f.auth.Refresh(ctx, pair.Refresh.Raw)
	require.Error(t, err)

	err = f.auth.Logout(ctx, "never-issued")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}
