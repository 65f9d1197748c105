package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	jwtmw "github.com/Gopher0727/Concord/middleware/jwt"
)

func newAuthService() (IAuthService, *fakeUserRepo) {
	users := newFakeUserRepo()
	tokens := jwtmw.NewTokenManager("test-secret", 1)
	return NewAuthService(users, tokens), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService()

	user, token, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "alice", user.Username)
	require.NotEqual(t, "hunter2hunter2", user.PasswordHash)

	same, token2, err := svc.Login(context.Background(), &LoginRequest{Username: "alice", Password: "hunter2hunter2"})
	require.NoError(t, err)
	require.NotEmpty(t, token2)
	require.Equal(t, user.ID, same.ID)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newAuthService()

	_, _, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, _, err = svc.Register(context.Background(), &RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "hunter2hunter2",
	})
	require.ErrorIs(t, err, ErrUsernameTaken)

	_, _, err = svc.Register(context.Background(), &RegisterRequest{
		Username: "alice2", Email: "alice@example.com", Password: "hunter2hunter2",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterMalformedEmail(t *testing.T) {
	svc, _ := newAuthService()

	_, _, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "alice", Email: "not-an-email", Password: "hunter2hunter2",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthService()

	_, _, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	_, _, err = svc.Login(context.Background(), &LoginRequest{Username: "alice", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown users produce the same error as wrong passwords.
	_, _, err = svc.Login(context.Background(), &LoginRequest{Username: "nobody", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newAuthService()

	user, _, err := svc.Register(context.Background(), &RegisterRequest{
		Username: "alice", Email: "alice@example.com", Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	display := "Alice A."
	bio := "hi"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, &UpdateProfileRequest{
		DisplayName: &display,
		Bio:         &bio,
	})
	require.NoError(t, err)
	require.Equal(t, display, updated.DisplayName)
	require.Equal(t, bio, updated.Bio)

	fetched, err := svc.GetUser(context.Background(), user.ID)
	require.NoError(t, err)
	require.Equal(t, display, fetched.DisplayName)
}
