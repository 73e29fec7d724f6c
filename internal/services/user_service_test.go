package services

import (
	"context"
	"testing"

	"gym_manager/internal/models"
	"gym_manager/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserAndAuthenticate(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(repository.NewUserRepository(f.db))
	ctx := context.Background()

	user := &models.User{Username: " coach ", Email: "coach@gym.test"}
	require.NoError(t, svc.CreateUser(ctx, user, "correct-horse"))
	assert.Equal(t, "coach", user.Username)
	assert.Equal(t, string(models.Staff), user.Role)
	assert.NotEqual(t, "correct-horse", user.PasswordHash)

	got, err := svc.Authenticate(ctx, "coach", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate(ctx, "coach", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody", "correct-horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	var ve *ValidationError
	assert.ErrorAs(t, svc.CreateUser(ctx, &models.User{Username: "x", Email: "x@gym.test"}, "short"), &ve)
	assert.ErrorAs(t, svc.CreateUser(ctx, &models.User{Username: "x", Email: "x@gym.test", Role: "owner"}, "long-enough"), &ve)
	assert.ErrorAs(t, svc.CreateUser(ctx, &models.User{Email: "x@gym.test"}, "long-enough"), &ve)
}

func TestGetAllUsers(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(repository.NewUserRepository(f.db))
	ctx := context.Background()

	require.NoError(t, svc.CreateUser(ctx, &models.User{Username: "coach", Email: "coach@gym.test"}, "correct-horse"))
	users, err := svc.GetAllUsers(ctx)
	require.NoError(t, err)
	var names []string
	for _, u := range users {
		names = append(names, u.Username)
	}
	assert.ElementsMatch(t, []string{"frontdesk", "coach"}, names)
}
