package seed

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/circles/backend/internal/models"
	"github.com/circles/backend/internal/repositories"
)

type recordingCreator struct {
	users  map[string]models.User
	failOn int
	calls  int
}

func (r *recordingCreator) Create(_ context.Context, user models.User) error {
	r.calls++
	if r.failOn > 0 && r.calls == r.failOn {
		return errors.New("db down")
	}
	if _, ok := r.users[user.Email]; ok {
		return repositories.ErrConflict
	}
	r.users[user.Email] = user
	return nil
}

func TestUsersAreDeterministic(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	first := Users(gofakeit.New(42), 5, "hash", now)
	second := Users(gofakeit.New(42), 5, "hash", now)

	require.Len(t, first, 5)
	for i := range first {
		assert.Equal(t, first[i].Email, second[i].Email)
		assert.Equal(t, first[i].FirstName, second[i].FirstName)
		assert.NotEqual(t, first[i].ID, second[i].ID)
		assert.Equal(t, strings.ToLower(first[i].Email), first[i].Email)
		assert.True(t, strings.HasSuffix(first[i].Email, "@example.com"))
		assert.Equal(t, now.Add(time.Duration(i)*time.Second), first[i].CreatedAt)
	}
}

func TestRunCreatesAccounts(t *testing.T) {
	creator := &recordingCreator{users: map[string]models.User{}}

	created, err := Run(context.Background(), creator, 3, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, created)
	require.Len(t, creator.users, 3)

	for _, user := range creator.users {
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(DefaultPassword)))
	}

	created, err = Run(context.Background(), creator, 3, 7)
	require.NoError(t, err)
	assert.Zero(t, created, "existing accounts are skipped")
}

func TestRunStopsOnStorageFailure(t *testing.T) {
	creator := &recordingCreator{users: map[string]models.User{}, failOn: 2}

	created, err := Run(context.Background(), creator, 4, 1)
	require.Error(t, err)
	assert.Equal(t, 1, created)
}

func TestRunNothingRequested(t *testing.T) {
	creator := &recordingCreator{users: map[string]models.User{}}

	created, err := Run(context.Background(), creator, 0, 1)
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Zero(t, creator.calls)
}

func TestEmailPart(t *testing.T) {
	assert.Equal(t, "obrien", emailPart("O'Brien"))
	assert.Equal(t, "user", emailPart("---"))
}
