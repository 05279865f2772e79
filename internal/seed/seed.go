// Package seed fills a development database with generated accounts.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/circles/backend/internal/logging"
	"github.com/circles/backend/internal/models"
	"github.com/circles/backend/internal/repositories"
)

// DefaultPassword is shared by every seeded account so developers can log in.
const DefaultPassword = "circles-dev-password"

// UserCreator persists new accounts.
type UserCreator interface {
	Create(ctx context.Context, user models.User) error
}

// Users generates count accounts from a deterministic faker. Every account
// shares passwordHash.
func Users(faker *gofakeit.Faker, count int, passwordHash string, now time.Time) []models.User {
	out := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		first := faker.FirstName()
		last := faker.LastName()
		created := now.Add(time.Duration(i) * time.Second).UTC()
		out = append(out, models.User{
			ID:        uuid.NewString(),
			Email:     fmt.Sprintf("%s.%s.%d@example.com", emailPart(first), emailPart(last), i+1),
			FirstName: first,
			LastName:  last,
			Password:  passwordHash,
			CreatedAt: created,
			UpdatedAt: created,
		})
	}
	return out
}

// Run generates and stores count accounts, skipping any email that already
// exists. It returns how many accounts were created.
func Run(ctx context.Context, users UserCreator, count int, seed int64) (int, error) {
	if count <= 0 {
		return 0, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("hash seed password: %w", err)
	}

	logger := logging.FromContext(ctx)
	created := 0
	for _, user := range Users(gofakeit.New(seed), count, string(hash), time.Now()) {
		if err := users.Create(ctx, user); err != nil {
			if errors.Is(err, repositories.ErrConflict) {
				logger.Debug("seed account exists", "email", user.Email)
				continue
			}
			return created, fmt.Errorf("create seed account %s: %w", user.Email, err)
		}
		created++
	}

	logger.Info("seeded accounts", "created", created, "requested", count)
	return created, nil
}

func emailPart(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "user"
	}
	return b.String()
}
