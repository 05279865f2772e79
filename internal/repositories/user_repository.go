package repositories

import (
	"context"

	"github.com/circles/backend/internal/models"
)

// UserRepository defines the data access contract for users.
type UserRepository interface {
	Create(ctx context.Context, user models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
	Search(ctx context.Context, keyword string, limit, offset int) ([]models.User, error)
}
