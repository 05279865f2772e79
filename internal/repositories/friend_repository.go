package repositories

import (
	"context"
	"time"

	"github.com/circles/backend/internal/models"
)

// FriendRepository defines data access for pending friend requests.
type FriendRepository interface {
	FindOrCreate(ctx context.Context, fromUser, toUser string, now time.Time) (models.FriendRequest, bool, error)
	FindByID(ctx context.Context, id string) (models.FriendRequest, error)
	FindByRecipientAndID(ctx context.Context, toUser, id string) (models.FriendRequest, error)
	Delete(ctx context.Context, id string) error
	CountRecent(ctx context.Context, fromUser string, since time.Time) (int, error)
	ListSenderEmails(ctx context.Context, toUser string) ([]string, error)
}
