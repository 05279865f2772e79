package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/circles/backend/internal/db"
	"github.com/circles/backend/internal/models"
)

const findOrCreateAttempts = 3

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

// Create persists a new user record.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, email, first_name, last_name, password_hash, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
    `, user.ID, user.Email, user.FirstName, user.LastName, user.Password, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		if pgErrorCode(err) == pgUniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// FindByEmail fetches a user by their email address, ignoring case.
func (r *PostgresUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, email, first_name, last_name, password_hash, created_at, updated_at
        FROM users
        WHERE email = LOWER($1)
    `, email)

	user, err := scanUser(row)
	if err != nil {
		return models.User{}, fmt.Errorf("select user by email: %w", err)
	}
	return user, nil
}

// FindByID fetches a user by identifier. Identifiers that are not UUIDs cannot
// exist and are reported as ErrNotFound.
func (r *PostgresUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.User{}, ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, email, first_name, last_name, password_hash, created_at, updated_at
        FROM users
        WHERE id = $1
    `, id)

	user, err := scanUser(row)
	if err != nil {
		return models.User{}, fmt.Errorf("select user by id: %w", err)
	}
	return user, nil
}

// Search matches the keyword exactly against the email or as a substring of the
// first or last name, all case-insensitively.
func (r *PostgresUserRepository) Search(ctx context.Context, keyword string, limit, offset int) ([]models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	pattern := "%" + likeEscaper.Replace(keyword) + "%"

	rows, err := conn.Query(ctx, `
        SELECT id, email, first_name, last_name, password_hash, created_at, updated_at
        FROM users
        WHERE email = LOWER($1)
           OR first_name ILIKE $2
           OR last_name ILIKE $2
        ORDER BY created_at, id
        LIMIT $3 OFFSET $4
    `, keyword, pattern, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Password, &user.CreatedAt, &user.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// PostgresFriendRepository provides PostgreSQL-backed persistence for friend requests.
type PostgresFriendRepository struct {
	pool db.Pool
}

// NewPostgresFriendRepository constructs a friend repository backed by PostgreSQL.
func NewPostgresFriendRepository(pool db.Pool) *PostgresFriendRepository {
	return &PostgresFriendRepository{pool: pool}
}

// FindOrCreate returns the request for the ordered pair, inserting it when absent.
// The unique pair constraint makes concurrent callers converge on one row; the
// reported flag is true only for the caller whose insert won.
func (r *PostgresFriendRepository) FindOrCreate(ctx context.Context, fromUser, toUser string, now time.Time) (models.FriendRequest, bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.FriendRequest{}, false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	for attempt := 0; attempt < findOrCreateAttempts; attempt++ {
		row := conn.QueryRow(ctx, `
            INSERT INTO friend_requests (id, from_user_id, to_user_id, created_at)
            VALUES ($1, $2, $3, $4)
            ON CONFLICT (from_user_id, to_user_id) DO NOTHING
            RETURNING id, from_user_id, to_user_id, created_at
        `, uuid.NewString(), fromUser, toUser, now.UTC())

		request, err := scanFriendRequest(row)
		if err == nil {
			return request, true, nil
		}
		if pgErrorCode(err) == pgForeignKeyViolation {
			return models.FriendRequest{}, false, ErrNotFound
		}
		if !errors.Is(err, ErrNotFound) {
			return models.FriendRequest{}, false, fmt.Errorf("insert friend request: %w", err)
		}

		// The pair already exists; a new statement sees the committed row.
		row = conn.QueryRow(ctx, `
            SELECT id, from_user_id, to_user_id, created_at
            FROM friend_requests
            WHERE from_user_id = $1 AND to_user_id = $2
        `, fromUser, toUser)

		existing, err := scanFriendRequest(row)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return models.FriendRequest{}, false, fmt.Errorf("select friend request by pair: %w", err)
		}
	}

	return models.FriendRequest{}, false, fmt.Errorf("find or create friend request: pair changed concurrently %d times", findOrCreateAttempts)
}

// FindByID loads a friend request by identifier.
func (r *PostgresFriendRepository) FindByID(ctx context.Context, id string) (models.FriendRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.FriendRequest{}, ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, from_user_id, to_user_id, created_at
        FROM friend_requests
        WHERE id = $1
    `, id)

	request, err := scanFriendRequest(row)
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("select friend request: %w", err)
	}
	return request, nil
}

// FindByRecipientAndID loads a friend request only when it is addressed to toUser,
// so a caller can never observe requests meant for someone else.
func (r *PostgresFriendRepository) FindByRecipientAndID(ctx context.Context, toUser, id string) (models.FriendRequest, error) {
	if _, err := uuid.Parse(id); err != nil {
		return models.FriendRequest{}, ErrNotFound
	}
	if _, err := uuid.Parse(toUser); err != nil {
		return models.FriendRequest{}, ErrNotFound
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, from_user_id, to_user_id, created_at
        FROM friend_requests
        WHERE id = $1 AND to_user_id = $2
    `, id, toUser)

	request, err := scanFriendRequest(row)
	if err != nil {
		return models.FriendRequest{}, fmt.Errorf("select friend request for recipient: %w", err)
	}
	return request, nil
}

// Delete removes a friend request. Removing a missing request is not an error.
func (r *PostgresFriendRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `DELETE FROM friend_requests WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete friend request: %w", err)
	}
	return nil
}

// CountRecent counts requests sent by fromUser at or after since.
func (r *PostgresFriendRepository) CountRecent(ctx context.Context, fromUser string, since time.Time) (int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count int
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM friend_requests
        WHERE from_user_id = $1 AND created_at >= $2
    `, fromUser, since.UTC()).Scan(&count); err != nil {
		return 0, fmt.Errorf("count recent friend requests: %w", err)
	}
	return count, nil
}

// ListSenderEmails returns the email of every sender with an outstanding
// request to toUser, ordered by request creation.
func (r *PostgresFriendRepository) ListSenderEmails(ctx context.Context, toUser string) ([]string, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT u.email
        FROM friend_requests fr
        JOIN users u ON u.id = fr.from_user_id
        WHERE fr.to_user_id = $1
        ORDER BY fr.created_at, fr.id
    `, toUser)
	if err != nil {
		return nil, fmt.Errorf("query friend request senders: %w", err)
	}
	defer rows.Close()

	senders := []string{}
	for rows.Next() {
		var sender string
		if err := rows.Scan(&sender); err != nil {
			return nil, fmt.Errorf("scan friend request sender: %w", err)
		}
		senders = append(senders, sender)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate friend request senders: %w", err)
	}

	return senders, nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName, &user.Password, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

func scanFriendRequest(row pgx.Row) (models.FriendRequest, error) {
	var request models.FriendRequest
	if err := row.Scan(&request.ID, &request.FromUser, &request.ToUser, &request.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.FriendRequest{}, ErrNotFound
		}
		return models.FriendRequest{}, err
	}
	request.CreatedAt = request.CreatedAt.UTC()
	return request, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ FriendRepository = (*PostgresFriendRepository)(nil)
