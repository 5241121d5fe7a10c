package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/project-vault/internal/apperror"
	"github.com/sakif/project-vault/internal/model"
	"github.com/sakif/project-vault/internal/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo is the users table. Get one from DB.Users.
type UserRepo struct {
	conn *sql.DB
}

func (db *DB) Users() *UserRepo {
	return &UserRepo{conn: db.conn}
}

// Upsert inserts or updates a user keyed by GitHub ID.
//
// An existing row keeps its internal ID and created_at; only the profile
// fields are refreshed. On return user.ID and the timestamps describe the
// stored row.
func (r *UserRepo) Upsert(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()

	var (
		existingID string
		createdAt  time.Time
	)
	err := r.conn.QueryRowContext(ctx,
		`SELECT id, created_at FROM users WHERE github_id = ?`, user.GitHubID,
	).Scan(&existingID, &createdAt)

	switch {
	case err == nil:
		_, err = r.conn.ExecContext(ctx,
			`UPDATE users SET login = ?, email = ?, avatar_url = ?, updated_at = ? WHERE id = ?`,
			user.Login, user.Email, user.AvatarURL, now, existingID,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", existingID, err)
		}
		user.ID = existingID
		user.CreatedAt = createdAt
		user.UpdatedAt = now
		return nil

	case errors.Is(err, sql.ErrNoRows):
		user.ID = xid.New().String()
		user.CreatedAt = now
		user.UpdatedAt = now
		_, err = r.conn.ExecContext(ctx,
			`INSERT INTO users (id, github_id, login, email, avatar_url, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			user.ID, user.GitHubID, user.Login, user.Email, user.AvatarURL, user.CreatedAt, user.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting user (githubID=%d): %w", user.GitHubID, err)
		}
		return nil

	default:
		return fmt.Errorf("sqlite: looking up user (githubID=%d): %w", user.GitHubID, err)
	}
}

func (r *UserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User

	err := r.conn.QueryRowContext(ctx,
		`SELECT id, github_id, login, email, avatar_url, created_at, updated_at
		 FROM users WHERE id = ?`,
		id,
	).Scan(&u.ID, &u.GitHubID, &u.Login, &u.Email, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return &u, nil
}
