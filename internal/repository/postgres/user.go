package postgres

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

type UserRepo struct {
	conn  *sql.DB
	table string
}

func (db *DB) Users() *UserRepo {
	return &UserRepo{conn: db.conn, table: db.tables.Users}
}

// Upsert inserts a user or refreshes the profile of the row with the same
// github_id. The proposed id is only used for a fresh row; RETURNING hands
// back whichever id is stored.
func (r *UserRepo) Upsert(ctx context.Context, user *model.User) error {
	now := time.Now().UTC()
	query := fmt.Sprintf(`
		INSERT INTO %s (id, github_id, login, email, avatar_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (github_id) DO UPDATE SET
			login = EXCLUDED.login,
			email = EXCLUDED.email,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at
	`, r.table)

	err := r.conn.QueryRowContext(ctx, query,
		xid.New().String(), user.GitHubID, user.Login, user.Email, user.AvatarURL, now,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return fmt.Errorf("postgres: upserting user (githubID=%d): %w", user.GitHubID, err)
	}
	return nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := fmt.Sprintf(`
		SELECT id, github_id, login, email, avatar_url, created_at, updated_at
		FROM %s WHERE id = $1
	`, r.table)

	var u model.User
	err := r.conn.QueryRowContext(ctx, query, id).
		Scan(&u.ID, &u.GitHubID, &u.Login, &u.Email, &u.AvatarURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("postgres: getting user %s: %w", id, err)
	}
	return &u, nil
}
