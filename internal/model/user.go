package model

import "time"

// User is an admin identity recorded on GitHub sign-in.
//
// Only logins listed in the auth allowlist ever get a row; the vault has a
// single owner, so this table exists to give GitHub sessions a stable internal
// ID for the token subject rather than to manage accounts.
type User struct {
	ID        string    `json:"id"        db:"id"`
	GitHubID  int64     `json:"githubId"  db:"github_id"`
	Login     string    `json:"login"     db:"login"`
	Email     string    `json:"email"     db:"email"`
	AvatarURL string    `json:"avatarUrl" db:"avatar_url"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// AdminSubject is the token subject issued for password sign-in. It never
// collides with a user ID because xid values are 20 lowercase base32 chars.
const AdminSubject = "admin"
