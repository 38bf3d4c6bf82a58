package model

import (
	"time"
)

// User is an API-access user holding a bearer token. The token is stored in
// plaintext; store compromise equals token compromise. Listing endpoints must
// use UserSummary so the token never leaks through them.
type User struct {
	// ID is an opaque identifier, generated server-side, immutable.
	ID string `gorm:"primaryKey" json:"id"`
	// Username is unique (case-sensitive) across all users.
	Username string `gorm:"uniqueIndex" json:"username"`
	// AccessToken is the secret bearer token; regenerable.
	AccessToken string `json:"access_token"`
	// Enabled users pass token validation; disabled users always fail it.
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	// LastUsed is nil until the token validates for the first time.
	LastUsed *time.Time `json:"last_used"`
}

// Summary returns the listing projection of the user, without the token.
func (u User) Summary() UserSummary {
	return UserSummary{
		ID:        u.ID,
		Username:  u.Username,
		Enabled:   u.Enabled,
		CreatedAt: u.CreatedAt,
		LastUsed:  u.LastUsed,
	}
}

// Identity returns the minimal identity projection of the user.
func (u User) Identity() Identity {
	return Identity{
		ID:       u.ID,
		Username: u.Username,
	}
}

// UserSummary is the token-free projection returned by listings.
type UserSummary struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Enabled   bool       `json:"enabled"`
	CreatedAt time.Time  `json:"created_at"`
	LastUsed  *time.Time `json:"last_used"`
}

// Identity is the projection returned by token validation.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// StoreRecord is the single persisted record of the file-backed store:
// the admin password hash plus all users in insertion order.
type StoreRecord struct {
	AdminPasswordHash string `json:"admin_password_hash"`
	Users             []User `json:"users"`
}

// UsersStore is the contract the user/token service exposes to the HTTP
// route layer, the admin API and the CLI. Lookup misses are not errors:
// GetByID, GetByToken and ValidateToken return (nil, nil), RegenerateToken
// and Toggle report absence through their ok result.
type UsersStore interface {
	// VerifyAdminPassword compares the candidate against the stored hash.
	// A mismatch is reported as false, never as an error.
	VerifyAdminPassword(password string) (bool, error)
	// ChangeAdminPassword replaces the admin hash after proving the old
	// password. Returns false without mutating anything if the proof fails.
	ChangeAdminPassword(oldPassword, newPassword string) (bool, error)
	// List returns all users in store order, without tokens.
	List() ([]UserSummary, error)
	// GetByID returns the full record including the token, or (nil, nil).
	// Intended for admin use, not for public listing.
	GetByID(id string) (*User, error)
	// GetByToken returns the user matching the token if it is enabled.
	// An empty token short-circuits without touching the store.
	GetByToken(token string) (*User, error)
	// ValidateToken resolves the token, updates the user's last-used
	// timestamp on a hit and returns the identity projection.
	ValidateToken(token string) (*Identity, error)
	// Create adds a user with a fresh id and token. Fails with
	// AlreadyExistsError if the username is taken. The returned record is
	// the canonical moment to surface the plaintext token.
	Create(username string) (*User, error)
	// RegenerateToken replaces the user's token and returns the new value.
	// ok is false if no user has that id.
	RegenerateToken(id string) (token string, ok bool, err error)
	// Toggle flips the enabled flag and returns the new state.
	// ok is false if no user has that id.
	Toggle(id string) (enabled bool, ok bool, err error)
	// Delete removes the user. Returns false if the id is unknown.
	Delete(id string) (bool, error)
}
