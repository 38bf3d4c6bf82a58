package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	KeyValueScopeGlobal = ""
	KeyValueScopeAdmin  = "admin"

	KeyValueKeyAdminPasswordHash = "password_hash"
)

// KeyValue stores arbitrary key-value data for the database-backed store.
// The admin credential lives here under (KeyValueScopeAdmin,
// KeyValueKeyAdminPasswordHash), since exactly one admin credential exists
// and it is not a user row.
//
// Values are stored as datatypes.JSON, which uses the database JSON type
// where available (PostgreSQL, MySQL) and falls back to TEXT (SQLite).
type KeyValue struct {
	CreatedAt int            `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt int            `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Scope allows grouping keys by namespace; empty string is global scope.
	Scope string `gorm:"primaryKey" json:"scope"`

	// Key is the identifier within a scope.
	Key string `gorm:"primaryKey" json:"key"`

	Value datatypes.JSON `json:"value"`
}

// KeyValueAccessor defines common operations for key-value storage.
// Implementations should honor the uniqueness of (scope,key).
type KeyValueAccessor interface {
	// Get retrieves the value for a (scope, key). Returns (nil, nil) if not found.
	Get(scope, key string) (datatypes.JSON, error)

	// Set stores/replaces the value for a (scope, key).
	Set(scope, key string, value datatypes.JSON) error

	// Delete removes the entry for a (scope, key). No error if missing.
	Delete(scope, key string) error
}
