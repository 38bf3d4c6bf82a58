package storage

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/leedaaye/redink-ziyong/internal/pwhash"
	"github.com/leedaaye/redink-ziyong/storage/model"
	"gorm.io/gorm"
)

// Storage is a GORM-based storage implementation
type Storage struct {
	db         *gorm.DB
	hashParams pwhash.Params
}

var models = []any{
	&model.User{},
	&model.KeyValue{},
}

// NewStorage creates a new GORM-based storage
func NewStorage(config Config) (*Storage, error) {
	db, err := Connect(config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Auto migrate the schemas
	if err = db.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	params := config.PasswordHash
	if params.IsZero() {
		params = pwhash.DefaultParams()
	}

	s := &Storage{
		db:         db,
		hashParams: params,
	}
	if err = s.ensureAdminCredential(); err != nil {
		return nil, err
	}
	return s, nil
}

// UsersStorage returns a UsersStorage
func (s *Storage) UsersStorage() *UsersStorage {
	return &UsersStorage{db: s.db, kv: s.KeyValue(), params: s.hashParams}
}

// KeyValue provides an accessor for scoped key-value storage.
func (s *Storage) KeyValue() *KeyValueStorage {
	return &KeyValueStorage{db: s.db}
}

// ensureAdminCredential bootstraps the admin password hash on first use,
// matching the file backend's lazy initialization.
func (s *Storage) ensureAdminCredential() error {
	kv := s.KeyValue()
	raw, err := kv.Get(model.KeyValueScopeAdmin, model.KeyValueKeyAdminPasswordHash)
	if err != nil {
		return err
	}
	if raw != nil {
		return nil
	}
	hash, err := pwhash.Hash(DefaultAdminPassword, s.hashParams)
	if err != nil {
		return err
	}
	if err = kv.SetAny(model.KeyValueScopeAdmin, model.KeyValueKeyAdminPasswordHash, hash); err != nil {
		return err
	}
	log.WithField("password", DefaultAdminPassword).Warn(
		"store initialized with the default admin password, change it immediately",
	)
	return nil
}

// isUniqueConstraintError performs a cheap check across supported drivers.
func isUniqueConstraintError(err error) bool {
	msg := err.Error()
	// sqlite | mysql | postgres common markers
	if
	// SQLite
	(containsAny(msg, "UNIQUE constraint failed", "constraint failed")) ||
		// MySQL
		(containsAny(msg, "Duplicate entry", "Error 1062")) ||
		// Postgres
		(containsAny(msg, "duplicate key value", "violates unique constraint")) {
		return true
	}
	return false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
