package storage

import (
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/leedaaye/redink-ziyong/internal/pwhash"
	"github.com/leedaaye/redink-ziyong/internal/token"
	"github.com/leedaaye/redink-ziyong/storage/model"
)

// UsersStorage implements model.UsersStore using GORM. The admin password
// hash is kept in the key-value table; mutating user operations run inside
// transactions, which closes the read-modify-write race the file backend
// closes with its mutex.
type UsersStorage struct {
	db     *gorm.DB
	kv     *KeyValueStorage
	params pwhash.Params
}

// adminPasswordHash reads the stored admin hash.
func (s *UsersStorage) adminPasswordHash() (string, error) {
	var hash string
	found, err := s.kv.GetAs(model.KeyValueScopeAdmin, model.KeyValueKeyAdminPasswordHash, &hash)
	if err != nil {
		return "", err
	}
	if !found {
		return "", errors.New("users: admin credential not initialized")
	}
	return hash, nil
}

// VerifyAdminPassword compares the candidate against the stored admin hash.
func (s *UsersStorage) VerifyAdminPassword(password string) (bool, error) {
	hash, err := s.adminPasswordHash()
	if err != nil {
		return false, err
	}
	return pwhash.Verify(hash, password)
}

// ChangeAdminPassword replaces the admin hash after proving the old password.
func (s *UsersStorage) ChangeAdminPassword(oldPassword, newPassword string) (bool, error) {
	ok, err := s.VerifyAdminPassword(oldPassword)
	if err != nil || !ok {
		return false, err
	}
	hash, err := pwhash.Hash(newPassword, s.params)
	if err != nil {
		return false, err
	}
	if err = s.kv.SetAny(model.KeyValueScopeAdmin, model.KeyValueKeyAdminPasswordHash, hash); err != nil {
		return false, err
	}
	log.Info("admin password changed")
	return true, nil
}

// List returns all users in insertion order, without tokens.
func (s *UsersStorage) List() ([]model.UserSummary, error) {
	var users []model.User
	if err := s.db.Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, errors.Wrap(err, "users: list failed")
	}
	summaries := make([]model.UserSummary, len(users))
	for i, u := range users {
		summaries[i] = u.Summary()
	}
	return summaries, nil
}

// GetByID returns the full user record or (nil, nil) if the id is unknown.
func (s *UsersStorage) GetByID(id string) (*model.User, error) {
	var u model.User
	if err := s.db.Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "users: get failed")
	}
	return &u, nil
}

// GetByToken returns the enabled user holding the token, or (nil, nil).
func (s *UsersStorage) GetByToken(tok string) (*model.User, error) {
	if tok == "" {
		return nil, nil
	}
	var u model.User
	if err := s.db.Where("access_token = ? AND enabled = ?", tok, true).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "users: get by token failed")
	}
	return &u, nil
}

// ValidateToken resolves the token, stamps last_used and returns the
// identity projection, or (nil, nil) on a miss.
func (s *UsersStorage) ValidateToken(tok string) (*model.Identity, error) {
	if tok == "" {
		return nil, nil
	}
	var identity *model.Identity
	err := s.db.Transaction(
		func(tx *gorm.DB) error {
			var u model.User
			if err := tx.Where("access_token = ? AND enabled = ?", tok, true).First(&u).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}
			now := time.Now()
			if err := tx.Model(&model.User{}).Where("id = ?", u.ID).
				Update("last_used", &now).Error; err != nil {
				return err
			}
			id := u.Identity()
			identity = &id
			return nil
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "users: validate token failed")
	}
	return identity, nil
}

// Create adds a user with a fresh id and token.
// Fails with AlreadyExistsError if the username is taken.
func (s *UsersStorage) Create(username string) (*model.User, error) {
	accessToken, err := token.NewAccessToken()
	if err != nil {
		return nil, err
	}
	u := model.User{
		ID:          token.NewUserID(),
		Username:    username,
		AccessToken: accessToken,
		Enabled:     true,
		CreatedAt:   time.Now(),
	}
	err = s.db.Transaction(
		func(tx *gorm.DB) error {
			var existing int64
			if err := tx.Model(&model.User{}).Where("username = ?", username).Count(&existing).Error; err != nil {
				return err
			}
			if existing > 0 {
				return model.AlreadyExistsErrorFmt("user already exists: %s", username)
			}
			return tx.Create(&u).Error
		},
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, model.AlreadyExistsErrorFmt("user already exists: %s", username)
		}
		return nil, err
	}
	log.WithField("username", username).Info("created user")
	return &u, nil
}

// RegenerateToken replaces the user's token with a fresh one.
func (s *UsersStorage) RegenerateToken(id string) (string, bool, error) {
	newToken, err := token.NewAccessToken()
	if err != nil {
		return "", false, err
	}
	var username string
	found := false
	err = s.db.Transaction(
		func(tx *gorm.DB) error {
			var u model.User
			if err := tx.Where("id = ?", id).First(&u).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}
			if err := tx.Model(&model.User{}).Where("id = ?", id).
				Update("access_token", newToken).Error; err != nil {
				return err
			}
			username = u.Username
			found = true
			return nil
		},
	)
	if err != nil {
		return "", false, errors.Wrap(err, "users: regenerate token failed")
	}
	if !found {
		return "", false, nil
	}
	log.WithField("username", username).Info("regenerated user token")
	return newToken, true, nil
}

// Toggle flips the user's enabled flag and returns the new state.
func (s *UsersStorage) Toggle(id string) (bool, bool, error) {
	var enabled bool
	found := false
	err := s.db.Transaction(
		func(tx *gorm.DB) error {
			var u model.User
			if err := tx.Where("id = ?", id).First(&u).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil
				}
				return err
			}
			enabled = !u.Enabled
			if err := tx.Model(&model.User{}).Where("id = ?", id).
				Update("enabled", enabled).Error; err != nil {
				return err
			}
			found = true
			log.WithFields(
				log.Fields{
					"username": u.Username,
					"enabled":  enabled,
				},
			).Info("toggled user")
			return nil
		},
	)
	if err != nil {
		return false, false, errors.Wrap(err, "users: toggle failed")
	}
	return enabled, found, nil
}

// Delete removes the user. Returns false if the id is unknown.
func (s *UsersStorage) Delete(id string) (bool, error) {
	res := s.db.Where("id = ?", id).Delete(&model.User{})
	if res.Error != nil {
		return false, errors.Wrap(res.Error, "users: delete failed")
	}
	if res.RowsAffected == 0 {
		return false, nil
	}
	log.WithField("id", id).Info("deleted user")
	return true, nil
}
