package storage

import (
	"encoding/json"
	"os"
	"path"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/leedaaye/redink-ziyong/internal/pwhash"
	"github.com/leedaaye/redink-ziyong/internal/token"
	"github.com/leedaaye/redink-ziyong/storage/model"
)

// DefaultAdminPassword is the admin password a freshly bootstrapped store is
// initialized with. Deployers are expected to rotate it immediately; the
// bootstrap warning names it so operators know to.
const DefaultAdminPassword = "redink2025"

const usersFileName = "users.json"

// FileStorage is the file-backed users store. The whole state is one JSON
// record that is re-read on every operation and replaced atomically on every
// write (tmp file + rename), so a reader never observes a half-written file.
// A single mutex serializes the read-modify-write cycles; without it two
// concurrent mutations could both read the same snapshot and lose one update.
type FileStorage struct {
	dir        string
	path       string
	hashParams pwhash.Params
	mutex      sync.Mutex
}

// NewFileStorage creates a FileStorage persisting under dataDir.
// The backing record is created lazily on first access.
func NewFileStorage(dataDir string, hashParams pwhash.Params) *FileStorage {
	return &FileStorage{
		dir:        dataDir,
		path:       path.Join(dataDir, usersFileName),
		hashParams: hashParams,
	}
}

// ensureInitialized creates the data dir and a default record (empty user
// list, hash of DefaultAdminPassword) if the backing file does not exist.
func (s *FileStorage) ensureInitialized() error {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return errors.Wrap(err, "filestore: failed to create data dir")
	}
	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "filestore: failed to stat users file")
	}
	hash, err := pwhash.Hash(DefaultAdminPassword, s.hashParams)
	if err != nil {
		return err
	}
	record := model.StoreRecord{
		AdminPasswordHash: hash,
		Users:             []model.User{},
	}
	if err = s.writeUnlocked(record); err != nil {
		return err
	}
	log.WithField("path", s.path).Info("created users file")
	log.WithField("password", DefaultAdminPassword).Warn(
		"store initialized with the default admin password, change it immediately",
	)
	return nil
}

// readUnlocked loads and parses the current record, initializing the store
// first if needed. Callers must hold the mutex.
func (s *FileStorage) readUnlocked() (model.StoreRecord, error) {
	var record model.StoreRecord
	if err := s.ensureInitialized(); err != nil {
		return record, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return record, errors.Wrap(err, "filestore: failed to read users file")
	}
	if err = json.Unmarshal(data, &record); err != nil {
		return record, model.CorruptStoreErrorFmt("filestore: users file is not valid JSON: %s", err)
	}
	return record, nil
}

// writeUnlocked persists the record via tmp file + atomic rename. If the
// write fails before the rename, the previous canonical content stays intact.
// Callers must hold the mutex.
func (s *FileStorage) writeUnlocked(record model.StoreRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return errors.Wrap(err, "filestore: failed to marshal users file")
	}
	tmp := s.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0600); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "filestore: failed to write temp users file")
	}
	if err = os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(err, "filestore: failed to replace users file")
	}
	return nil
}

// VerifyAdminPassword compares the candidate against the stored admin hash.
func (s *FileStorage) VerifyAdminPassword(password string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	record, err := s.readUnlocked()
	if err != nil {
		return false, err
	}
	return pwhash.Verify(record.AdminPasswordHash, password)
}

// ChangeAdminPassword replaces the admin hash after proving the old password.
func (s *FileStorage) ChangeAdminPassword(oldPassword, newPassword string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	record, err := s.readUnlocked()
	if err != nil {
		return false, err
	}
	ok, err := pwhash.Verify(record.AdminPasswordHash, oldPassword)
	if err != nil || !ok {
		return false, err
	}
	if record.AdminPasswordHash, err = pwhash.Hash(newPassword, s.hashParams); err != nil {
		return false, err
	}
	if err = s.writeUnlocked(record); err != nil {
		return false, err
	}
	log.Info("admin password changed")
	return true, nil
}

// List returns all users in store order, without tokens.
func (s *FileStorage) List() ([]model.UserSummary, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	record, err := s.readUnlocked()
	if err != nil {
		return nil, err
	}
	summaries := make([]model.UserSummary, len(record.Users))
	for i, u := range record.Users {
		summaries[i] = u.Summary()
	}
	return summaries, nil
}

// GetByID returns the full user record or (nil, nil) if the id is unknown.
func (s *FileStorage) GetByID(id string) (*model.User, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	record, err := s.readUnlocked()
	if err != nil {
		return nil, err
	}
	for _, u := range record.Users {
		if u.ID == id {
			return &u, nil
		}
	}
	return nil, nil
}

// GetByToken returns the enabled user holding the token, or (nil, nil).
// An empty token short-circuits without touching the store.
func (s *FileStorage) GetByToken(tok string) (*model.User, error) {
	if tok == "" {
		return nil, nil
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	record, err := s.readUnlocked()
	if err != nil {
		return nil, err
	}
	return findByToken(record.Users, tok), nil
}

// ValidateToken resolves the token, stamps the user's last-used time and
// returns the identity projection, or (nil, nil) on a miss.
func (s *FileStorage) ValidateToken(tok string) (*model.Identity, error) {
	if tok == "" {
		return nil, nil
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	record, err := s.readUnlocked()
	if err != nil {
		return nil, err
	}
	u := findByToken(record.Users, tok)
	if u == nil {
		return nil, nil
	}
	now := time.Now()
	for i := range record.Users {
		if record.Users[i].ID == u.ID {
			record.Users[i].LastUsed = &now
			break
		}
	}
	if err = s.writeUnlocked(record); err != nil {
		return nil, err
	}
	identity := u.Identity()
	return &identity, nil
}

// Create appends a user with a fresh id and token.
// Fails with AlreadyExistsError if the username is taken.
func (s *FileStorage) Create(username string) (*model.User, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	record, err := s.readUnlocked()
	if err != nil {
		return nil, err
	}
	for _, u := range record.Users {
		if u.Username == username {
			return nil, model.AlreadyExistsErrorFmt("user already exists: %s", username)
		}
	}
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
	record.Users = append(record.Users, u)
	if err = s.writeUnlocked(record); err != nil {
		return nil, err
	}
	log.WithField("username", username).Info("created user")
	return &u, nil
}

// RegenerateToken replaces the user's token with a fresh one.
func (s *FileStorage) RegenerateToken(id string) (string, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	record, err := s.readUnlocked()
	if err != nil {
		return "", false, err
	}
	for i := range record.Users {
		if record.Users[i].ID != id {
			continue
		}
		newToken, err := token.NewAccessToken()
		if err != nil {
			return "", false, err
		}
		record.Users[i].AccessToken = newToken
		if err = s.writeUnlocked(record); err != nil {
			return "", false, err
		}
		log.WithField("username", record.Users[i].Username).Info("regenerated user token")
		return newToken, true, nil
	}
	return "", false, nil
}

// Toggle flips the user's enabled flag and returns the new state.
func (s *FileStorage) Toggle(id string) (bool, bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	record, err := s.readUnlocked()
	if err != nil {
		return false, false, err
	}
	for i := range record.Users {
		if record.Users[i].ID != id {
			continue
		}
		record.Users[i].Enabled = !record.Users[i].Enabled
		if err = s.writeUnlocked(record); err != nil {
			return false, false, err
		}
		log.WithFields(
			log.Fields{
				"username": record.Users[i].Username,
				"enabled":  record.Users[i].Enabled,
			},
		).Info("toggled user")
		return record.Users[i].Enabled, true, nil
	}
	return false, false, nil
}

// Delete removes the user. Returns false if the id is unknown; deleting an
// already-deleted user is not an error.
func (s *FileStorage) Delete(id string) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	record, err := s.readUnlocked()
	if err != nil {
		return false, err
	}
	for i := range record.Users {
		if record.Users[i].ID != id {
			continue
		}
		username := record.Users[i].Username
		record.Users = append(record.Users[:i], record.Users[i+1:]...)
		if err = s.writeUnlocked(record); err != nil {
			return false, err
		}
		log.WithField("username", username).Info("deleted user")
		return true, nil
	}
	return false, nil
}

func findByToken(users []model.User, tok string) *model.User {
	for _, u := range users {
		if u.AccessToken == tok && u.Enabled {
			return &u
		}
	}
	return nil
}
