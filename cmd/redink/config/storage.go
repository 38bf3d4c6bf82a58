package config

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/leedaaye/redink-ziyong/internal/pwhash"
	"github.com/leedaaye/redink-ziyong/storage"
	"github.com/leedaaye/redink-ziyong/storage/model"
)

type storageConf struct {
	Driver  storage.DriverType `yaml:"driver"`
	DataDir string             `yaml:"data_dir"`
	DSN     string             `yaml:"dsn"`
	storage.DSNConf
	Debug        bool          `yaml:"debug"`
	PasswordHash pwhash.Params `yaml:"password_hashing"`
}

func (c *storageConf) validate() error {
	switch c.Driver {
	case storage.DriverFile, storage.DriverSQLite:
		if c.DataDir == "" {
			return errors.New("error in storage conf: data_dir must be specified")
		}
		return nil
	case storage.DriverMySQL, storage.DriverPostgres:
		var err error
		if c.DSN == "" {
			c.DSN, err = storage.DSN(c.Driver, c.DSNConf)
		}
		return err
	default:
		return errors.Errorf("error in storage conf: unsupported driver '%s'", c.Driver)
	}
}

var defaultStorageConf = storageConf{
	Driver:  storage.DriverFile,
	DataDir: "data",
	PasswordHash: pwhash.Params{
		Time:        1,
		MemoryKiB:   64 * 1024,
		Parallelism: 4,
		KeyLen:      32,
		SaltLen:     16,
	},
}

// LoadStorageBackend loads and returns the users store for the passed Config
func LoadStorageBackend(c storageConf) (model.UsersStore, error) {
	cfg := storage.Config{
		Driver:       c.Driver,
		DSN:          c.DSN,
		DataDir:      c.DataDir,
		Debug:        c.Debug,
		PasswordHash: c.PasswordHash,
	}
	users, err := storage.LoadBackend(cfg)
	if err != nil {
		return nil, err
	}
	log.Info("Loaded storage backend")
	return users, nil
}
