package storage

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/leedaaye/redink-ziyong/internal/pwhash"
	"github.com/leedaaye/redink-ziyong/storage/model"
)

// DriverType represents the type of storage driver
type DriverType string

const (
	// DriverFile is the JSON-file driver, the canonical backend
	DriverFile DriverType = "file"
	// DriverSQLite is the SQLite driver
	DriverSQLite DriverType = "sqlite"
	// DriverMySQL is the MySQL driver
	DriverMySQL DriverType = "mysql"
	// DriverPostgres is the PostgreSQL driver
	DriverPostgres DriverType = "postgres"
)

var SupportedDrivers = []DriverType{
	DriverFile,
	DriverSQLite,
	DriverMySQL,
	DriverPostgres,
}

// DSN creates and returns a dsn connection string for the passed DriverType and DSNConf
func DSN(driver DriverType, conf DSNConf) (string, error) {
	switch driver {
	case DriverFile, DriverSQLite:
		return "", errors.Errorf("driver %s does not use dsn", driver)
	case DriverMySQL:
		if conf.Port == 0 {
			conf.Port = 3306
		}
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True", conf.User, conf.Password, conf.Host, conf.Port,
			conf.DB,
		), nil
	case DriverPostgres:
		if conf.Port == 0 {
			conf.Port = 5432
		}
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%d",
			conf.Host, conf.User, conf.Password, conf.DB, conf.Port,
		), nil
	default:
		return "", errors.Errorf("unsupported driver '%s'", driver)
	}
}

// DSNConf provides configuration options for database connection strings.
// It contains common connection parameters used across the MySQL and
// PostgreSQL drivers. When used with the DSN function, this struct helps
// generate proper connection strings based on the selected driver type.
type DSNConf struct {
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	DB       string `yaml:"db"`
}

// Config represents the storage configuration
type Config struct {
	// Driver is the storage driver type
	Driver DriverType `yaml:"driver"`
	// DSN is the data source name (connection string)
	// For MySQL: user:pass@tcp(127.0.0.1:3306)/dbname?charset=utf8mb4&parseTime=True
	// For PostgreSQL: host=localhost user=redink password=redink dbname=redink port=5432
	DSN string `yaml:"dsn"`
	// DataDir is the directory where the users file (file driver) or the
	// database file (sqlite driver) is stored
	DataDir string `yaml:"data_dir"`
	// Debug enables debug logging of database statements
	Debug bool `yaml:"debug"`
	// PasswordHash defines parameters for hashing the admin password
	PasswordHash pwhash.Params `yaml:"password_hashing"`
}

// Connect establishes a connection to the database based on the configuration
func Connect(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch cfg.Driver {
	case DriverSQLite:
		// If DSN is not provided, use the default database file in DataDir
		dsn := cfg.DSN
		if dsn == "" {
			dsn = filepath.Join(cfg.DataDir, "redink.db")
		}
		dialector = sqlite.Open(dsn)
	case DriverMySQL:
		dialector = mysql.Open(cfg.DSN)
	case DriverPostgres:
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}

	logMode := logger.Silent
	if cfg.Debug {
		logMode = logger.Info
	}

	return gorm.Open(
		dialector, &gorm.Config{
			Logger: logger.Default.LogMode(logMode),
		},
	)
}

// LoadBackend initializes and returns the users store for the passed Config.
// The file driver is the default when none is configured.
func LoadBackend(cfg Config) (model.UsersStore, error) {
	switch cfg.Driver {
	case DriverFile, "":
		return NewFileStorage(cfg.DataDir, cfg.PasswordHash), nil
	case DriverSQLite, DriverMySQL, DriverPostgres:
		warehouse, err := NewStorage(cfg)
		if err != nil {
			return nil, err
		}
		return warehouse.UsersStorage(), nil
	default:
		return nil, errors.Errorf("unsupported storage driver '%s'", cfg.Driver)
	}
}
