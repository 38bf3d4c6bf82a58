// Package config loads and validates the yaml configuration of the redink
// server and its companion CLI.
package config

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/zachmann/go-utils/fileutils"
	"gopkg.in/yaml.v3"

	redink "github.com/leedaaye/redink-ziyong"
)

// Config holds the whole configuration of the server
type Config struct {
	Server  redink.ServerConf `yaml:"server"`
	Logging loggingConf       `yaml:"logging"`
	Storage storageConf       `yaml:"storage"`
	API     apiConf           `yaml:"api"`
}

var conf *Config

// Get returns the loaded Config
func Get() *Config {
	return conf
}

// possibleConfigLocations are checked in order when no config file is passed
var possibleConfigLocations = []string{
	"config.yaml",
	"/etc/redink/config.yaml",
}

// Load loads the config from the passed file, falling back to the default
// locations when file is empty. It exits fatally on any error so callers can
// rely on Get afterwards.
func Load(file string) {
	if file == "" {
		for _, f := range possibleConfigLocations {
			if fileutils.FileExists(f) {
				file = f
				break
			}
		}
	}
	if file == "" {
		log.Fatal("no config file found")
	}
	data, err := os.ReadFile(file)
	if err != nil {
		log.WithError(err).Fatal("could not read config file")
	}
	c := Config{
		Server:  redink.ServerConf{Port: 8080},
		Logging: defaultLoggingConf,
		Storage: defaultStorageConf,
		API:     defaultAPIConf,
	}
	if err = yaml.Unmarshal(data, &c); err != nil {
		log.WithError(err).Fatal("could not parse config file")
	}
	if err = c.validate(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	conf = &c
}

func (c *Config) validate() error {
	if err := c.Logging.validate(); err != nil {
		return err
	}
	return c.Storage.validate()
}
