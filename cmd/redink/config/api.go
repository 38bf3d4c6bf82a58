package config

import (
	"time"

	"github.com/zachmann/go-utils/duration"

	"github.com/leedaaye/redink-ziyong/api/adminapi"
)

// apiConf holds API-related configuration
type apiConf struct {
	Admin adminAPIConf `yaml:"admin"`
}

type adminAPIConf struct {
	// Enabled controls whether the admin API is mounted at all.
	Enabled              bool `yaml:"enabled"`
	adminapi.SessionConf `yaml:",inline"`
}

var defaultAPIConf = apiConf{
	Admin: adminAPIConf{
		Enabled: true,
		SessionConf: adminapi.SessionConf{
			Lifetime: duration.DurationOption(12 * time.Hour),
		},
	},
}
