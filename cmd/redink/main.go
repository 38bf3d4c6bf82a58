package main

import (
	"os"

	log "github.com/sirupsen/logrus"

	redink "github.com/leedaaye/redink-ziyong"
	"github.com/leedaaye/redink-ziyong/api/adminapi"
	"github.com/leedaaye/redink-ziyong/cmd/redink/config"
	"github.com/leedaaye/redink-ziyong/internal/logger"
	"github.com/leedaaye/redink-ziyong/internal/version"
)

func main() {
	var configFile string
	if len(os.Args) > 1 {
		configFile = os.Args[1]
	}
	config.Load(configFile)
	c := config.Get()
	logger.Init(c.Logging.Internal.Level, c.Logging.Internal.Dir, c.Logging.Internal.StdErr)
	redink.AccessLogWriter = logger.AccessWriter(c.Logging.Access.Dir, c.Logging.Access.StdErr)
	log.WithField("version", version.VERSION).Info("Loaded Config")

	users, err := config.LoadStorageBackend(c.Storage)
	if err != nil {
		log.Fatal(err)
	}

	var sessions *adminapi.SessionIssuer
	if c.API.Admin.Enabled {
		if sessions, err = adminapi.NewSessionIssuer(c.API.Admin.SessionConf); err != nil {
			log.Fatal(err)
		}
	}

	r := redink.New(c.Server, users, sessions)
	log.Info("Initialized server")
	r.Start()
}
