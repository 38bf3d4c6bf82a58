package main

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/leedaaye/redink-ziyong/cmd/redink/config"
	"github.com/leedaaye/redink-ziyong/storage/model"
)

var rootCmd = &cobra.Command{
	Use:   "redinkcli",
	Short: "redinkcli manages the redink users store from the command line",
	Long:  "redinkcli manages the redink users store from the command line",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

var configFile string
var users model.UsersStore

func loadConfig() error {
	config.Load(configFile)
	log.Println("Loaded Config")
	c := config.Get()

	var err error
	users, err = config.LoadStorageBackend(c.Storage)
	if err != nil {
		log.Fatal(err)
	}
	return nil
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "config.yaml", "the config file to use")
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(adminCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
