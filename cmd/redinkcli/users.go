package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/leedaaye/redink-ziyong/storage/model"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage users",
}

func init() {
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersCreateCmd)
	usersCmd.AddCommand(usersToggleCmd)
	usersCmd.AddCommand(usersRegenerateCmd)
	usersCmd.AddCommand(usersDeleteCmd)
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all users",
	RunE: func(cmd *cobra.Command, args []string) error {
		summaries, err := users.List()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tENABLED\tCREATED\tLAST USED")
		for _, u := range summaries {
			lastUsed := "never"
			if u.LastUsed != nil {
				lastUsed = u.LastUsed.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(
				w, "%s\t%s\t%t\t%s\t%s\n", u.ID, u.Username, u.Enabled,
				u.CreatedAt.Format("2006-01-02 15:04:05"), lastUsed,
			)
		}
		return w.Flush()
	},
}

var usersCreateCmd = &cobra.Command{
	Use:   "create <username>",
	Short: "Create a new user and print its access token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		u, err := users.Create(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Created user '%s' with id %s\n", u.Username, u.ID)
		fmt.Printf("Access token: %s\n", u.AccessToken)
		return nil
	},
}

var usersToggleCmd = &cobra.Command{
	Use:   "toggle <id>",
	Short: "Enable or disable a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled, ok, err := users.Toggle(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return model.NotFoundErrorFmt("no user with id %s", args[0])
		}
		if enabled {
			fmt.Println("User enabled")
		} else {
			fmt.Println("User disabled")
		}
		return nil
	},
}

var usersRegenerateCmd = &cobra.Command{
	Use:   "regenerate <id>",
	Short: "Replace a user's access token and print the new one",
	RunE: func(cmd *cobra.Command, args []string) error {
		token, ok, err := users.RegenerateToken(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return model.NotFoundErrorFmt("no user with id %s", args[0])
		}
		fmt.Printf("New access token: %s\n", token)
		return nil
	},
	Args: cobra.ExactArgs(1),
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deleted, err := users.Delete(args[0])
		if err != nil {
			return err
		}
		if !deleted {
			return model.NotFoundErrorFmt("no user with id %s", args[0])
		}
		fmt.Println("User deleted")
		return nil
	},
}
