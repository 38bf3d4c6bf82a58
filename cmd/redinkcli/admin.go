package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage the admin account",
}

func init() {
	adminCmd.AddCommand(adminPasswdCmd)
}

var adminPasswdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change the admin password",
	RunE: func(cmd *cobra.Command, args []string) error {
		oldPassword, err := promptPassword("Current password: ")
		if err != nil {
			return err
		}
		newPassword, err := promptPassword("New password: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassword("Repeat new password: ")
		if err != nil {
			return err
		}
		if newPassword != confirm {
			log.Fatal("passwords do not match")
		}
		ok, err := users.ChangeAdminPassword(oldPassword, newPassword)
		if err != nil {
			return err
		}
		if !ok {
			log.Fatal("current password is incorrect")
		}
		fmt.Println("Admin password changed")
		return nil
	},
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(pw), nil
}
