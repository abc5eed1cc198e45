package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kenkohealth/kenko/internal/models"
	"github.com/kenkohealth/kenko/internal/userstore"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage the user store",
}

var userAddCmd = &cobra.Command{
	Use:   "add USERNAME",
	Short: "Create a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		password, _ := cmd.Flags().GetString("password")
		first, _ := cmd.Flags().GetString("first-name")
		last, _ := cmd.Flags().GetString("last-name")
		phone, _ := cmd.Flags().GetString("phone")

		u, err := store.Create(cmd.Context(), models.NewUser{
			Username:  args[0],
			Password:  password,
			FirstName: first,
			LastName:  last,
			PhoneNo:   phone,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created user %s (id %d)\n", u.Username, u.ID)
		return nil
	},
}

var userVerifyCmd = &cobra.Command{
	Use:   "verify USERNAME",
	Short: "Check a user's password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		password, _ := cmd.Flags().GetString("password")
		u, err := store.Authenticate(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok: %s %s\n", u.FirstName, u.LastName)
		return nil
	},
}

var userDeleteCmd = &cobra.Command{
	Use:   "delete USERNAME",
	Short: "Remove a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		n, err := store.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s, %d users remain\n", args[0], n)
		return nil
	},
}

func init() {
	userAddCmd.Flags().String("password", "", "Password to hash and store")
	userAddCmd.Flags().String("first-name", "", "First name")
	userAddCmd.Flags().String("last-name", "", "Last name")
	userAddCmd.Flags().String("phone", "", "Phone number (up to 10 characters)")
	_ = userAddCmd.MarkFlagRequired("password")

	userVerifyCmd.Flags().String("password", "", "Password to check")
	_ = userVerifyCmd.MarkFlagRequired("password")

	userCmd.PersistentFlags().String("db", "", "SQLite DSN (overrides database.dsn)")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userVerifyCmd)
	userCmd.AddCommand(userDeleteCmd)
}

// openStore resolves --db, then the configured DSN.
func openStore(cmd *cobra.Command) (*userstore.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dsn := cfg.Database.DSN
	if v, _ := cmd.Flags().GetString("db"); v != "" {
		dsn = v
	}
	return userstore.Open(cmd.Context(), dsn)
}
