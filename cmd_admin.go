package main

import (
	"context"
	"fmt"

	"github.com/khabaroff/metrology-license-registry/src/repositories/postgres"
	"github.com/khabaroff/metrology-license-registry/src/services"
	"github.com/spf13/cobra"
)

var (
	adminUsername string
	adminPassword string
)

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		db, err := connect(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		admins := services.NewAdminService(postgres.NewAdminRepository(db.GetPool()))
		admin, err := admins.CreateAdminUser(context.Background(), adminUsername, adminPassword)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "admin %q created (id %d)\n", admin.Username, admin.ID)
		return nil
	},
}

func init() {
	adminCreateCmd.Flags().StringVar(&adminUsername, "username", "", "admin username")
	adminCreateCmd.Flags().StringVar(&adminPassword, "password", "", "admin password (at least 8 characters)")
	_ = adminCreateCmd.MarkFlagRequired("username")
	_ = adminCreateCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminCreateCmd)
}
