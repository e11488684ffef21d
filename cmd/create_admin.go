/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tudao164/KiemThuPhanMem/config"
	"github.com/tudao164/KiemThuPhanMem/internal/auth"
	"github.com/tudao164/KiemThuPhanMem/internal/db"
	"github.com/tudao164/KiemThuPhanMem/internal/logging"
	"github.com/tudao164/KiemThuPhanMem/internal/mq"
	"github.com/tudao164/KiemThuPhanMem/internal/services"
	"github.com/tudao164/KiemThuPhanMem/internal/store"
)

var adminEmail, adminName, adminPassword string

// createAdminCmd is the only way to obtain an administrator account.
var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Creates an active administrator. Registration over HTTP always
creates regular users. Usage:

	taskd create-admin --email root@example.com --name Root --password s3cret!
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		ctx := cmd.Context()
		logger := logging.NewJSON(os.Stderr, cfg.LogLevel)

		dbConn, err := db.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer dbConn.Close()

		queue, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		var publisher services.EventPublisher
		if queue != nil {
			defer queue.Close()
			publisher = mq.NewEventPublisher(queue, cfg.MQ.Channel)
		}

		// Account creation needs neither the token codec nor the ledger.
		authService := services.NewAuthService(
			store.NewUserRepository(dbConn),
			auth.NewPasswordHasher(cfg.Auth.BcryptCost),
			nil,
			nil,
			publisher,
			logger,
		)

		user, err := authService.CreateAdmin(ctx, services.RegisterInput{
			Email:    adminEmail,
			Name:     adminName,
			Password: adminPassword,
		})
		if err != nil {
			var verr *services.ValidationError
			if errors.As(err, &verr) {
				return fmt.Errorf("invalid input: %w", err)
			}
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created administrator %s (id %d)\n", user.Email, user.ID)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd)

	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "administrator email (login key)")
	createAdminCmd.Flags().StringVar(&adminName, "name", "", "display name")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "initial password")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("name")
	_ = createAdminCmd.MarkFlagRequired("password")
}
