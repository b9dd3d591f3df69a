package main

import (
	"context"
	"fmt"
	"os"

	"clinic-scheduling/cmd/bootstrap"
	"clinic-scheduling/internal/delivery/dto"
	"clinic-scheduling/internal/infrastructure/database"
	"clinic-scheduling/pkg/validator"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "clinic-scheduling",
		Short: "Doctor availability and appointment booking API",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(adminCmd())
	rootCmd.AddCommand(bookCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Initialize application with all dependencies
			app, err := bootstrap.New()
			if err != nil {
				logrus.Errorf("Failed to initialize application: %v", err)
				return err
			}

			// Run the application
			return app.Run()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	// migrate up
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error {
				return m.Up()
			})
		},
	})

	// migrate down
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			return withMigrator(func(m *database.Migrator) error {
				return m.Down(steps)
			})
		},
	}
	downCmd.Flags().Int("steps", 1, "Number of migrations to roll back, 0 for all")
	cmd.AddCommand(downCmd)

	// migrate version
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(func(m *database.Migrator) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Printf("version %d (dirty=%v)\n", v, dirty)
				return nil
			})
		},
	})

	return cmd
}

func withMigrator(fn func(m *database.Migrator) error) error {
	cfg, log, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	m, err := database.NewMigrator(cfg.DB, log)
	if err != nil {
		return err
	}
	defer m.Close()

	return fn(m)
}

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Operator tasks",
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			req := dto.CreateAdminRequest{}
			req.Email, _ = cmd.Flags().GetString("email")
			req.Password, _ = cmd.Flags().GetString("password")
			req.FullName, _ = cmd.Flags().GetString("name")

			v := validator.NewValidator()
			if err := v.Validate(&req); err != nil {
				return fmt.Errorf("invalid admin: %v", v.FormatValidationErrors(err))
			}

			cfg, log, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}
			uc, closeFn, err := bootstrap.NewAdminUsecase(cfg, log)
			if err != nil {
				return err
			}
			defer closeFn()

			user, err := uc.CreateAdmin(context.Background(), &req)
			if err != nil {
				return err
			}
			fmt.Printf("Created admin %s (%s)\n", user.Email, user.ID)
			return nil
		},
	}
	createCmd.Flags().String("email", "", "Admin email")
	createCmd.Flags().String("password", "", "Admin password")
	createCmd.Flags().String("name", "Administrator", "Admin full name")
	cmd.AddCommand(createCmd)

	return cmd
}
