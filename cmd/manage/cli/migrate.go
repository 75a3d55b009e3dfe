package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pageza/foodgram/backend/internal/database"
)

func NewMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back or inspect schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer closeDB()
			return database.NewMigrator(db).Migrate(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer closeDB()
			return database.NewMigrator(db).Rollback(cmd.Context())
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer closeDB()

			statuses, err := database.NewMigrator(db).Status(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, s := range statuses {
				state := "pending"
				if s.Applied {
					state = "applied"
				}
				fmt.Fprintf(out, "%4d  %-8s %s\n", s.Version, state, s.Description)
			}
			return nil
		},
	})

	return cmd
}
