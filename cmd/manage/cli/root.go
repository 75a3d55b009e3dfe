package cli

import (
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/database"
	"github.com/pageza/foodgram/backend/internal/logger"
)

type contextKey string

const configKey contextKey = "config"

func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "manage",
		Short:         "Foodgram administration",
		Long:          "Schema migrations, catalog imports and storage setup for the foodgram backend.",
		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}
			if level, _ := cmd.Flags().GetString("log-level"); level != "" {
				cfg.LogLevel = level
			}
			logger.Init(cfg)
			cmd.SetContext(withConfig(cmd.Context(), cfg))
			return nil
		},
	}

	cmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	return cmd
}

func openDB(cmd *cobra.Command) (*gorm.DB, func(), error) {
	db, err := database.Open(configFrom(cmd.Context()))
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, closeFn, nil
}
