package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"yamdb/database"
	"yamdb/internal/config"
	"yamdb/internal/loader"
)

func main() {
	var dataDir string

	rootCmd := &cobra.Command{
		Use:   "loader",
		Short: "Seed the database from CSV fixtures",
		Long: `Loads users, categories, genres, titles, genre links, reviews and
comments from a directory of CSV files in one transaction.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("could not load config: %w", err)
			}
			if dataDir == "" {
				dataDir = cfg.DataPath
			}

			logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

			db, err := database.ConnectDB(cfg, logger)
			if err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}

			if err := loader.New(db, logger).Load(cmd.Context(), dataDir); err != nil {
				return fmt.Errorf("load failed: %w", err)
			}
			logger.Info("seed complete", "dir", dataDir)
			return nil
		},
	}

	rootCmd.Flags().StringVar(&dataDir, "data", "", "directory with the CSV fixtures (defaults to DATA_PATH)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
