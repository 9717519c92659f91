package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"local-library/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill an empty catalog with sample authors, genres, books and copies",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		catalog, closeCatalog, err := openCatalog(ctx)
		if err != nil {
			return err
		}
		defer closeCatalog()

		summary, err := seed.Run(ctx, catalog, time.Now())
		if err != nil {
			return err
		}

		logger.Info("catalog seeded",
			zap.Int("authors", summary.Authors),
			zap.Int("genres", summary.Genres),
			zap.Int("books", summary.Books),
			zap.Int("book_instances", summary.Instances),
		)
		return nil
	},
}
