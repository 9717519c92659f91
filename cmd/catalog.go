package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"local-library/configs"
	"local-library/internal/db"
	"local-library/internal/store"
)

// openCatalog returns the catalog for the configured backend and a function
// releasing whatever it holds.
func openCatalog(ctx context.Context) (*store.Catalog, func(), error) {
	switch cfg.Store {
	case configs.StoreMemory:
		logger.Warn("using in-memory store, records are lost on exit")
		return store.NewMemoryCatalog(), func() {}, nil

	case configs.StoreMongo:
		client, err := db.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		closeClient := func() {
			if err := db.Disconnect(client); err != nil {
				logger.Warn("mongo disconnect failed", zap.Error(err))
			}
		}

		database := client.Database(cfg.DBName)
		if err := store.EnsureIndexes(ctx, database); err != nil {
			closeClient()
			return nil, nil, fmt.Errorf("ensure indexes: %w", err)
		}
		logger.Info("connected to MongoDB", zap.String("db", cfg.DBName))
		return store.NewMongoCatalog(database), closeClient, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q (want %s or %s)", cfg.Store, configs.StoreMongo, configs.StoreMemory)
	}
}
