package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	mongoMigration "slotkeeper/internal/migrations/mongo"
	"slotkeeper/pkg/config"
	"slotkeeper/pkg/db/postgres"
)

const JobName = "migrate"

func main() {
	down := flag.Bool("down", false, "roll back the latest postgres migration")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	defer cfg.GracefulShutdown()

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		cfg.SetPostgres()
		cfg.Log.Info("Starting Postgres migration job")
		migratePostgres(ctx, cfg, *down)
	default:
		cfg.SetMongo()
		cfg.Log.Info("Starting Mongo migration job", "database", cfg.MongoDatabaseName)
		migrateMongo(ctx, cfg)
	}
	fmt.Println("Migration completed successfully.")
}

func migrateMongo(ctx context.Context, cfg *config.Config) {
	if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName); err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
}

func migratePostgres(ctx context.Context, cfg *config.Config, down bool) {
	migrator, err := postgres.NewMigrator(cfg.Client.Postgres, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create migrator", "error", err)
	}
	defer migrator.Close()

	if down {
		err = migrator.Down(ctx)
	} else {
		err = migrator.Up(ctx)
	}
	if err != nil {
		cfg.Log.Fatal("Migration failed", "error", err)
	}
}
