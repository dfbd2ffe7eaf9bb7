package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sahilchouksey/learnhub-api/config"
	"github.com/sahilchouksey/learnhub-api/database"
	"github.com/sahilchouksey/learnhub-api/services"
	"github.com/sahilchouksey/learnhub-api/utils"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seeding failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load environment variables
	if err := config.LoadENV(); err != nil {
		return err
	}
	env, err := config.Get()
	if err != nil {
		return err
	}

	log, err := utils.NewLogger(env.GO_ENV)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := database.StartGORM(env, log)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		return err
	}

	db := store.GetDB()
	seeder := database.NewSeeder(db, services.NewCourseStatsService(db, log), log)
	return seeder.SeedAll(context.Background(), database.SeedOptions{
		AdminName:     os.Getenv("ADMIN_NAME"),
		AdminEmail:    os.Getenv("ADMIN_EMAIL"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		Demo:          os.Getenv("SEED_DEMO") == "true",
		DemoPassword:  os.Getenv("SEED_DEMO_PASSWORD"),
	})
}
