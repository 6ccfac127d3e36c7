// Command seed fills the configured database with demo data.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/middleware"
	"inkwell/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 60, "Number of posts to create")
	maxLikes := flag.Int("likes", 15, "Maximum likes per post")
	maxComments := flag.Int("comments", 5, "Maximum comments per post")
	shouldClean := flag.Bool("clean", false, "Delete existing data before seeding")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}
	middleware.Logger = middleware.NewLogger(os.Stdout, cfg.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	ctx := context.Background()
	f := seed.NewFactory(db, seed.Options{
		Users:              *numUsers,
		Posts:              *numPosts,
		MaxLikesPerPost:    *maxLikes,
		MaxCommentsPerPost: *maxComments,
	})

	if *shouldClean {
		if err := f.ClearAll(ctx); err != nil {
			log.Fatalf("Cleanup failed: %v", err)
		}
	}

	if _, err := f.Seed(ctx); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
