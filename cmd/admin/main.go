// Command admin grants or revokes the admin role.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/user"

	"inkwell/internal/access"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/featureflags"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"
)

func main() {
	username := flag.String("user", "", "Username to change")
	grant := flag.Bool("grant", false, "Grant the admin role")
	revoke := flag.Bool("revoke", false, "Revoke the admin role")
	flag.Parse()

	if *username == "" || *grant == *revoke {
		fmt.Println("Usage:")
		fmt.Println("  admin -user <username> -grant    Grant the admin role")
		fmt.Println("  admin -user <username> -revoke   Revoke the admin role")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	middleware.Logger = middleware.NewLogger(os.Stderr, cfg.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	store := repository.NewStore(db)
	gate := access.NewGate(featureflags.NewManager(cfg.FeatureFlags))
	users := service.NewUserService(store, gate, service.NewTokenManager(cfg.JWTSecret, nil, nil), nil)

	role := models.RoleUser
	if *grant {
		role = models.RoleAdmin
	}

	updated, err := users.SetRole(context.Background(), operator(), *username, role)
	if err != nil {
		log.Fatalf("Failed to update %s: %v", *username, err)
	}
	fmt.Printf("User %s (ID: %d) now has role %d\n", updated.Username, updated.ID, updated.Role)
}

// operator names the OS account running the command for the audit log.
func operator() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return "unknown"
}
