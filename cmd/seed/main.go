package main

import (
	"context"
	"log"

	"flyerhub/internal/auth"
	"flyerhub/internal/cache"
	"flyerhub/internal/config"
	"flyerhub/internal/db"
	"flyerhub/internal/repository"
	"flyerhub/internal/service"
)

func main() {
	log.Println("Starting seed script...")

	// Load configuration
	cfg := config.Load()

	// Connect to database
	gormDB, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Printf("Connected to %s database", cfg.DBDriver)

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	hasher, err := auth.NewPasswordHasher(cfg.PasswordScheme)
	if err != nil {
		log.Fatalf("Invalid password scheme: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()

	repos := repository.New(gormDB)
	seedService := service.NewSeedService(
		repository.NewTransactor(gormDB),
		hasher,
		service.NewCompanyService(repos.Companies, cacheClient),
	)

	data := service.DefaultSeed()
	seeded, err := seedService.SeedIfEmpty(context.Background(), data)
	if err != nil {
		log.Fatalf("Failed to seed: %v", err)
	}

	if !seeded {
		log.Println("Companies already present, nothing to do")
		return
	}
	log.Printf("Seed completed successfully!")
	log.Printf("  - Companies created: %d", len(data.Companies))
	log.Printf("  - Users created: %d", len(data.Users))
}
