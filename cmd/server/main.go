package main

import (
	"context"
	"log"
	"net/http"
	"strings"

	_ "flyerhub/docs" // swagger docs

	"github.com/labstack/echo/v4"

	"flyerhub/internal/auth"
	"flyerhub/internal/cache"
	"flyerhub/internal/config"
	"flyerhub/internal/db"
	"flyerhub/internal/handler"
	"flyerhub/internal/repository"
	"flyerhub/internal/router"
	"flyerhub/internal/service"
	"flyerhub/internal/storage"
)

// @title Flyer Distribution API
// @version 1.0
// @description Multi-tenant flyer distribution: admins upload image flyers per company, company users list, download and share them.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	e := echo.New()

	gormDB, err := db.Open(cfg)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if cfg.ResetDB {
		log.Println("RESET_DB=true detected, dropping all tables...")
		db.Reset(gormDB)
		log.Println("Tables dropped")
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if !cacheClient.Enabled() {
		log.Println("REDIS_ADDR not set, running without cache and token store")
	}

	hasher, err := auth.NewPasswordHasher(cfg.PasswordScheme)
	if err != nil {
		log.Fatalf("password scheme: %v", err)
	}

	// Initialize repositories
	repos := repository.New(gormDB)
	files := storage.NewLocal(cfg.UploadDir)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(repos.Users, hasher, jwtService, tokenStore)
	companyService := service.NewCompanyService(repos.Companies, cacheClient)
	flyerService := service.NewFlyerService(repository.NewTransactor(gormDB), repos.Flyers, repos.Companies, files, cfg.PublicPrefix)
	seedService := service.NewSeedService(repository.NewTransactor(gormDB), hasher, companyService)

	seeded, err := seedService.SeedIfEmpty(context.Background(), service.DefaultSeed())
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if seeded {
		log.Println("Seeded initial companies and users")
	}

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	flyerHandler := handler.NewFlyerHandler(companyService, flyerService)

	// Register routes
	router.Register(e, cfg, jwtService, tokenStore, authHandler, flyerHandler)

	if cfg.AuthEnforce {
		log.Println("AUTH_ENFORCE=true, bearer token required on /api")
	}
	log.Printf("Serving uploads from %s at %s", files.Root(), cfg.PublicPrefix)
	log.Printf("Swagger documentation available at: %s", swaggerURL(cfg.SwaggerHost, cfg.ServerPort))

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}

// swaggerURL may be given a host with or without scheme.
func swaggerURL(host, port string) string {
	if host == "" {
		return "http://localhost:" + port + "/swagger/index.html"
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return strings.TrimSuffix(host, "/") + "/swagger/index.html"
}
