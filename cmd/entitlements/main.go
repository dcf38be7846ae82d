package main

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/tendant/chi-demo/app"
	dbutils "github.com/tendant/db-utils/db"
	"github.com/tendant/simple-entitlements/pkg/catalog"
	"github.com/tendant/simple-entitlements/pkg/config"
	"github.com/tendant/simple-entitlements/pkg/entitlement"
	entitlementapi "github.com/tendant/simple-entitlements/pkg/entitlement/api"
	"github.com/tendant/simple-entitlements/pkg/user"
	userapi "github.com/tendant/simple-entitlements/pkg/user/api"
)

type Config struct {
	DbConfig        config.DatabaseConfig
	AppConfig       app.AppConfig
	AssignWorkers   int `env:"ENT_ASSIGN_WORKERS" env-default:"8"`
	ValidateWorkers int `env:"ENT_VALIDATE_WORKERS" env-default:"4"`
}

// loadEnvFile loads environment variables from .env file if it exists
// Only sets variables that are not already set in the environment
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("Failed to get current working directory", "error", err)
		return
	}
	envFile := filepath.Join(cwd, ".env")

	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		return
	}

	slog.Info("Loading configuration from .env file", "path", envFile)
	if err := godotenv.Load(envFile); err != nil {
		slog.Warn("Failed to load .env file", "error", err)
	}
}

func main() {

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource: true,
	}))
	slog.SetDefault(logger)

	loadEnvFile()

	cfg := Config{}
	cleanenv.ReadEnv(&cfg)

	server := app.DefaultApp()

	app.RoutesHealthz(server.R)

	dbConfig := cfg.DbConfig.ToDbConfig()
	pool, err := dbutils.NewDbPool(context.Background(), dbConfig)
	if err != nil {
		slog.Error("Failed creating dbpool", "db", dbConfig.Database, "host", dbConfig.Host, "port", dbConfig.Port, "user", dbConfig.User)
		os.Exit(-1)
	}

	userRepo := user.NewPostgresUserRepository(pool)
	userService := user.NewUserService(userRepo, userRepo)
	userHandle := userapi.NewHandle(userService)

	validator := entitlement.NewValidator(cfg.ValidateWorkers)
	defer validator.Close()

	roleService, err := newReconcileService(pool, catalog.KindRole, userRepo, validator, cfg.AssignWorkers)
	if err != nil {
		slog.Error("Failed creating role service", "err", err)
		os.Exit(-1)
	}
	permissionService, err := newReconcileService(pool, catalog.KindPermission, userRepo, validator, cfg.AssignWorkers)
	if err != nil {
		slog.Error("Failed creating permission service", "err", err)
		os.Exit(-1)
	}

	server.R.Mount("/api/users", userapi.Handler(userHandle))
	server.R.Mount("/api/roles", entitlementapi.Handler(entitlementapi.NewHandle(roleService)))
	server.R.Mount("/api/permissions", entitlementapi.Handler(entitlementapi.NewHandle(permissionService)))

	server.Run()
}

func newReconcileService(pool *pgxpool.Pool, kind catalog.Kind, users entitlement.UserDirectory, validator *entitlement.Validator, workers int) (*entitlement.ReconcileService, error) {
	store, err := catalog.NewPostgresCatalogStore(pool, kind)
	if err != nil {
		return nil, err
	}
	grants, err := entitlement.NewPostgresGrantRepository(pool, kind)
	if err != nil {
		return nil, err
	}
	resolver := catalog.NewResolver(store, kind)
	return entitlement.NewReconcileService(resolver, grants, users, validator,
		entitlement.WithAssignWorkers(workers)), nil
}
