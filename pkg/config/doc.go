// Package config provides configuration loading for simple-entitlements.
//
// Configuration comes from environment variables via cleanenv struct tags,
// optionally seeded from a .env file by the command entrypoint. DatabaseConfig
// bridges into db-utils for pool creation:
//
//	cfg := Config{}
//	cleanenv.ReadEnv(&cfg)
//	pool, err := dbutils.NewDbPool(ctx, cfg.DbConfig.ToDbConfig())
//	if err != nil {
//		slog.Error("Failed creating db pool", "err", err)
//		os.Exit(1)
//	}
package config
