package config

import (
	"testing"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadEnvAppliesDefaults(t *testing.T) {
	var cfg DatabaseConfig
	require.NoError(t, cleanenv.ReadEnv(&cfg))

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, uint16(5432), cfg.Port)
	assert.Equal(t, "entitlement_db", cfg.Database)
}

func TestReadEnvOverrides(t *testing.T) {
	t.Setenv("ENT_PG_HOST", "db.internal")
	t.Setenv("ENT_PG_PORT", "5433")
	t.Setenv("ENT_PG_PASSWORD", "secret")

	var cfg DatabaseConfig
	require.NoError(t, cleanenv.ReadEnv(&cfg))

	assert.Equal(t, "db.internal", cfg.Host)
	assert.Equal(t, uint16(5433), cfg.Port)
	assert.Equal(t, "secret", cfg.Password)
}

func TestToDbConfig(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		Database: "entitlement_db",
		User:     "entitlement",
		Password: "secret",
	}

	dbConfig := cfg.ToDbConfig()
	assert.Equal(t, cfg.Host, dbConfig.Host)
	assert.Equal(t, cfg.Port, dbConfig.Port)
	assert.Equal(t, cfg.Database, dbConfig.Database)
	assert.Equal(t, cfg.User, dbConfig.User)
	assert.Equal(t, cfg.Password, dbConfig.Password)
}
