package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 30, cfg.DefaultRegionCapacity)
	assert.False(t, cfg.RegistrationPostponed)
	assert.True(t, cfg.RegistrationOpensAt.IsZero())
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=boroughbash sslmode=disable",
		cfg.DSN())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DEFAULT_REGION_CAPACITY", "5")
	t.Setenv("REGISTRATION_POSTPONED", "true")
	t.Setenv("REGISTRATION_OPENS_AT", "2026-02-11T13:00:00Z")
	t.Setenv("ADMIN_SECRET", "hunter2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5, cfg.DefaultRegionCapacity)
	assert.True(t, cfg.RegistrationPostponed)
	assert.Equal(t, time.Date(2026, 2, 11, 13, 0, 0, 0, time.UTC), cfg.RegistrationOpensAt.UTC())
	assert.Equal(t, "hunter2", cfg.AdminSecret)
}

func TestLoadRejectsNegativeCapacity(t *testing.T) {
	t.Setenv("DEFAULT_REGION_CAPACITY", "-1")
	_, err := Load()
	assert.Error(t, err)
}
