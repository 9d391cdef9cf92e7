package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	inTempDir(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, []string{"LO"}, cfg.Allocation.LabTypes)
	assert.Equal(t, 2, cfg.Allocation.MinCourses)
	assert.Equal(t, 3, cfg.Allocation.MaxCourses)
	assert.Nil(t, cfg.Allocation.Seed)
	assert.Equal(t, 10*time.Minute, cfg.Drafts.CacheTTL)
	assert.False(t, cfg.Exports.Enabled)
}

func TestLoadFromEnvironment(t *testing.T) {
	inTempDir(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOCATION_SEED", "1234")
	t.Setenv("ALLOCATION_LAB_TYPES", "LO, ELA")
	t.Setenv("EXPORTS_SIGNED_URL_TTL", "15m")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Port)
	require.NotNil(t, cfg.Allocation.Seed)
	assert.Equal(t, uint64(1234), *cfg.Allocation.Seed)
	assert.Equal(t, []string{"LO", "ELA"}, cfg.Allocation.LabTypes)
	assert.Equal(t, 15*time.Minute, cfg.Exports.SignedURLTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadRejectsBadSeed(t *testing.T) {
	inTempDir(t)
	t.Setenv("ALLOCATION_SEED", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Port:       8080,
			Allocation: AllocationConfig{MinCourses: 2, MaxCourses: 3, UploadMaxSize: 1024},
		}
	}
	require.NoError(t, base().Validate())

	cfg := base()
	cfg.Allocation.MaxCourses = 1
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Auth = AuthConfig{Enabled: true}
	assert.Error(t, cfg.Validate())

	cfg = base()
	cfg.Exports = ExportsConfig{Enabled: true}
	assert.Error(t, cfg.Validate())
}

func TestParseDurationFallback(t *testing.T) {
	assert.Equal(t, time.Minute, parseDuration("", time.Minute))
	assert.Equal(t, time.Minute, parseDuration("soon", time.Minute))
	assert.Equal(t, 2*time.Second, parseDuration("2s", time.Minute))
}

func inTempDir(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
