package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "")
	t.Setenv("STORE_BACKEND", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "lead-dashboard", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, StoreBackendFile, cfg.Store.Backend)
	assert.Equal(t, 7, cfg.Dashboard.DelayThresholdDays)
	assert.False(t, cfg.Dashboard.SampleFallback)
	assert.Equal(t, time.UTC, cfg.Dashboard.Location())
	assert.Equal(t, time.Minute, cfg.Dashboard.CacheTTL())
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.MonitorInterval())
	assert.Equal(t, "crm:leads-changed", cfg.Redis.ChangeChannel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("POSTGRES_DSN", "postgres://localhost/leads")
	t.Setenv("DASHBOARD_DELAY_THRESHOLD_DAYS", "10")
	t.Setenv("DASHBOARD_TIMEZONE", "Asia/Riyadh")
	t.Setenv("DASHBOARD_SAMPLE_FALLBACK", "true")
	t.Setenv("DASHBOARD_CACHE_TTL_SECONDS", "0")
	t.Setenv("DASHBOARD_MONITOR_INTERVAL_SECONDS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, StoreBackendPostgres, cfg.Store.Backend)
	assert.Equal(t, 10, cfg.Dashboard.DelayThresholdDays)
	assert.Equal(t, "Asia/Riyadh", cfg.Dashboard.Location().String())
	assert.True(t, cfg.Dashboard.SampleFallback)
	assert.Zero(t, cfg.Dashboard.CacheTTL())
	assert.Equal(t, 300*time.Second, cfg.Dashboard.MonitorInterval())
}

func TestLoad_InvalidStore(t *testing.T) {
	tests := map[string]map[string]string{
		"UnknownBackend":     {"STORE_BACKEND": "s3"},
		"PostgresWithoutDSN": {"STORE_BACKEND": "postgres", "POSTGRES_DSN": ""},
		"BadRedisDB":         {"REDIS_DB": "x"},
	}
	for name, env := range tests {
		t.Run(name, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestDashboardConfig_UnknownZoneFallsBackToUTC(t *testing.T) {
	assert.Equal(t, time.UTC, DashboardConfig{TimeZone: "Mars/Olympus"}.Location())
}
