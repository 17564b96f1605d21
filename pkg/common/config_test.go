package common

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(EnvKeyConsoleSessionSecret, testSecret)
	t.Setenv(EnvKeyConsoleApiBaseURL, "")
	t.Setenv(EnvKeyConsoleDbType, "")
	t.Setenv(EnvKeyConsoleAllowedOrigins, "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "file", cfg.DbType)
	assert.Equal(t, ":1080", cfg.HttpHostPort)
	assert.Equal(t, "http://localhost:5000", cfg.ApiBaseURL)
	assert.Equal(t, 10*time.Second, cfg.ApiTimeout)
	assert.Equal(t, 1.0, cfg.LoginRate)
	assert.Equal(t, 5, cfg.LoginBurst)
	assert.Empty(t, cfg.AllowedOrigins)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv(EnvKeyConsoleSessionSecret, testSecret)
	t.Setenv(EnvKeyConsoleApiBaseURL, "https://api.example.com/")
	t.Setenv(EnvKeyConsoleDbType, "memory")
	t.Setenv(EnvKeyConsoleApiTimeoutSec, "3")
	t.Setenv(EnvKeyConsoleAllowedOrigins, "http://a.local, http://b.local ,")
	t.Setenv(EnvKeyConsoleLoginRate, "0.5")
	t.Setenv(EnvKeyConsoleLoginBurst, "2")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.DbType)
	assert.Equal(t, "https://api.example.com", cfg.ApiBaseURL)
	assert.Equal(t, 3*time.Second, cfg.ApiTimeout)
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, cfg.AllowedOrigins)
	assert.Equal(t, 0.5, cfg.LoginRate)
	assert.Equal(t, 2, cfg.LoginBurst)
}

func TestLoadConfig_EdgeCases(t *testing.T) {
	{
		t.Setenv(EnvKeyConsoleSessionSecret, "short")
		_, err := LoadConfig()
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), EnvKeyConsoleSessionSecret))
	}

	{
		t.Setenv(EnvKeyConsoleSessionSecret, testSecret)
		t.Setenv(EnvKeyConsoleDbType, "postgres")
		_, err := LoadConfig()
		require.Error(t, err)
	}

	{
		t.Setenv(EnvKeyConsoleDbType, "memory")
		t.Setenv(EnvKeyConsoleApiBaseURL, "not a url")
		_, err := LoadConfig()
		require.Error(t, err)
	}

	{
		t.Setenv(EnvKeyConsoleApiBaseURL, "http://localhost:5000")
		t.Setenv(EnvKeyConsoleLoginBurst, "many")
		_, err := LoadConfig()
		require.Error(t, err)
	}
}

func TestIsLocalPath(t *testing.T) {
	assert.True(t, IsLocalPath("/users/3"))
	assert.False(t, IsLocalPath("//evil.example.com"))
	assert.False(t, IsLocalPath("https://evil.example.com"))
	assert.False(t, IsLocalPath(""))
	assert.False(t, IsLocalPath("/\\evil"))
}

func TestFilter(t *testing.T) {
	odd := Filter([]int{1, 2, 3, 4, 5}, func(i int) bool { return i%2 == 1 })
	assert.Equal(t, []int{1, 3, 5}, odd)
	assert.Empty(t, Filter([]int{}, func(int) bool { return true }))
}
