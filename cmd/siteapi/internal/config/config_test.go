package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.ServerAddr)
	assert.Equal(t, "/admin", cfg.Routes.ProtectedPrefix)
	assert.Equal(t, "/admin/login", cfg.Routes.LoginPath)
	assert.Equal(t, "/admin/dashboard", cfg.Routes.AdminHome)
	assert.Equal(t, "/", cfg.Routes.PublicHome)
	assert.Equal(t, "site.session", cfg.Session.CookieName)
	assert.Equal(t, 12*time.Hour, cfg.Session.Duration)
	assert.Equal(t, CacheBackendDatabase, cfg.Cache.Backend)
	assert.False(t, cfg.Blob.Enabled())
}

func TestLoad_WithEnvironmentVariables(t *testing.T) {
	t.Setenv("DATABASE_URL", "file::memory:?cache=shared")
	t.Setenv("SERVER_URL", "http://env:9090")
	t.Setenv("SERVER_ADDR", "env:9090")
	t.Setenv("DEBUG", "true")
	t.Setenv("MAX_DB_CONNECTIONS", "50")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("SESSION_DURATION", "2h")
	t.Setenv("GUARD_TIMEOUT", "500ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "file::memory:?cache=shared", cfg.DatabaseURL)
	assert.Equal(t, "http://env:9090", cfg.ServerURL)
	assert.Equal(t, "env:9090", cfg.ServerAddr)
	assert.True(t, cfg.Debug)
	assert.Equal(t, 50, cfg.MaxDBConnections)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, 2*time.Hour, cfg.Session.Duration)
	assert.Equal(t, 500*time.Millisecond, cfg.Session.GuardTimeout)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "protocol-relative login path",
			env:     map[string]string{"ROUTES_LOGIN_PATH": "//login"},
			wantErr: "ROUTES_LOGIN_PATH",
		},
		{
			name:    "login outside protected prefix",
			env:     map[string]string{"ROUTES_LOGIN_PATH": "/login"},
			wantErr: "must live under",
		},
		{
			name:    "public home under protected prefix",
			env:     map[string]string{"ROUTES_PUBLIC_HOME": "/admin/public"},
			wantErr: "must not live under",
		},
		{
			name:    "login path only shares a name prefix",
			env:     map[string]string{"ROUTES_LOGIN_PATH": "/administrator/login"},
			wantErr: "must live under",
		},
		{
			name:    "blob endpoint without credentials",
			env:     map[string]string{"BLOB_ENDPOINT": "minio:9000"},
			wantErr: "BLOB_ACCESS_KEY_ID",
		},
		{
			name:    "redis backend without url",
			env:     map[string]string{"CACHE_BACKEND": "redis"},
			wantErr: "CACHE_REDIS_URL",
		},
		{
			name:    "unknown cache backend",
			env:     map[string]string{"CACHE_BACKEND": "memcached"},
			wantErr: "unsupported CACHE_BACKEND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_RouteSegments(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "public home sharing a name prefix",
			env:  map[string]string{"ROUTES_PUBLIC_HOME": "/administration"},
		},
		{
			name: "trailing slash on protected prefix",
			env:  map[string]string{"ROUTES_PROTECTED_PREFIX": "/admin/"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.NoError(t, err)
		})
	}
}

func TestUnderPrefix(t *testing.T) {
	tests := []struct {
		path, prefix string
		want         bool
	}{
		{"/admin", "/admin", true},
		{"/admin/login", "/admin", true},
		{"/admin/login", "/admin/", true},
		{"/administrator/login", "/admin", false},
		{"/administration", "/admin", false},
		{"/", "/admin", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, UnderPrefix(tt.path, tt.prefix), "%s under %s", tt.path, tt.prefix)
	}
}

func TestLoad_BlobEnabled(t *testing.T) {
	t.Setenv("BLOB_ENDPOINT", "minio:9000")
	t.Setenv("BLOB_ACCESS_KEY_ID", "key")
	t.Setenv("BLOB_SECRET_ACCESS_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Blob.Enabled())
	assert.Equal(t, "site-assets", cfg.Blob.Bucket)
	assert.Equal(t, int64(10485760), cfg.Blob.MaxUploadBytes)
}
