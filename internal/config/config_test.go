package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("STORAGE", "")
	t.Setenv("DSPACE_TIMEOUT", "")
	t.Setenv("DEV_ROLES", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "postgres", cfg.Storage)
	assert.Equal(t, "http://localhost:8080/server/api", cfg.DSpaceURL)
	assert.Equal(t, "test@test.edu", cfg.DSpaceUser)
	assert.Equal(t, 30*time.Second, cfg.DSpaceTimeout)
	assert.Equal(t, []string{"administrátor"}, cfg.DevRoles)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("STORAGE", "memory")
	t.Setenv("DSPACE_TIMEOUT", "5s")
	t.Setenv("DEV_ROLES", " reader , administrátor dokumentů ,")
	t.Setenv("DEMODATA", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage)
	assert.Equal(t, 5*time.Second, cfg.DSpaceTimeout)
	assert.Equal(t, []string{"reader", "administrátor dokumentů"}, cfg.DevRoles)
	assert.True(t, cfg.DemoData)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("STORAGE", "sqlite")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORAGE", "memory")
	t.Setenv("DSPACE_TIMEOUT", "soon")
	_, err = Load()
	assert.Error(t, err)
}

func TestGetTablePrefix(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"prod", ""},
		{"test", "test_"},
		{"dev", "dev_"},
		{"staging", "dev_"},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			os.Unsetenv("TABLE_PREFIX")
			assert.Equal(t, tt.want, getTablePrefix(tt.env))
		})
	}

	t.Setenv("TABLE_PREFIX", "custom_")
	assert.Equal(t, "custom_", getTablePrefix("prod"))
}

func TestSetupLogFile_Rotates(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 4; i++ {
		name := filepath.Join(dir, fmt.Sprintf("docsgraph-2020-01-0%dT00-00-00.log", i+1))
		require.NoError(t, os.WriteFile(name, nil, 0o600))
	}

	f, err := SetupLogFile(dir, 3)
	require.NoError(t, err)
	defer f.Close()

	files, err := filepath.Glob(filepath.Join(dir, "docsgraph-*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 3)
	assert.NotContains(t, files, filepath.Join(dir, "docsgraph-2020-01-01T00-00-00.log"))
}
