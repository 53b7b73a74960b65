package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/actiongrid/internal/pipelinectx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	testCases := []struct {
		name        string
		mutate      func(c *Config)
		errContains string
	}{
		{name: "defaults are valid", mutate: func(c *Config) {}},
		{
			name:        "error - no search path",
			mutate:      func(c *Config) { c.SearchPath = nil },
			errContains: "SearchPath is required",
		},
		{
			name:        "error - unknown log level",
			mutate:      func(c *Config) { c.LogLevel = "verbose" },
			errContains: "LogLevel must be one of",
		},
		{
			name:        "error - unknown log format",
			mutate:      func(c *Config) { c.LogFormat = "xml" },
			errContains: "LogFormat must be one of",
		},
		{
			name:        "error - sync url",
			mutate:      func(c *Config) { c.Sync.URL = "not a url" },
			errContains: "Sync.URL must be a URL",
		},
		{
			name:        "error - port out of range",
			mutate:      func(c *Config) { c.HealthcheckPort = 70000 },
			errContains: "HealthcheckPort",
		},
		{
			name:        "error - empty action name",
			mutate:      func(c *Config) { c.Actions = []string{"publish", ""} },
			errContains: "Actions[1] is required",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)

			got, err := NewConfig(cfg)

			if tc.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, cfg, *got)
		})
	}
}

func TestConfigSources_Precedence(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "actiongrid.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
search_path = ["/from/file"]
log_level   = "debug"

sync {
  url = "https://ui.example.com"
}

context {
  project = "file-project"
  user    = "file-user"
  extra   = { site = "paris" }
}
`), 0o644))
	env := map[string]string{
		EnvSearchPath:          "/env/a" + string(os.PathListSeparator) + "/env/b",
		pipelinectx.EnvProject: "env-project",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	// Act
	cfg := DefaultConfig()
	file, err := DecodeConfigFile(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, cfg.ApplyFile(file))
	require.NoError(t, cfg.ApplyEnv(lookup))

	// Assert
	assert.Equal(t, []string{"/env/a", "/env/b"}, cfg.SearchPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat, "unset settings keep their default")
	assert.Equal(t, SyncConfig{URL: "https://ui.example.com", Namespace: "/"}, cfg.Sync)
	assert.Equal(t, pipelinectx.Context{
		Project: "env-project",
		User:    "file-user",
		Extra:   map[string]any{"site": "paris"},
	}, cfg.Context)
	assert.True(t, cfg.Syncing())
	cfg.Batch = true
	assert.False(t, cfg.Syncing())
}

func TestDecodeConfigFile_Errors(t *testing.T) {
	testCases := []struct {
		name        string
		content     string
		errContains string
	}{
		{name: "syntax", content: "search_path = [", errContains: "failed to parse HCL file"},
		{name: "unknown attribute", content: `workers = 4`, errContains: "failed to decode HCL file"},
		{name: "wrong type", content: `healthcheck_port = "high"`, errContains: "failed to decode HCL file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "actiongrid.hcl")
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0o644))

			_, err := DecodeConfigFile(context.Background(), path)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errContains)
		})
	}
}
