package config

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func writeTempJSONConfig(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	f, err := os.CreateTemp(t.TempDir(), "config-*.json")
	require.NoError(t, err)
	_, err = f.Write(data)
	require.NoError(t, err)
	require.NoError(t, f.Close())
	return f.Name()
}

// ── build ─────────────────────────────────────────────────────────────────────

func TestBuild_EmptyBuilder(t *testing.T) {
	cfg, err := newConfigBuilder().build()
	require.NoError(t, err)
	assert.Equal(t, &StructuredConfig{}, cfg)
}

func TestBuild_PropagatesBuilderError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError

	cfg, err := b.build()
	assert.Nil(t, cfg)
	assert.ErrorIs(t, err, assert.AnError)
}

// Later sources override earlier non-zero fields; zero fields never erase.
func TestBuild_LaterSourceWins(t *testing.T) {
	b := newConfigBuilder().
		withConfig(serverDefaults()).
		withConfig(&StructuredConfig{Server: Server{HTTPAddress: "0.0.0.0:9000"}}).
		withConfig(&StructuredConfig{App: App{TokenSignKey: "k"}})

	cfg, err := b.build()
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Server.HTTPAddress)
	assert.Equal(t, DefaultRequestTimeout, cfg.Server.RequestTimeout)
	assert.Equal(t, "k", cfg.App.TokenSignKey)
	assert.Equal(t, DefaultAccessTokenTTL, cfg.App.AccessTokenTTL)
}

// ── withEnv ───────────────────────────────────────────────────────────────────

func TestWithEnv_ReadsEnvVars(t *testing.T) {
	t.Setenv("APP_TOKEN_SIGN_KEY", "env-key")
	t.Setenv("WORKERS_DEBOUNCE_WINDOW", "250ms")

	b := newConfigBuilder()
	assert.Same(t, b, b.withEnv())

	require.NoError(t, b.err)
	require.Len(t, b.configs, 1)
	assert.Equal(t, "env-key", b.configs[0].App.TokenSignKey)
	assert.Equal(t, 250*time.Millisecond, b.configs[0].Workers.DebounceWindow)
}

func TestWithEnv_InvalidValue(t *testing.T) {
	t.Setenv("SERVER_SECURE_COOKIES", "sometimes")

	b := newConfigBuilder().withEnv()
	assert.Error(t, b.err)
	assert.Empty(t, b.configs)
}

// ── withFlags ─────────────────────────────────────────────────────────────────

func TestWithFlags_AppendsParsedFlags(t *testing.T) {
	b := newConfigBuilder().withFlags([]string{"-a", "localhost:9090", "-secure-cookies"})

	require.NoError(t, b.err)
	require.Len(t, b.configs, 1)
	assert.Equal(t, "localhost:9090", b.configs[0].Server.HTTPAddress)
	assert.True(t, b.configs[0].Server.SecureCookies)
}

func TestWithFlags_UnknownFlag(t *testing.T) {
	b := newConfigBuilder().withFlags([]string{"-nope"})
	assert.Error(t, b.err)
}

// ── withJSON ──────────────────────────────────────────────────────────────────

func TestWithJSON_NoOp_WhenNoPathSet(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{})
	b.withJSON()

	assert.Len(t, b.configs, 1)
	assert.NoError(t, b.err)
}

func TestWithJSON_UsesLastPath(t *testing.T) {
	first := StructuredJSONConfig{}
	first.Adapter.HTTPAddress = "first:1"
	last := StructuredJSONConfig{}
	last.Adapter.HTTPAddress = "last:2"

	b := newConfigBuilder()
	b.configs = append(b.configs,
		&StructuredConfig{JSONFilePath: writeTempJSONConfig(t, first)},
		&StructuredConfig{JSONFilePath: writeTempJSONConfig(t, last)},
	)
	b.withJSON()

	require.NoError(t, b.err)
	require.Len(t, b.configs, 3)
	assert.Equal(t, "last:2", b.configs[2].Adapter.HTTPAddress)
}

func TestWithJSON_SetsError_WhenFileNotFound(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: "/nonexistent/config.json"})
	b.withJSON()

	assert.Error(t, b.err)
}

func TestWithJSON_SkippedAfterEarlierError(t *testing.T) {
	b := newConfigBuilder()
	b.err = assert.AnError
	b.configs = append(b.configs, &StructuredConfig{JSONFilePath: writeTempJSONConfig(t, StructuredJSONConfig{})})
	b.withJSON()

	assert.ErrorIs(t, b.err, assert.AnError)
	assert.Len(t, b.configs, 1)
}

// ── GetStructuredConfig ───────────────────────────────────────────────────────

func TestGetStructuredConfig_Priority(t *testing.T) {
	jsonCfg := StructuredJSONConfig{}
	jsonCfg.App.RefreshTokenTTL = Duration(48 * time.Hour)
	path := writeTempJSONConfig(t, jsonCfg)

	t.Setenv("APP_TOKEN_SIGN_KEY", "from-env")
	t.Setenv("SERVER_ADDRESS", "localhost:7000")

	cfg, err := GetStructuredConfig([]string{"-a", "localhost:7001", "-c", path})
	require.NoError(t, err)
	require.NoError(t, cfg.ValidateServer())

	assert.Equal(t, "from-env", cfg.App.TokenSignKey)
	assert.Equal(t, "localhost:7001", cfg.Server.HTTPAddress, "flags override env")
	assert.Equal(t, 48*time.Hour, cfg.App.RefreshTokenTTL, "json overrides defaults")
	assert.Equal(t, DefaultAccessTokenTTL, cfg.App.AccessTokenTTL)
	assert.Equal(t, DefaultServerDSN, cfg.Storage.DB.DSN)
}
