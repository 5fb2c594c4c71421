package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MKhiriev/navdash/internal/config"
	handlerHTTP "github.com/MKhiriev/navdash/internal/handler/http"
	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/service"
	"github.com/MKhiriev/navdash/internal/store"
	"github.com/MKhiriev/navdash/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAuthCode = "1234"

func startGateway(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	storages, err := store.NewStorages(ctx, config.Storage{
		DB: config.DB{DSN: filepath.Join(t.TempDir(), "gateway.db")},
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { storages.Close() })

	svcs, err := service.NewServices(ctx, storages, config.StructuredConfig{
		App: config.App{
			AuthCode:        testAuthCode,
			TokenSignKey:    "test-sign-key",
			AccessTokenTTL:  time.Minute,
			RefreshTokenTTL: time.Hour,
		},
	}, models.NewAppBuildInfo("test", "", ""), logger.Nop())
	require.NoError(t, err)

	srv := httptest.NewServer(handlerHTTP.NewHandler(svcs, config.Server{}, logger.Nop()).Init())
	t.Cleanup(srv.Close)
	return srv
}

// writeConfig writes a client config pointing at gatewayURL with a database
// in a fresh temp dir and returns its path.
func writeConfig(t *testing.T, gatewayURL string) string {
	t.Helper()
	dir := t.TempDir()

	raw := fmt.Sprintf(`{
  "adapter": {"http_address": %q, "request_timeout": "5s"},
  "storage": {"db": {"dsn": %q}},
  "workers": {"sync_interval": "1m", "probe_interval": "1m", "debounce_window": "10ms"},
  "log": {"file": %q}
}`, gatewayURL, filepath.Join(dir, "client.db"), filepath.Join(dir, "client.log"))

	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	return path
}

// run executes one CLI invocation and returns its stdout.
func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd, closeApp := newRootCmd(models.NewAppBuildInfo("1.2.3", "2026-10-01", "abc123"))
	defer closeApp()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

// ── root ─────────────────────────────────────────────────────────────────────

func TestNewRootCmd_RegistersCommands(t *testing.T) {
	root, _ := newRootCmd(models.NewAppBuildInfo("", "", ""))

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{
		"login", "logout", "passwd", "sync", "status", "show",
		"edit", "export", "import", "run", "version",
	}, names)
}

func TestVersion_SkipsApp(t *testing.T) {
	// the config file does not exist, so opening the app would fail
	out, err := run(t, "", "version", "--config", filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "abc123")
}

func TestShow_UnknownSlice(t *testing.T) {
	gw := startGateway(t)
	cfg := writeConfig(t, gw.URL)

	_, err := run(t, "", "--config", cfg, "show", "widgets")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrUnknownSlice)
}

// ── end to end ───────────────────────────────────────────────────────────────

func TestLoginEditShowExport(t *testing.T) {
	gw := startGateway(t)
	cfg := writeConfig(t, gw.URL)

	out, err := run(t, "", "--config", cfg, "login", "--code", testAuthCode)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in.")

	prefs := `{"theme":"dark","language":"en","openInNewTab":true,"showSearch":false,"cardSize":"small","columns":6}`
	out, err = run(t, prefs, "--config", cfg, "edit", "preferences", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved and pushed.")

	out, err = run(t, "", "--config", cfg, "show", "preferences")
	require.NoError(t, err)
	assert.Contains(t, out, `"theme": "dark"`)
	assert.Contains(t, out, `"columns": 6`)

	out, err = run(t, "", "--config", cfg, "export")
	require.NoError(t, err)

	var backup models.Backup
	require.NoError(t, json.Unmarshal([]byte(out), &backup))
	assert.Equal(t, models.BackupFormatVersion, backup.Version)
	assert.JSONEq(t, prefs, string(backup.Slices[models.PreferencesSlice].Data))
}

func TestLogin_WrongCode(t *testing.T) {
	gw := startGateway(t)
	cfg := writeConfig(t, gw.URL)

	_, err := run(t, "", "--config", cfg, "login", "--code", "0000")
	require.Error(t, err)
	assert.Equal(t, "Wrong auth code", err.Error())
}

func TestEdit_OfflineKeepsEditPending(t *testing.T) {
	gw := startGateway(t)
	cfg := writeConfig(t, gw.URL)
	gw.Close()

	out, err := run(t, `{"theme":"light"}`, "--config", cfg, "edit", "preferences", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved locally; push pending")

	out, err = run(t, "", "--config", cfg, "show", "preferences")
	require.NoError(t, err)
	assert.Contains(t, out, `"theme": "light"`)
}

func TestImport_FromFile(t *testing.T) {
	gw := startGateway(t)
	cfg := writeConfig(t, gw.URL)

	_, err := run(t, "", "--config", cfg, "login", "--code", testAuthCode)
	require.NoError(t, err)

	backup := `{"version":1,"exportedAt":"2026-10-01T00:00:00Z","slices":{` +
		`"preferences":{"v":1,"data":{"theme":"solarized"},"updatedAt":1,"dirty":false}}}`
	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, os.WriteFile(path, []byte(backup), 0o600))

	out, err := run(t, "", "--config", cfg, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 slices.")

	out, err = run(t, "", "--config", cfg, "show", "preferences")
	require.NoError(t, err)
	assert.Contains(t, out, `"theme": "solarized"`)
}

func TestImport_RequiresSource(t *testing.T) {
	gw := startGateway(t)
	cfg := writeConfig(t, gw.URL)

	_, err := run(t, "", "--config", cfg, "import")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--clipboard")
}

// ── helpers ──────────────────────────────────────────────────────────────────

func TestSliceNames(t *testing.T) {
	assert.Equal(t, []string{"links", "background", "preferences"}, sliceNames())
}

func TestWriteIndented_InvalidJSON(t *testing.T) {
	var buf bytes.Buffer
	err := writeIndented(&buf, json.RawMessage(`{"a":`))
	require.Error(t, err)
	assert.Empty(t, buf.String())
}
