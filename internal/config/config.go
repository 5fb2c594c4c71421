// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// navdash gateway server and the client. It aggregates all sub-configurations
// and is populated by merging defaults, environment variables, command-line
// flags and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds the authentication secrets and token lifetimes.
	App App `envPrefix:"APP_"`

	// Storage holds the key-value database settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the gateway listener settings.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the client transport settings.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds the client background job settings.
	Workers Workers `envPrefix:"WORKERS_"`

	// Log holds log output settings.
	Log Log `envPrefix:"LOG_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// When non-empty, the file is parsed and merged on top of the values
	// already loaded from environment variables and flags.
	// Populated via the CONFIG environment variable, the -c / -config flag
	// or the client --config option.
	JSONFilePath string `env:"CONFIG"`
}

// Storage groups the configuration of the storage backend.
type Storage struct {
	// DB holds the database connection settings.
	DB DB `envPrefix:"DB_"`
}

// App holds the gateway authentication settings.
type App struct {
	// AuthCode is the shared secret users log in with. It is hashed with
	// bcrypt and stored on first start; later starts ignore it once a hash
	// exists.
	// Env: APP_AUTH_CODE
	AuthCode string `env:"AUTH_CODE"`

	// TokenSignKey is the secret used to sign and verify bearer tokens.
	// Env: APP_TOKEN_SIGN_KEY
	TokenSignKey string `env:"TOKEN_SIGN_KEY"`

	// AccessTokenTTL is the lifetime of access tokens (e.g. "15m").
	// Env: APP_ACCESS_TOKEN_TTL
	AccessTokenTTL time.Duration `env:"ACCESS_TOKEN_TTL"`

	// RefreshTokenTTL is the lifetime of refresh tokens (e.g. "720h").
	// Env: APP_REFRESH_TOKEN_TTL
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL"`
}

// Server holds network and timeout settings for the gateway listener.
type Server struct {
	// HTTPAddress is the TCP address the gateway listens on, in "host:port"
	// format.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds the handling time of a single request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// SecureCookies sets the Secure attribute on the refresh cookie. Enable
	// it whenever the gateway is served over TLS.
	// Env: SERVER_SECURE_COOKIES
	SecureCookies bool `env:"SECURE_COOKIES"`
}

// DB holds connection settings for the key-value database.
type DB struct {
	// DSN selects the backend by its form: a "postgres://" or
	// "postgresql://" URL opens PostgreSQL through pgx, anything else is
	// treated as a SQLite file path.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Adapter holds the client transport settings.
type Adapter struct {
	// HTTPAddress is the base URL of the gateway (e.g. "localhost:8080" or
	// "https://dash.example.com").
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the timeout of a single outbound request.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Workers holds the client background job settings.
type Workers struct {
	// SyncInterval is the period of the background resync.
	// Env: WORKERS_SYNC_INTERVAL
	SyncInterval time.Duration `env:"SYNC_INTERVAL"`

	// ProbeInterval is how often the connectivity watcher probes the gateway.
	// Env: WORKERS_PROBE_INTERVAL
	ProbeInterval time.Duration `env:"PROBE_INTERVAL"`

	// DebounceWindow coalesces rapid saves of the same slice.
	// Env: WORKERS_DEBOUNCE_WINDOW
	DebounceWindow time.Duration `env:"DEBOUNCE_WINDOW"`
}

// Log holds log output settings.
type Log struct {
	// File is the client log file path. Empty means next to the executable.
	// Env: LOG_FILE
	File string `env:"FILE"`
}

// Default values applied before any other source.
const (
	DefaultServerAddress   = "localhost:8080"
	DefaultRequestTimeout  = 30 * time.Second
	DefaultAdapterTimeout  = 10 * time.Second
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 30 * 24 * time.Hour
	DefaultSyncInterval    = 5 * time.Minute
	DefaultProbeInterval   = 15 * time.Second
	DefaultDebounceWindow  = time.Second
	DefaultClientDSN       = "navdash.db"
	DefaultServerDSN       = "navdash-gateway.db"
)

func serverDefaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			AccessTokenTTL:  DefaultAccessTokenTTL,
			RefreshTokenTTL: DefaultRefreshTokenTTL,
		},
		Storage: Storage{DB: DB{DSN: DefaultServerDSN}},
		Server: Server{
			HTTPAddress:    DefaultServerAddress,
			RequestTimeout: DefaultRequestTimeout,
		},
	}
}

func clientDefaults() *StructuredConfig {
	return &StructuredConfig{
		Storage: Storage{DB: DB{DSN: DefaultClientDSN}},
		Adapter: Adapter{
			HTTPAddress:    DefaultServerAddress,
			RequestTimeout: DefaultAdapterTimeout,
		},
		Workers: Workers{
			SyncInterval:   DefaultSyncInterval,
			ProbeInterval:  DefaultProbeInterval,
			DebounceWindow: DefaultDebounceWindow,
		},
	}
}

// GetStructuredConfig loads, merges, and validates the gateway server
// configuration from all available sources in the following priority order
// (last source wins for non-zero fields):
//  1. Built-in defaults
//  2. Environment variables
//  3. Command-line flags (os.Args)
//  4. JSON file (path resolved from sources 2 and 3)
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withConfig(serverDefaults()).
		withEnv().
		withFlags(args).
		withJSON().
		build()
}
