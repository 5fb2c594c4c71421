// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// ClientAdapter holds network settings used by the client transport layer.
type ClientAdapter struct {
	// HTTPAddress is the gateway base address.
	HTTPAddress string
	// RequestTimeout is the default timeout for outbound client requests.
	RequestTimeout time.Duration
	// UserAgent is sent with every request. It comes from the build info,
	// not from configuration sources.
	UserAgent string
}

// ClientDB contains local database connection settings for the client.
type ClientDB struct {
	// DSN is the SQLite file path of the local key-value store.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	// DB holds local database settings.
	DB ClientDB
}

// ClientWorkers contains client background job settings.
type ClientWorkers struct {
	// SyncInterval defines how often the background resync runs.
	SyncInterval time.Duration
	// ProbeInterval defines how often gateway reachability is probed.
	ProbeInterval time.Duration
	// DebounceWindow coalesces rapid saves of one slice.
	DebounceWindow time.Duration
}

// ClientConfig is the top-level client configuration assembled from
// [StructuredConfig].
type ClientConfig struct {
	// Adapter contains client transport addresses and timeouts.
	Adapter ClientAdapter
	// Storage contains client storage settings.
	Storage ClientStorage
	// Workers contains background job settings.
	Workers ClientWorkers
	// LogFile is the rotated client log file path.
	LogFile string
}

// GetClientConfig builds and validates a client-specific config view.
//
// The client parses its own command line with cobra, so only defaults,
// environment variables and the JSON file at jsonPath (if non-empty, else the
// CONFIG environment variable) are considered here.
func GetClientConfig(jsonPath string) (*ClientConfig, error) {
	cfg, err := newConfigBuilder().
		withConfig(clientDefaults()).
		withEnv().
		withConfig(&StructuredConfig{JSONFilePath: jsonPath}).
		withJSON().
		build()
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := newClientConfig(cfg)
	return clientCfg, clientCfg.validate()
}

func newClientConfig(cfg *StructuredConfig) *ClientConfig {
	return &ClientConfig{
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{
				DSN: cfg.Storage.DB.DSN,
			},
		},
		Workers: ClientWorkers{
			SyncInterval:   cfg.Workers.SyncInterval,
			ProbeInterval:  cfg.Workers.ProbeInterval,
			DebounceWindow: cfg.Workers.DebounceWindow,
		},
		LogFile: cfg.Log.File,
	}
}
