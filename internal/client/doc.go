// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client assembles the navdash client runtime: local store, gateway
// transport, sync engine, background workers and terminal screens.
package client
