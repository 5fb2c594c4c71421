// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package tui holds the terminal screens of the navdash client: the masked
// auth code prompt, the one-shot status view and the live dashboard that
// follows sync and session events.
package tui
