// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"errors"
	"time"
)

// BackupFormatVersion is the current export format version.
const BackupFormatVersion = 1

// ErrUnsupportedBackup is returned when importing a backup with an unknown
// format version.
var ErrUnsupportedBackup = errors.New("unsupported backup format version")

// Backup is the export/import envelope wrapping all slices.
type Backup struct {
	Version    int                `json:"version"`
	ExportedAt time.Time          `json:"exportedAt"`
	Slices     map[Slice]Snapshot `json:"slices"`
}
