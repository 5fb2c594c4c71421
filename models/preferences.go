// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// Preferences is the user preference slice.
type Preferences struct {
	Theme        string `json:"theme"`
	Language     string `json:"language"`
	OpenInNewTab bool   `json:"openInNewTab"`
	ShowSearch   bool   `json:"showSearch"`
	CardSize     string `json:"cardSize"`
	Columns      int    `json:"columns"`
}

// DefaultPreferences is used when nothing is stored locally or remotely.
func DefaultPreferences() Preferences {
	return Preferences{
		Theme:        "system",
		Language:     "en",
		OpenInNewTab: true,
		ShowSearch:   true,
		CardSize:     "medium",
		Columns:      4,
	}
}
