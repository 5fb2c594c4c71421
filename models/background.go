// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

// BackgroundType enumerates how [BackgroundSpec.Value] is interpreted.
type BackgroundType string

const (
	BackgroundColor    BackgroundType = "color"
	BackgroundGradient BackgroundType = "gradient"
	BackgroundImage    BackgroundType = "image"
)

// BackgroundSpec describes the dashboard background.
type BackgroundSpec struct {
	Type  BackgroundType `json:"type"`
	Value string         `json:"value"`
	// Blur is the blur radius in pixels applied to image backgrounds.
	Blur int `json:"blur,omitempty"`
	// Dim is the darkening overlay opacity in percent (0-100).
	Dim int `json:"dim,omitempty"`
}

// DefaultBackground is used when nothing is stored locally or remotely.
func DefaultBackground() BackgroundSpec {
	return BackgroundSpec{
		Type:  BackgroundGradient,
		Value: "linear-gradient(135deg, #1e3c72 0%, #2a5298 100%)",
	}
}
