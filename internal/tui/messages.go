package tui

import (
	"github.com/MKhiriev/navdash/internal/events"
)

type busEventMsg struct {
	event events.Event
}

type statusLoadedMsg struct {
	status Status
	err    error
}

type syncDoneMsg struct {
	err error
}
