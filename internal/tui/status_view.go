package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/MKhiriev/navdash/internal/service"
	"github.com/MKhiriev/navdash/models"
)

// Connectivity is the last known reachability of the gateway.
type Connectivity int

const (
	ConnectivityUnknown Connectivity = iota
	Online
	Offline
)

func (c Connectivity) String() string {
	switch c {
	case Online:
		return "online"
	case Offline:
		return "offline"
	default:
		return "unknown"
	}
}

// Status is everything the status view shows.
type Status struct {
	Session      models.SessionState
	Connectivity Connectivity
	Slices       map[models.Slice]models.Snapshot
	Syncing      bool
	Notice       string
}

// LoadStatus reads the session state and every cached slice.
func LoadStatus(ctx context.Context, services *service.ClientServices) (Status, error) {
	slices, err := services.SyncCoordinator.Load(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Session: services.Session.State(),
		Slices:  slices,
	}, nil
}

// RenderStatus renders s as a plain block, without hot keys.
func RenderStatus(s Status) string {
	return renderPage("NAVDASH", statusBody(s), "")
}

func statusBody(s Status) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Session  │ %s\n", sessionLabel(s.Session))
	fmt.Fprintf(&b, "Gateway  │ %s\n", connectivityLabel(s.Connectivity))
	b.WriteString("\n")
	b.WriteString("Slice        │ State    │ Updated\n")
	b.WriteString("─────────────┼──────────┼─────────────────────\n")
	for _, slice := range models.AllSlices() {
		snap, ok := s.Slices[slice]
		state := okStyle.Render("synced  ")
		if ok && snap.Dirty {
			state = warnStyle.Render("pending ")
		}
		fmt.Fprintf(&b, "%-12s │ %s │ %s\n", fitText(slice.String(), 12), state, updatedLabel(snap.UpdatedAt))
	}

	if s.Syncing {
		b.WriteString("\n[Syncing...]")
	}
	if s.Notice != "" {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(s.Notice))
	}

	return strings.TrimRight(b.String(), "\n")
}

func sessionLabel(state models.SessionState) string {
	switch state {
	case models.Authenticated:
		return okStyle.Render(state.String())
	case models.Unauthenticated:
		return errorStyle.Render(state.String())
	default:
		return warnStyle.Render(state.String())
	}
}

func connectivityLabel(c Connectivity) string {
	switch c {
	case Online:
		return okStyle.Render(c.String())
	case Offline:
		return errorStyle.Render(c.String())
	default:
		return helpStyle.Render(c.String())
	}
}

func updatedLabel(updatedAt int64) string {
	if updatedAt <= 0 {
		return "never"
	}
	return time.UnixMilli(updatedAt).Local().Format(time.DateTime)
}
