package tui

import (
	"context"
	"fmt"

	"github.com/MKhiriev/navdash/internal/events"
	"github.com/MKhiriev/navdash/internal/service"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

type dashboardModel struct {
	ctx      context.Context
	services *service.ClientServices

	status Status
}

func newDashboardModel(ctx context.Context, services *service.ClientServices) *dashboardModel {
	return &dashboardModel{ctx: ctx, services: services}
}

func (m *dashboardModel) Init() tea.Cmd {
	return m.cmdLoad()
}

// Update never calls the services directly: they publish on the bus, and
// bus events are fed back into this loop, so every service call runs in a
// command.
func (m *dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusLoadedMsg:
		if msg.err != nil {
			m.status.Notice = HumanizeError(msg.err)
			return m, nil
		}
		msg.status.Connectivity = m.status.Connectivity
		msg.status.Syncing = m.status.Syncing
		msg.status.Notice = m.status.Notice
		m.status = msg.status
		return m, nil

	case busEventMsg:
		return m, m.applyEvent(msg.event)

	case syncDoneMsg:
		m.status.Syncing = false
		if msg.err != nil {
			m.status.Notice = HumanizeError(msg.err)
		}
		return m, m.cmdLoad()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.quit):
			return m, tea.Quit
		case key.Matches(msg, keys.sync):
			if m.status.Syncing {
				return m, nil
			}
			m.status.Syncing = true
			m.status.Notice = ""
			return m, m.cmdResync()
		case key.Matches(msg, keys.flush):
			m.status.Notice = ""
			return m, m.cmdFlush()
		}
	}
	return m, nil
}

func (m *dashboardModel) applyEvent(e events.Event) tea.Cmd {
	switch e := e.(type) {
	case events.SessionChanged:
		m.status.Session = e.State
	case events.Connectivity:
		m.status.Connectivity = Offline
		if e.Online {
			m.status.Connectivity = Online
		}
	case events.Notice:
		m.status.Notice = fmt.Sprintf("%s (%s): %s", e.Slice, e.Kind, HumanizeError(e.Err))
	case events.SliceChanged, events.SyncStatus:
		return m.cmdLoad()
	}
	return nil
}

func (m *dashboardModel) View() string {
	return renderPage("NAVDASH", statusBody(m.status), "s: resync │ f: push pending │ q: quit")
}

func (m *dashboardModel) cmdLoad() tea.Cmd {
	ctx, services := m.ctx, m.services
	return func() tea.Msg {
		status, err := LoadStatus(ctx, services)
		return statusLoadedMsg{status: status, err: err}
	}
}

func (m *dashboardModel) cmdResync() tea.Cmd {
	ctx, coordinator := m.ctx, m.services.SyncCoordinator
	return func() tea.Msg {
		return syncDoneMsg{err: coordinator.Resync(ctx)}
	}
}

func (m *dashboardModel) cmdFlush() tea.Cmd {
	ctx, coordinator := m.ctx, m.services.SyncCoordinator
	return func() tea.Msg {
		return syncDoneMsg{err: coordinator.Flush(ctx)}
	}
}
