package tui

import (
	"context"
	"errors"

	"github.com/MKhiriev/navdash/internal/events"
	"github.com/MKhiriev/navdash/internal/logger"
	"github.com/MKhiriev/navdash/internal/service"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUserQuit = errors.New("quit by user")

type TUI struct {
	services *service.ClientServices
	logger   *logger.Logger
}

func New(services *service.ClientServices, logger *logger.Logger) *TUI {
	return &TUI{services: services, logger: logger}
}

// PromptCode asks for an auth code with masked echo. It returns ErrUserQuit
// when the prompt is cancelled.
func (t *TUI) PromptCode(title string) (string, error) {
	finalModel, err := tea.NewProgram(newCodePromptModel(title)).Run()
	if err != nil {
		return "", err
	}

	result, ok := finalModel.(*codePromptModel)
	if !ok {
		return "", tea.ErrProgramKilled
	}
	if result.cancelled {
		return "", ErrUserQuit
	}
	return result.value, nil
}

// Dashboard shows the live status screen until the user quits or ctx is
// done. Bus events are forwarded into the program, so every sync, session
// and connectivity change repaints the screen.
func (t *TUI) Dashboard(ctx context.Context) error {
	model := newDashboardModel(ctx, t.services)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	unsubscribe := t.services.Bus.Subscribe(func(e events.Event) {
		program.Send(busEventMsg{event: e})
	})
	defer unsubscribe()

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
