package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/limitless/internal/app"
	"github.com/julianstephens/limitless/internal/clock"
	"github.com/julianstephens/limitless/internal/config"
	"github.com/julianstephens/limitless/internal/storage"
)

// Context is handed to every command's Run method.
type Context struct {
	Config config.Config
	Store  storage.Provider
	Clock  clock.Clock

	app *app.App
}

// App wires the services on first use. The store must already be initialized or loaded.
func (c *Context) App() (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := app.New(c.Config, c.Store, c.Clock)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

var (
	HeaderStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	MutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	WarningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
	DangerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)
