package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/brahma/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/brahma/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/brahma/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/brahma/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/brahma/internal/core/ports/driving"
)

// App is the TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// chatView is the conversation view.
	chatView *chat.View

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	chatView := chat.NewView(s, keymap.DefaultKeyMap(), ports.Engine, ports.Settings).
		WithGuidance(ports.Guidance)

	return &App{
		ports:    ports,
		ctx:      context.Background(),
		styles:   s,
		chatView: chatView,
	}, nil
}

// WithContext sets the context for the app and its engine calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("brahma - document assistant"),
		a.chatView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.chatView.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}
	return a.chatView.View()
}

// Run starts the TUI and blocks until the user quits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}

// Engine returns the engine in use, which changes after a provider switch.
// The caller owns it and must close it after Run returns.
func (a *App) Engine() driving.Engine {
	return a.chatView.Engine()
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.chatView.Err()
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.chatView.SetDimensions(width, height)
}
