// Package status provides the status bar for the chat TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/brahma/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/brahma/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/brahma/internal/core/domain"
)

// State represents what the assistant is doing.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateIndexing State = "indexing"
	StateSwitch   State = "switching"
	StateError    State = "error"
)

// Busy returns true while an engine call is in flight.
func (s State) Busy() bool {
	return s == StateThinking || s == StateIndexing || s == StateSwitch
}

// Bar displays the provider, index state and keybinding hints.
type Bar struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	spinner  spinner.Model
	state    State
	message  string
	provider domain.Provider
	manifest *domain.IndexManifest
	width    int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = s.Spinner

	return &Bar{
		styles:  s,
		keymap:  km,
		spinner: sp,
		state:   StateReady,
		width:   80,
	}
}

// Init starts the spinner.
func (b *Bar) Init() tea.Cmd {
	return b.spinner.Tick
}

// Update advances the spinner while busy. Ticks stop once idle.
func (b *Bar) Update(msg tea.Msg) (*Bar, tea.Cmd) {
	tick, ok := msg.(spinner.TickMsg)
	if !ok || !b.state.Busy() {
		return b, nil
	}
	var cmd tea.Cmd
	b.spinner, cmd = b.spinner.Update(tick)
	return b, cmd
}

// View renders the status bar.
func (b *Bar) View() string {
	left := b.renderLeft()
	right := b.renderRight()

	padding := b.width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}

	return b.styles.StatusBar.Width(b.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders the state, provider and index summary.
func (b *Bar) renderLeft() string {
	switch b.state {
	case StateThinking:
		return b.spinner.View() + b.styles.Muted.Render(" Thinking...")
	case StateIndexing:
		return b.spinner.View() + b.styles.Muted.Render(" Indexing documents...")
	case StateSwitch:
		return b.spinner.View() + b.styles.Muted.Render(" Switching provider...")
	case StateError:
		if b.message != "" {
			return b.styles.Error.Render("Error: " + b.message)
		}
		return b.styles.Error.Render("Error")
	case StateReady:
	}

	parts := make([]string, 0, 3)
	if b.provider != "" {
		parts = append(parts, string(b.provider))
	}
	if b.manifest != nil {
		parts = append(parts, fmt.Sprintf("%d chunks from %d documents", b.manifest.Chunks, b.manifest.Documents))
	} else {
		parts = append(parts, "no index")
	}
	if b.message != "" {
		parts = append(parts, b.message)
	}
	return b.styles.Muted.Render(strings.Join(parts, " · "))
}

// renderRight renders keybinding hints.
func (b *Bar) renderRight() string {
	bindings := b.keymap.ShortHelp()

	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

// Bindings returns the bindings the bar advertises.
func (b *Bar) Bindings() []key.Binding {
	return b.keymap.ShortHelp()
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets a transient message.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetIndexStatus records the provider and manifest to display.
func (b *Bar) SetIndexStatus(status *domain.IndexStatus) {
	if status == nil {
		return
	}
	b.provider = status.Config.Provider
	b.manifest = status.Manifest
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Width returns the current width.
func (b *Bar) Width() int {
	return b.width
}

// Clear resets the bar to the ready state.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
}
