// Package transcript renders the scrolling chat history for the TUI.
package transcript

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/brahma/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/brahma/internal/core/domain"
)

// Role identifies who produced an entry.
type Role int

const (
	// RoleUser is a question typed by the user.
	RoleUser Role = iota
	// RoleAssistant is an answer from the engine.
	RoleAssistant
	// RoleNotice is an informational line such as a reindex summary.
	RoleNotice
	// RoleError is a failed operation.
	RoleError
)

// Entry is one turn in the transcript.
type Entry struct {
	Role     Role
	Text     string
	Hint     string
	Sources  []domain.Source
	Elapsed  time.Duration
	Degraded bool
}

// Transcript holds the chat history inside a scrollable viewport.
type Transcript struct {
	entries  []Entry
	styles   *styles.Styles
	viewport viewport.Model
}

// New creates an empty transcript.
func New(s *styles.Styles) *Transcript {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Transcript{
		styles:   s,
		viewport: viewport.New(80, 10),
	}
}

// Init initialises the transcript.
func (t *Transcript) Init() tea.Cmd {
	return nil
}

// Update forwards mouse wheel and viewport messages.
func (t *Transcript) Update(msg tea.Msg) (*Transcript, tea.Cmd) {
	if _, ok := msg.(tea.KeyMsg); ok {
		// Keys belong to the question box.
		return t, nil
	}
	var cmd tea.Cmd
	t.viewport, cmd = t.viewport.Update(msg)
	return t, cmd
}

// View renders the visible part of the transcript.
func (t *Transcript) View() string {
	return t.viewport.View()
}

// AddQuestion appends a user turn.
func (t *Transcript) AddQuestion(question string) {
	t.append(Entry{Role: RoleUser, Text: question})
}

// AddAnswer appends an assistant turn with its citations.
func (t *Transcript) AddAnswer(result *domain.QueryResult) {
	if result == nil {
		return
	}
	t.append(Entry{
		Role:     RoleAssistant,
		Text:     result.Answer,
		Sources:  result.Sources,
		Elapsed:  result.Elapsed,
		Degraded: result.Degraded,
	})
}

// AddNotice appends an informational line.
func (t *Transcript) AddNotice(text string) {
	t.append(Entry{Role: RoleNotice, Text: text})
}

// AddError appends a failure with an optional remedy.
func (t *Transcript) AddError(err error, hint string) {
	if err == nil {
		return
	}
	t.append(Entry{Role: RoleError, Text: err.Error(), Hint: hint})
}

// Entries returns the recorded turns.
func (t *Transcript) Entries() []Entry {
	return t.entries
}

// Len returns the number of turns.
func (t *Transcript) Len() int {
	return len(t.entries)
}

// Clear removes every turn.
func (t *Transcript) Clear() {
	t.entries = nil
	t.refresh()
}

// ScrollUp moves towards older turns by half a page.
func (t *Transcript) ScrollUp() {
	t.viewport.SetYOffset(t.viewport.YOffset - t.halfPage())
}

// ScrollDown moves towards newer turns by half a page.
func (t *Transcript) ScrollDown() {
	t.viewport.SetYOffset(t.viewport.YOffset + t.halfPage())
}

func (t *Transcript) halfPage() int {
	if t.viewport.Height < 2 {
		return 1
	}
	return t.viewport.Height / 2
}

// AtBottom reports whether the newest turn is visible.
func (t *Transcript) AtBottom() bool {
	return t.viewport.AtBottom()
}

// SetDimensions sets the viewport size and re-wraps the content.
func (t *Transcript) SetDimensions(width, height int) {
	if height < 1 {
		height = 1
	}
	t.viewport.Width = width
	t.viewport.Height = height
	t.refresh()
}

func (t *Transcript) append(e Entry) {
	t.entries = append(t.entries, e)
	t.refresh()
	t.viewport.GotoBottom()
}

func (t *Transcript) refresh() {
	t.viewport.SetContent(t.Render())
}

// Render returns the full transcript, wrapped to the viewport width.
func (t *Transcript) Render() string {
	if len(t.entries) == 0 {
		return t.styles.Muted.Render("Ask a question about the documents in your workspace.")
	}

	width := t.viewport.Width
	if width < 20 {
		width = 20
	}
	body := t.styles.Normal.Width(width - 2)

	blocks := make([]string, 0, len(t.entries))
	for _, e := range t.entries {
		var b strings.Builder
		switch e.Role {
		case RoleUser:
			b.WriteString(t.styles.Question.Render("You"))
			b.WriteString("\n")
			b.WriteString(body.Render(e.Text))
		case RoleAssistant:
			b.WriteString(t.styles.Assistant.Render("Brahma"))
			if e.Degraded {
				b.WriteString(" " + t.styles.Warning.Render("(not found in your documents)"))
			}
			b.WriteString("\n")
			b.WriteString(body.Render(e.Text))
			for _, s := range e.Sources {
				b.WriteString("\n")
				b.WriteString(t.styles.Source.Render("- " + s.String()))
			}
			if e.Elapsed > 0 {
				b.WriteString("\n")
				b.WriteString(t.styles.Muted.Render(fmt.Sprintf("answered in %.2fs", e.Elapsed.Seconds())))
			}
		case RoleNotice:
			b.WriteString(t.styles.Success.Render(e.Text))
		case RoleError:
			b.WriteString(t.styles.Error.Render("Error: " + e.Text))
			if e.Hint != "" {
				b.WriteString("\n")
				b.WriteString(t.styles.Muted.Render(e.Hint))
			}
		}
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}
