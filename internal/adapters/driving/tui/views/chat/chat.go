// Package chat provides the conversational view for the TUI.
package chat

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/brahma/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/brahma/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/brahma/internal/adapters/driving/tui/components/transcript"
	"github.com/custodia-labs/brahma/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/brahma/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/brahma/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driving"
)

const helpText = `Commands:
  /reindex                    rebuild the index from the workspace
  /provider local             answer with the local model
  /provider cloud [api-key]   answer with the cloud model
  /status                     show the index state
  /clear                      clear the conversation
  /quit                       exit`

// GuidanceFunc maps an error to a short remedy for the user.
type GuidanceFunc func(error) string

// View is the chat view: a transcript, a question box and a status bar.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	transcript *transcript.Transcript
	statusbar  *status.Bar

	engine   driving.Engine
	settings driving.SettingsService
	guidance GuidanceFunc
	ctx      context.Context

	width    int
	height   int
	ready    bool
	showHelp bool
	err      error
}

// NewView creates a new chat view bound to an engine.
// settings may be nil, in which case provider switching is disabled.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	engine driving.Engine,
	settings driving.SettingsService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		transcript: transcript.New(s),
		statusbar:  status.NewBar(s, km),
		engine:     engine,
		settings:   settings,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context used for engine calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// WithGuidance sets the function used to suggest remedies for errors.
func (v *View) WithGuidance(fn GuidanceFunc) *View {
	v.guidance = fn
	return v
}

// Init focuses the question box and loads the index status.
func (v *View) Init() tea.Cmd {
	return tea.Batch(v.input.Init(), v.statusbar.Init(), v.loadStatus())
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AnswerReceived:
		v.statusbar.Clear()
		if msg.Err != nil {
			v.fail(msg.Err)
			return v, nil
		}
		v.err = nil
		v.transcript.AddAnswer(msg.Result)
		return v, nil

	case messages.ReindexCompleted:
		v.statusbar.Clear()
		if msg.Err != nil {
			v.fail(msg.Err)
			return v, nil
		}
		v.err = nil
		v.transcript.AddNotice(summarise(msg.Report))
		return v, v.loadStatus()

	case messages.ProviderChanged:
		v.statusbar.Clear()
		if msg.Err != nil {
			v.fail(msg.Err)
			return v, nil
		}
		v.err = nil
		v.engine = msg.Engine
		cfg := msg.Engine.Config()
		v.transcript.AddNotice("Now answering with the " + cfg.Provider.Description())
		if cfg.Provider.RequiresCredential() && cfg.Credential == "" {
			v.transcript.AddNotice("No API key is set; questions will fail until you run /provider cloud <api-key>")
		}
		return v, v.loadStatus()

	case messages.StatusLoaded:
		if msg.Err != nil {
			v.fail(msg.Err)
			return v, nil
		}
		v.statusbar.SetIndexStatus(msg.Status)
		return v, nil

	case messages.ErrorOccurred:
		v.fail(msg.Err)
		return v, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	v.statusbar, cmd = v.statusbar.Update(msg)
	cmds = append(cmds, cmd)
	v.transcript, cmd = v.transcript.Update(msg)
	cmds = append(cmds, cmd)
	v.input, cmd = v.input.Update(msg)
	cmds = append(cmds, cmd)
	return v, tea.Batch(cmds...)
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()

	switch {
	case keymap.Matches(k, v.keymap.Quit):
		return v, tea.Quit
	case keymap.Matches(k, v.keymap.Help):
		v.showHelp = !v.showHelp
		return v, nil
	case keymap.Matches(k, v.keymap.ScrollUp):
		v.transcript.ScrollUp()
		return v, nil
	case keymap.Matches(k, v.keymap.ScrollDown):
		v.transcript.ScrollDown()
		return v, nil
	case keymap.Matches(k, v.keymap.Clear):
		v.transcript.Clear()
		return v, nil
	case keymap.Matches(k, v.keymap.Reindex):
		return v, v.startReindex()
	case keymap.Matches(k, v.keymap.Submit):
		text := strings.TrimSpace(v.input.Value())
		if text == "" {
			return v, nil
		}
		if v.statusbar.State().Busy() {
			v.statusbar.SetMessage(ErrBusy.Error())
			return v, nil
		}
		v.input.Reset()
		if strings.HasPrefix(text, "/") {
			return v, v.runCommand(text)
		}
		return v, v.ask(text)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// runCommand executes a slash command.
func (v *View) runCommand(line string) tea.Cmd {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/reindex":
		return v.startReindex()
	case "/provider":
		if len(fields) < 2 {
			v.fail(fmt.Errorf("%w: usage: /provider <local|cloud> [api-key]", domain.ErrInvalidInput))
			return nil
		}
		credential := ""
		if len(fields) > 2 {
			credential = fields[2]
		}
		return v.switchProvider(domain.Provider(strings.ToLower(fields[1])), credential)
	case "/status":
		return v.loadStatus()
	case "/clear":
		v.transcript.Clear()
		return nil
	case "/help":
		v.showHelp = !v.showHelp
		return nil
	case "/quit", "/exit":
		return tea.Quit
	default:
		v.fail(fmt.Errorf("%w: unknown command %s", domain.ErrInvalidInput, fields[0]))
		return nil
	}
}

// ask sends a question to the engine.
func (v *View) ask(question string) tea.Cmd {
	if v.engine == nil {
		return errCmd(ErrNoEngine)
	}
	v.transcript.AddQuestion(question)
	v.statusbar.SetState(status.StateThinking)

	engine, ctx := v.engine, v.ctx
	return tea.Batch(v.statusbar.Init(), func() tea.Msg {
		result, err := engine.AnswerQuestion(ctx, question)
		return messages.AnswerReceived{Question: question, Result: result, Err: err}
	})
}

// startReindex rebuilds the index in the background.
func (v *View) startReindex() tea.Cmd {
	if v.engine == nil {
		return errCmd(ErrNoEngine)
	}
	if v.statusbar.State().Busy() {
		v.statusbar.SetMessage(ErrBusy.Error())
		return nil
	}
	v.statusbar.SetState(status.StateIndexing)

	engine, ctx := v.engine, v.ctx
	return tea.Batch(v.statusbar.Init(), func() tea.Msg {
		report, err := engine.Reindex(ctx)
		return messages.ReindexCompleted{Report: report, Err: err}
	})
}

// switchProvider rebuilds the engine for another provider.
func (v *View) switchProvider(provider domain.Provider, credential string) tea.Cmd {
	if v.settings == nil {
		v.fail(ErrNoSettings)
		return nil
	}
	v.statusbar.SetState(status.StateSwitch)

	settings, engine, ctx := v.settings, v.engine, v.ctx
	return tea.Batch(v.statusbar.Init(), func() tea.Msg {
		next, err := settings.Reconfigure(ctx, engine, provider, credential)
		return messages.ProviderChanged{Engine: next, Err: err}
	})
}

// loadStatus fetches the index status for the status bar.
func (v *View) loadStatus() tea.Cmd {
	if v.engine == nil {
		return nil
	}
	engine, ctx := v.engine, v.ctx
	return func() tea.Msg {
		st, err := engine.Status(ctx)
		return messages.StatusLoaded{Status: st, Err: err}
	}
}

// fail records an error in the transcript and the status bar.
func (v *View) fail(err error) {
	v.err = err
	hint := ""
	if v.guidance != nil {
		hint = v.guidance(err)
	}
	v.transcript.AddError(err, hint)
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(err.Error())
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return messages.ErrorOccurred{Err: err}
	}
}

// summarise formats a reindex report for the transcript.
func summarise(r *domain.IndexReport) string {
	if r == nil {
		return "Reindex finished"
	}
	if r.Documents == 0 {
		return "No documents found in the workspace; the index was left unchanged"
	}
	line := fmt.Sprintf("Indexed %d chunks from %d documents in %.1fs (%d embedded, %d reused)",
		r.Chunks, r.Documents, r.Elapsed.Seconds(), r.Embedded, r.Reused)
	if r.Skipped > 0 {
		line += fmt.Sprintf(", %d files skipped", r.Skipped)
	}
	return line
}

// View renders the chat view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)
	sections = append(sections, v.styles.Title.Render("Brahma"), "")

	if v.showHelp {
		sections = append(sections, v.styles.Muted.Render(helpText), "")
	}

	sections = append(sections,
		v.transcript.View(),
		"",
		v.input.View(),
		v.statusbar.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	// Header, input box and status bar take eight rows.
	v.input.SetWidth(width)
	v.transcript.SetDimensions(width, height-8)
	v.statusbar.SetWidth(width)
}

// Width returns the current width.
func (v *View) Width() int {
	return v.width
}

// Height returns the current height.
func (v *View) Height() int {
	return v.height
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Engine returns the engine currently in use.
func (v *View) Engine() driving.Engine {
	return v.engine
}

// Transcript returns the chat history.
func (v *View) Transcript() *transcript.Transcript {
	return v.transcript
}

// State returns the status bar state.
func (v *View) State() status.State {
	return v.statusbar.State()
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

// ShowingHelp returns whether the command reference is visible.
func (v *View) ShowingHelp() bool {
	return v.showHelp
}

// Input returns the current question box text.
func (v *View) Input() string {
	return v.input.Value()
}

// SetInput replaces the question box text.
func (v *View) SetInput(text string) {
	v.input.SetValue(text)
}
