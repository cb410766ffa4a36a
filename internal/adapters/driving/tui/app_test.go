package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brahma/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/brahma/internal/core/domain"
)

func TestNewApp_Success(t *testing.T) {
	engine := &MockEngine{}

	app, err := NewApp(NewPorts(engine, nil))

	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, engine, app.Engine())
	assert.False(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	app, err := NewApp(&Ports{})

	assert.ErrorIs(t, err, ErrMissingEngine)
	assert.Nil(t, app)
}

func TestApp_WithContext(t *testing.T) {
	app, _ := NewApp(NewPorts(&MockEngine{}, nil))

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Equal(t, app, app.WithContext(ctx))
}

func TestApp_Init(t *testing.T) {
	app, _ := NewApp(NewPorts(&MockEngine{}, nil))

	assert.NotNil(t, app.Init())
}

func TestApp_Update_WindowSize(t *testing.T) {
	app, _ := NewApp(NewPorts(&MockEngine{}, nil))

	model, cmd := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	assert.Equal(t, app, model)
	assert.Nil(t, cmd)
	assert.True(t, app.Ready())
}

func TestApp_View(t *testing.T) {
	app, _ := NewApp(NewPorts(&MockEngine{}, nil))
	assert.Equal(t, "Initialising...", app.View())

	app.SetDimensions(100, 30)

	view := app.View()
	assert.Contains(t, view, "Brahma")
	assert.Contains(t, view, "You:")
}

func TestApp_Quit(t *testing.T) {
	app, _ := NewApp(NewPorts(&MockEngine{}, nil))

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_AnswerFlowsToChat(t *testing.T) {
	app, _ := NewApp(NewPorts(&MockEngine{}, nil))
	app.SetDimensions(100, 30)

	app.Update(messages.AnswerReceived{
		Question: "colour?",
		Result: &domain.QueryResult{
			Answer:  "Blue.",
			Sources: []domain.Source{{File: "facts.txt"}},
		},
	})

	assert.Contains(t, app.View(), "Blue.")
	assert.NoError(t, app.Err())
}

func TestApp_ErrorUsesGuidance(t *testing.T) {
	ports := NewPorts(&MockEngine{}, nil)
	ports.Guidance = func(error) string { return "start your local model backend" }
	app, _ := NewApp(ports)
	app.SetDimensions(100, 30)

	app.Update(messages.ErrorOccurred{Err: domain.ErrProviderUnavailable})

	assert.ErrorIs(t, app.Err(), domain.ErrProviderUnavailable)
	assert.Contains(t, app.View(), "start your local model backend")
}
