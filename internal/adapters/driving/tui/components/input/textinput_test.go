package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brahma/internal/adapters/driving/tui/styles"
)

func TestNewQuestionInput(t *testing.T) {
	input := NewQuestionInput(styles.DefaultStyles())

	require.NotNil(t, input)
	assert.Equal(t, "", input.Value())
	assert.True(t, input.Focused())
}

func TestNewQuestionInput_NilStyles(t *testing.T) {
	input := NewQuestionInput(nil)

	require.NotNil(t, input)
	assert.NotNil(t, input.styles)
}

func TestQuestionInput_Init(t *testing.T) {
	assert.NotNil(t, NewQuestionInput(nil).Init())
}

func TestQuestionInput_Typing(t *testing.T) {
	input := NewQuestionInput(nil)

	for _, r := range "why?" {
		input, _ = input.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}

	assert.Equal(t, "why?", input.Value())
}

func TestQuestionInput_View(t *testing.T) {
	view := NewQuestionInput(nil).View()

	assert.Contains(t, view, "You:")
}

func TestQuestionInput_SetValueAndReset(t *testing.T) {
	input := NewQuestionInput(nil)

	input.SetValue("what is brahma?")
	assert.Equal(t, "what is brahma?", input.Value())

	input.Reset()
	assert.Equal(t, "", input.Value())
}

func TestQuestionInput_FocusBlur(t *testing.T) {
	input := NewQuestionInput(nil)

	input.Blur()
	assert.False(t, input.Focused())

	input.Focus()
	assert.True(t, input.Focused())
}

func TestQuestionInput_SetWidth(t *testing.T) {
	tests := []struct {
		name      string
		width     int
		wantInner int
	}{
		{"wide terminal", 100, 88},
		{"narrow terminal clamps", 10, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := NewQuestionInput(nil)
			input.SetWidth(tt.width)

			assert.Equal(t, tt.width, input.Width())
			assert.Equal(t, tt.wantInner, input.textinput.Width)
		})
	}
}
