package transcript

import (
	"errors"
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

func TestNew_Empty(t *testing.T) {
	tr := New(nil)

	assert.Zero(t, tr.Len())
	assert.Contains(t, tr.Render(), "Ask a question")
	assert.Nil(t, tr.Init())
}

func TestTranscript_QuestionAndAnswer(t *testing.T) {
	tr := New(nil)
	tr.SetDimensions(100, 20)

	tr.AddQuestion("What is Brahma's favorite color?")
	tr.AddAnswer(&domain.QueryResult{
		Answer:  "Brahma's favorite color is blue.",
		Sources: []domain.Source{{File: "colours.pdf", Page: domain.IntPtr(3)}, {File: "notes.md"}},
		Elapsed: 1500 * time.Millisecond,
	})

	require.Equal(t, 2, tr.Len())
	assert.Equal(t, RoleUser, tr.Entries()[0].Role)
	assert.Equal(t, RoleAssistant, tr.Entries()[1].Role)

	out := tr.Render()
	assert.Contains(t, out, "What is Brahma's favorite color?")
	assert.Contains(t, out, "Brahma's favorite color is blue.")
	assert.Contains(t, out, "colours.pdf (page 3)")
	assert.Contains(t, out, "notes.md")
	assert.Contains(t, out, "answered in 1.50s")
	assert.NotContains(t, out, "not found in your documents")
}

func TestTranscript_DegradedAnswer(t *testing.T) {
	tr := New(nil)

	tr.AddAnswer(&domain.QueryResult{Answer: "I don't know.", Degraded: true})

	assert.Contains(t, tr.Render(), "not found in your documents")
}

func TestTranscript_NilAnswerIgnored(t *testing.T) {
	tr := New(nil)

	tr.AddAnswer(nil)
	tr.AddError(nil, "hint")

	assert.Zero(t, tr.Len())
}

func TestTranscript_ErrorWithHint(t *testing.T) {
	tr := New(nil)

	tr.AddError(errors.New("index not ready"), "run /reindex first")

	out := tr.Render()
	assert.Contains(t, out, "Error: index not ready")
	assert.Contains(t, out, "run /reindex first")
}

func TestTranscript_Notice(t *testing.T) {
	tr := New(nil)

	tr.AddNotice("Indexed 3 documents")

	assert.Equal(t, RoleNotice, tr.Entries()[0].Role)
	assert.Contains(t, tr.Render(), "Indexed 3 documents")
}

func TestTranscript_Clear(t *testing.T) {
	tr := New(nil)
	tr.AddQuestion("a")

	tr.Clear()

	assert.Zero(t, tr.Len())
	assert.Contains(t, tr.View(), "Ask a question")
}

func TestTranscript_FollowsNewestTurn(t *testing.T) {
	tr := New(nil)
	tr.SetDimensions(60, 4)

	for i := 0; i < 20; i++ {
		tr.AddNotice(fmt.Sprintf("notice %d", i))
	}
	assert.True(t, tr.AtBottom())

	tr.ScrollUp()
	assert.False(t, tr.AtBottom())

	for i := 0; i < 40; i++ {
		tr.ScrollDown()
	}
	assert.True(t, tr.AtBottom())
}

func TestTranscript_IgnoresKeys(t *testing.T) {
	tr := New(nil)

	updated, cmd := tr.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})

	assert.Same(t, tr, updated)
	assert.Nil(t, cmd)
}
