package messages

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

func TestAnswerReceived(t *testing.T) {
	t.Run("with result", func(t *testing.T) {
		result := &domain.QueryResult{Answer: "Blue.", Elapsed: time.Second}
		msg := AnswerReceived{Question: "colour?", Result: result}

		assert.Equal(t, "colour?", msg.Question)
		assert.Equal(t, "Blue.", msg.Result.Answer)
		assert.NoError(t, msg.Err)
	})

	t.Run("with error", func(t *testing.T) {
		msg := AnswerReceived{Question: "colour?", Err: domain.ErrIndexNotReady}

		assert.Nil(t, msg.Result)
		assert.ErrorIs(t, msg.Err, domain.ErrIndexNotReady)
	})
}

func TestReindexCompleted(t *testing.T) {
	msg := ReindexCompleted{Report: &domain.IndexReport{Documents: 2, Chunks: 5}}

	assert.Equal(t, 5, msg.Report.Chunks)
	assert.NoError(t, msg.Err)
}

func TestProviderChanged_Error(t *testing.T) {
	err := errors.New("boom")
	msg := ProviderChanged{Err: err}

	assert.Nil(t, msg.Engine)
	assert.Equal(t, err, msg.Err)
}

func TestMessagesAreTeaMsgs(t *testing.T) {
	msgs := []tea.Msg{
		AnswerReceived{},
		ReindexCompleted{},
		StatusLoaded{},
		ProviderChanged{},
		ErrorOccurred{},
		Quit{},
	}

	assert.Len(t, msgs, 6)
}
