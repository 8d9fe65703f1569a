package ask

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lovbase/paragraf/internal/adapters/driving/tui/messages"
	"github.com/lovbase/paragraf/internal/adapters/driving/tui/styles"
	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driving"
)

// MockAskService implements driving.AskService for testing.
type MockAskService struct {
	AskFunc func(ctx context.Context, question string, opts driving.AskOptions) (*domain.Answer, error)
}

func (m *MockAskService) Ask(
	ctx context.Context, question string, opts driving.AskOptions,
) (*domain.Answer, error) {
	if m.AskFunc != nil {
		return m.AskFunc(ctx, question, opts)
	}
	return nil, nil
}

func testAnswer() *domain.Answer {
	return &domain.Answer{
		Question: "Hvad er befordringsfradrag?",
		Text:     "Befordringsfradrag er et fradrag for transport mellem hjem og arbejde.",
		Model:    "gpt-4o-mini",
		Sources: []domain.Citation{
			{
				ChunkID:       "chunk-1",
				DocumentID:    "doc-1",
				DocumentTitle: "Ligningsloven",
				Reference:     "LL § 9 C",
				Score:         0.91,
			},
		},
	}
}

func TestNewView(t *testing.T) {
	s := styles.DefaultStyles()
	mock := &MockAskService{}

	view := NewView(s, mock)

	require.NotNil(t, view)
	assert.False(t, view.Asking())
	assert.Nil(t, view.Answer())
	assert.Equal(t, "", view.Question())
}

func TestNewView_NilStyles(t *testing.T) {
	view := NewView(nil, nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
}

func TestView_WithContext(t *testing.T) {
	view := NewView(nil, nil)
	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	result := view.WithContext(ctx)

	assert.Equal(t, view, result)
	assert.Equal(t, ctx, view.ctx)
}

func TestView_Init(t *testing.T) {
	view := NewView(nil, nil)

	cmd := view.Init()

	// Blink command from input
	assert.NotNil(t, cmd)
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(nil, nil)

	msg := tea.WindowSizeMsg{Width: 100, Height: 40}
	updated, cmd := view.Update(msg)

	assert.Equal(t, view, updated)
	assert.Nil(t, cmd)
	assert.Equal(t, 100, view.width)
	assert.Equal(t, 40, view.height)
}

func TestView_Update_KeyEnter_AsksQuestion(t *testing.T) {
	askCalled := false
	mock := &MockAskService{
		AskFunc: func(ctx context.Context, question string, opts driving.AskOptions) (*domain.Answer, error) {
			askCalled = true
			assert.Equal(t, "Hvad er befordringsfradrag?", question)
			return testAnswer(), nil
		},
	}
	view := NewView(nil, mock)
	view.input.SetValue("Hvad er befordringsfradrag?")

	msg := tea.KeyMsg{Type: tea.KeyEnter}
	_, cmd := view.Update(msg)

	assert.True(t, view.Asking())
	require.NotNil(t, cmd)
	result := cmd()
	assert.IsType(t, messages.AskCompleted{}, result)
	assert.True(t, askCalled)
}

func TestView_Update_KeyEnter_EmptyQuestion(t *testing.T) {
	view := NewView(nil, nil)

	msg := tea.KeyMsg{Type: tea.KeyEnter}
	_, cmd := view.Update(msg)

	assert.Nil(t, cmd)
	assert.False(t, view.Asking())
}

func TestView_Update_KeyEnter_WhileAsking(t *testing.T) {
	view := NewView(nil, nil)
	view.input.SetValue("question")
	view.asking = true

	msg := tea.KeyMsg{Type: tea.KeyEnter}
	_, cmd := view.Update(msg)

	assert.Nil(t, cmd)
}

func TestView_Update_KeyEsc_BackToMenu(t *testing.T) {
	view := NewView(nil, nil)

	msg := tea.KeyMsg{Type: tea.KeyEsc}
	_, cmd := view.Update(msg)

	require.NotNil(t, cmd)
	result := cmd()
	changed, ok := result.(messages.ViewChanged)
	require.True(t, ok)
	assert.Equal(t, messages.ViewMenu, changed.View)
}

func TestView_Update_AskCompleted_WithAnswer(t *testing.T) {
	view := NewView(nil, nil)
	view.asking = true

	msg := messages.AskCompleted{Answer: testAnswer(), Err: nil}
	view.Update(msg)

	assert.False(t, view.Asking())
	require.NotNil(t, view.Answer())
	assert.Contains(t, view.Answer().Text, "Befordringsfradrag")
	assert.NoError(t, view.Err())
}

func TestView_Update_AskCompleted_WithError(t *testing.T) {
	view := NewView(nil, nil)
	view.asking = true

	msg := messages.AskCompleted{Err: errors.New("answering failed")}
	view.Update(msg)

	assert.False(t, view.Asking())
	assert.Nil(t, view.Answer())
	assert.Error(t, view.Err())
}

func TestView_PerformAsk_NoService(t *testing.T) {
	view := NewView(nil, nil)
	view.input.SetValue("question")

	msg := tea.KeyMsg{Type: tea.KeyEnter}
	_, cmd := view.Update(msg)

	require.NotNil(t, cmd)
	result := cmd()
	completed, ok := result.(messages.AskCompleted)
	require.True(t, ok)
	assert.Error(t, completed.Err)
}

func TestView_View_WithAnswer(t *testing.T) {
	view := NewView(nil, nil)
	view.SetDimensions(80, 24)
	view.Update(messages.AskCompleted{Answer: testAnswer()})

	output := view.View()

	assert.Contains(t, output, "Befordringsfradrag")
	assert.Contains(t, output, "Kilder:")
	assert.Contains(t, output, "LL § 9 C")
	assert.Contains(t, output, "Ligningsloven")
}

func TestView_View_Asking(t *testing.T) {
	view := NewView(nil, nil)
	view.SetDimensions(80, 24)
	view.asking = true

	output := view.View()

	assert.Contains(t, output, "Thinking...")
}

func TestView_View_LLMUnavailable_ShowsHint(t *testing.T) {
	view := NewView(nil, nil)
	view.SetDimensions(80, 24)
	view.Update(messages.AskCompleted{
		Err: fmt.Errorf("asking question: %w", domain.ErrLLMUnavailable),
	})

	output := view.View()

	assert.Contains(t, output, "Configure an LLM provider in Settings")
}

func TestView_ContextPropagation(t *testing.T) {
	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("test"), "value")

	askCalled := false
	mock := &MockAskService{
		AskFunc: func(receivedCtx context.Context, question string, opts driving.AskOptions) (*domain.Answer, error) {
			askCalled = true
			val := receivedCtx.Value(contextKey("test"))
			assert.Equal(t, "value", val)
			return testAnswer(), nil
		},
	}

	view := NewView(nil, mock).WithContext(ctx)
	view.input.SetValue("question")

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	cmd()

	assert.True(t, askCalled)
}

func TestView_Reset(t *testing.T) {
	view := NewView(nil, nil)
	view.SetDimensions(80, 24)
	view.input.SetValue("old question")
	view.answer = testAnswer()
	view.asking = true
	view.err = errors.New("old error")

	view.Reset()

	assert.Equal(t, "", view.Question())
	assert.Nil(t, view.Answer())
	assert.False(t, view.Asking())
	assert.Nil(t, view.Err())
}

func TestView_SetDimensions(t *testing.T) {
	view := NewView(nil, nil)

	view.SetDimensions(120, 50)

	assert.Equal(t, 120, view.width)
	assert.Equal(t, 50, view.height)
	assert.True(t, view.ready)
}
