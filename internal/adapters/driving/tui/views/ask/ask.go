// Package ask provides the question answering view for the TUI.
package ask

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lovbase/paragraf/internal/adapters/driving/tui/components/input"
	"github.com/lovbase/paragraf/internal/adapters/driving/tui/messages"
	"github.com/lovbase/paragraf/internal/adapters/driving/tui/styles"
	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driving"
)

// View is the question answering view. The user types a question, the
// service answers it grounded in the indexed corpus, and the answer is
// shown with its numbered sources.
type View struct {
	styles *styles.Styles
	input  *input.SearchInput

	askService driving.AskService
	ctx        context.Context

	answer  *domain.Answer
	asking  bool
	err     error
	width   int
	height  int
	ready   bool
}

// NewView creates a new ask view.
func NewView(s *styles.Styles, askService driving.AskService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	in := input.NewSearchInput(s)
	in.SetLabel("Question: ")
	in.SetPlaceholder("Stil et spørgsmål om dansk skatteret...")

	return &View{
		styles:     s,
		input:      in,
		askService: askService,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the ask view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.AskCompleted:
		v.asking = false
		if msg.Err != nil {
			v.err = msg.Err
			v.answer = nil
		} else {
			v.err = nil
			v.answer = msg.Answer
		}
		return v, nil

	case messages.ErrorOccurred:
		v.asking = false
		v.err = msg.Err
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// handleKeyMsg processes keyboard input.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.Type == tea.KeyEsc {
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if msg.Type == tea.KeyEnter {
		question := strings.TrimSpace(v.input.Value())
		if question == "" || v.asking {
			return v, nil
		}
		v.asking = true
		v.err = nil
		v.answer = nil
		return v, v.performAsk(question)
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// performAsk asks the question and returns the answer as a message.
func (v *View) performAsk(question string) tea.Cmd {
	return func() tea.Msg {
		if v.askService == nil {
			return messages.AskCompleted{Err: fmt.Errorf("ask service not available")}
		}

		answer, err := v.askService.Ask(v.ctx, question, driving.AskOptions{})
		return messages.AskCompleted{Answer: answer, Err: err}
	}
}

// View renders the ask view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)

	header := v.styles.Title.Render("Ask")
	sections = append(sections, header, "")

	sections = append(sections, v.input.View(), "")

	if v.asking {
		sections = append(sections, v.styles.Muted.Render("Thinking..."), "")
	}

	if v.err != nil {
		errText := "Error: " + v.err.Error()
		if strings.Contains(v.err.Error(), domain.ErrLLMUnavailable.Error()) {
			errText += "\nConfigure an LLM provider in Settings to enable answers."
		}
		sections = append(sections, v.styles.Error.Render(errText), "")
	}

	if v.answer != nil {
		answerStyle := lipgloss.NewStyle().Width(v.width - 4)
		sections = append(sections, answerStyle.Render(v.answer.Text))

		if len(v.answer.Sources) > 0 {
			sections = append(sections, "", v.styles.Subtitle.Render("Kilder:"))
			for i, src := range v.answer.Sources {
				line := src.Reference
				if line == "" {
					line = src.DocumentTitle
				} else if src.DocumentTitle != "" {
					line = fmt.Sprintf("%s (%s)", src.Reference, src.DocumentTitle)
				}
				sections = append(sections, v.styles.Normal.Render(fmt.Sprintf("  [%d] %s", i+1, line)))
			}
		}
	}

	sections = append(sections, "", v.styles.Help.Render("[enter] ask  [esc] back to menu"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.input.SetWidth(width)
}

// Reset resets the view to an empty question.
func (v *View) Reset() {
	v.input.Focus()
	v.input.SetValue("")
	v.answer = nil
	v.asking = false
	v.err = nil
}

// Question returns the current question text.
func (v *View) Question() string {
	return v.input.Value()
}

// Answer returns the last answer, if any.
func (v *View) Answer() *domain.Answer {
	return v.answer
}

// Asking reports whether a question is in flight.
func (v *View) Asking() bool {
	return v.asking
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
