// Package addsource provides the add source wizard view for the TUI.
package addsource

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/lovbase/paragraf/internal/adapters/driving/tui/messages"
	"github.com/lovbase/paragraf/internal/adapters/driving/tui/styles"
	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driving"
	"github.com/lovbase/paragraf/internal/core/services"
)

// WizardStep tracks the current step in the wizard.
type WizardStep int

const (
	StepSelectType WizardStep = iota
	StepEnterConfig
	StepComplete
)

// Key constants.
const (
	keyEnter = "enter"
	keyDown  = "down"
)

// View is the add source wizard view.
type View struct {
	styles        *styles.Styles
	sourceService driving.SourceService

	// Wizard state
	step        WizardStep
	sourceTypes []domain.SourceType
	selected    int

	// Selected source type
	sourceType *domain.SourceType

	// Config inputs: name input first, then one per config key
	nameInput    textinput.Model
	configInputs []textinput.Model
	configKeys   []string
	focusIndex   int

	// Result
	source *domain.Source
	err    error

	width  int
	height int
	ready  bool
}

// NewView creates a new add source wizard view.
func NewView(s *styles.Styles, sourceService driving.SourceService) *View {
	nameInput := textinput.New()
	nameInput.Placeholder = "fx Skattelove 2025"
	nameInput.CharLimit = 128

	return &View{
		styles:        s,
		sourceService: sourceService,
		step:          StepSelectType,
		nameInput:     nameInput,
	}
}

// Init initialises the view and loads source types.
func (v *View) Init() tea.Cmd {
	return v.loadSourceTypes()
}

// loadSourceTypes returns a command that loads available source types.
func (v *View) loadSourceTypes() tea.Cmd {
	return func() tea.Msg {
		return sourceTypesLoaded{types: services.SourceTypes()}
	}
}

// sourceTypesLoaded is a message indicating source types have been loaded.
type sourceTypesLoaded struct {
	types []domain.SourceType
}

// Update handles messages for the add source wizard.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case sourceTypesLoaded:
		v.sourceTypes = msg.types
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SourceAdded:
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.source = &msg.Source
			v.step = StepComplete
		}
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses based on current step.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	if msg.String() == "esc" {
		// Go back one step or exit
		switch v.step {
		case StepSelectType:
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewSources}
			}
		case StepEnterConfig:
			v.step = StepSelectType
			return v, nil
		case StepComplete:
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewSources}
			}
		}
	}

	switch v.step {
	case StepSelectType:
		return v.handleTypeSelect(msg)
	case StepEnterConfig:
		return v.handleConfigInput(msg)
	case StepComplete:
		if msg.String() == keyEnter {
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewSources}
			}
		}
	}

	return v, nil
}

func (v *View) handleTypeSelect(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case keyDown, "j":
		if v.selected < len(v.sourceTypes)-1 {
			v.selected++
		}
	case keyEnter:
		if len(v.sourceTypes) > 0 && v.selected < len(v.sourceTypes) {
			v.sourceType = &v.sourceTypes[v.selected]
			cmd := v.initConfigInputs()
			v.step = StepEnterConfig
			return v, cmd
		}
	}
	return v, nil
}

func (v *View) initConfigInputs() tea.Cmd {
	if v.sourceType == nil {
		return nil
	}

	v.nameInput.SetValue("")
	v.configInputs = make([]textinput.Model, len(v.sourceType.ConfigKeys))
	v.configKeys = make([]string, len(v.sourceType.ConfigKeys))

	for i, key := range v.sourceType.ConfigKeys {
		ti := textinput.New()
		placeholder := key.Description
		if key.Default != "" {
			if placeholder != "" {
				placeholder = fmt.Sprintf("%s (default: %s)", placeholder, key.Default)
			} else {
				placeholder = fmt.Sprintf("default: %s", key.Default)
			}
		}
		ti.Placeholder = placeholder
		ti.SetValue("")
		v.configInputs[i] = ti
		v.configKeys[i] = key.Key
	}
	v.focusIndex = 0

	// Name field is focused first
	return v.nameInput.Focus()
}

//nolint:gocritic // evalOrder: bubbletea pattern returns cmd from method call
func (v *View) handleConfigInput(msg tea.KeyMsg) (*View, tea.Cmd) {
	// Field 0 is the name input; fields 1..n are config inputs.
	fieldCount := len(v.configInputs) + 1

	switch msg.String() {
	case "tab", keyDown:
		v.focusIndex++
		if v.focusIndex >= fieldCount {
			v.focusIndex = 0
		}
		return v, v.updateFocus()
	case "shift+tab", "up":
		v.focusIndex--
		if v.focusIndex < 0 {
			v.focusIndex = fieldCount - 1
		}
		return v, v.updateFocus()
	case keyEnter:
		if v.validateConfig() {
			return v, v.createSource()
		}
		return v, nil
	default:
		// Forward to current input
		var cmd tea.Cmd
		if v.focusIndex == 0 {
			v.nameInput, cmd = v.nameInput.Update(msg)
		} else if v.focusIndex-1 < len(v.configInputs) {
			v.configInputs[v.focusIndex-1], cmd = v.configInputs[v.focusIndex-1].Update(msg)
		}
		return v, cmd
	}
}

func (v *View) updateFocus() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(v.configInputs)+1)
	if v.focusIndex == 0 {
		cmds = append(cmds, v.nameInput.Focus())
	} else {
		v.nameInput.Blur()
	}
	for i := range v.configInputs {
		if i == v.focusIndex-1 {
			cmds = append(cmds, v.configInputs[i].Focus())
		} else {
			v.configInputs[i].Blur()
		}
	}
	return tea.Batch(cmds...)
}

func (v *View) validateConfig() bool {
	if v.sourceType == nil {
		return false
	}

	if strings.TrimSpace(v.nameInput.Value()) == "" {
		v.err = fmt.Errorf("source name is required")
		return false
	}

	for i, key := range v.sourceType.ConfigKeys {
		if key.Required && strings.TrimSpace(v.configInputs[i].Value()) == "" {
			v.err = fmt.Errorf("required field %s is empty", key.Label)
			return false
		}
	}
	v.err = nil
	return true
}

func (v *View) createSource() tea.Cmd {
	return func() tea.Msg {
		if v.sourceService == nil || v.sourceType == nil {
			return messages.SourceAdded{Err: fmt.Errorf("service not available")}
		}

		config := make(map[string]string)
		for i, key := range v.configKeys {
			if value := strings.TrimSpace(v.configInputs[i].Value()); value != "" {
				config[key] = value
			}
		}

		source := domain.Source{
			ID:        uuid.New().String(),
			Type:      v.sourceType.ID,
			Name:      strings.TrimSpace(v.nameInput.Value()),
			Config:    config,
			CreatedAt: time.Now(),
		}

		err := v.sourceService.Add(context.Background(), source)
		return messages.SourceAdded{Source: source, Err: err}
	}
}

// View renders the add source wizard.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Add Source"))
	b.WriteString("\n\n")

	b.WriteString(v.renderProgress())
	b.WriteString("\n\n")

	// Error display
	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
	}

	// Step content
	switch v.step {
	case StepSelectType:
		b.WriteString(v.renderTypeSelect())
	case StepEnterConfig:
		b.WriteString(v.renderConfigInput())
	case StepComplete:
		b.WriteString(v.renderComplete())
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

func (v *View) renderProgress() string {
	stepNames := []string{"Type", "Configure", "Done"}
	currentIdx := 0
	switch v.step {
	case StepSelectType:
		currentIdx = 0
	case StepEnterConfig:
		currentIdx = 1
	case StepComplete:
		currentIdx = 2
	}

	progress := ""
	for i, name := range stepNames {
		if i > 0 {
			progress += " > "
		}
		if i == currentIdx {
			progress += v.styles.Selected.Render(name)
		} else if i < currentIdx {
			progress += v.styles.Success.Render(name)
		} else {
			progress += v.styles.Muted.Render(name)
		}
	}
	return progress
}

func (v *View) renderTypeSelect() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Select a source type:"))
	b.WriteString("\n\n")

	if len(v.sourceTypes) == 0 {
		b.WriteString(v.styles.Muted.Render("No source types available."))
		return b.String()
	}

	for i := range v.sourceTypes {
		st := &v.sourceTypes[i]
		indicator := "  "
		if i == v.selected {
			indicator = "> "
		}

		line := fmt.Sprintf("%s%s - %s", indicator, st.Name, st.Description)
		if i == v.selected {
			b.WriteString(v.styles.Selected.Render(line))
		} else {
			b.WriteString(v.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (v *View) renderConfigInput() string {
	var b strings.Builder

	if v.sourceType == nil {
		return ""
	}

	b.WriteString(v.styles.Subtitle.Render(fmt.Sprintf("Configure %s:", v.sourceType.Name)))
	b.WriteString("\n\n")

	b.WriteString(v.styles.Normal.Render("Name *:"))
	b.WriteString("\n")
	b.WriteString(v.nameInput.View())
	b.WriteString("\n\n")

	for i, key := range v.sourceType.ConfigKeys {
		label := key.Label
		if key.Required {
			label += " *"
		}
		b.WriteString(v.styles.Normal.Render(label + ":"))
		b.WriteString("\n")
		b.WriteString(v.configInputs[i].View())
		b.WriteString("\n\n")
	}

	return b.String()
}

func (v *View) renderComplete() string {
	var b strings.Builder

	b.WriteString(v.styles.Subtitle.Render("Source Added Successfully!"))
	b.WriteString("\n\n")

	if v.source != nil {
		b.WriteString(fmt.Sprintf("ID: %s\n", v.source.ID))
		b.WriteString(fmt.Sprintf("Type: %s\n", v.source.Type))
		b.WriteString(fmt.Sprintf("Name: %s\n", v.source.Name))
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Sync the source to index its documents."))
	b.WriteString("\n")

	return b.String()
}

func (v *View) renderHelp() string {
	switch v.step {
	case StepSelectType:
		return v.styles.Help.Render("[j/k] navigate  [enter] select  [esc] cancel")
	case StepEnterConfig:
		return v.styles.Help.Render("[tab] next field  [enter] create  [esc] back")
	case StepComplete:
		return v.styles.Help.Render("[enter] done  [esc] back to sources")
	default:
		return ""
	}
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Reset resets the wizard to initial state.
func (v *View) Reset() {
	v.step = StepSelectType
	v.selected = 0
	v.sourceType = nil
	v.nameInput.SetValue("")
	v.configInputs = nil
	v.configKeys = nil
	v.focusIndex = 0
	v.source = nil
	v.err = nil
}
