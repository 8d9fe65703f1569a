// Package collections provides the collection management view for the TUI.
package collections

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/lovbase/paragraf/internal/adapters/driving/tui/messages"
	"github.com/lovbase/paragraf/internal/adapters/driving/tui/styles"
	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driving"
)

// View is the collection management view. It lists collections and
// lets the user switch which one is active.
type View struct {
	styles            *styles.Styles
	collectionService driving.CollectionService

	collections []domain.Collection
	activeID    string
	selected    int
	width       int
	height      int
	ready       bool
	err         error
	loading     bool
}

// NewView creates a new collections view.
func NewView(s *styles.Styles, collectionService driving.CollectionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &View{
		styles:            s,
		collectionService: collectionService,
		collections:       []domain.Collection{},
	}
}

// Init initialises the view and loads collections.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadCollections()
}

// loadCollections returns a command that loads collections from the service.
func (v *View) loadCollections() tea.Cmd {
	return func() tea.Msg {
		if v.collectionService == nil {
			return messages.CollectionsLoaded{Err: fmt.Errorf("collection service not available")}
		}

		ctx := context.Background()
		collections, err := v.collectionService.List(ctx)
		if err != nil {
			return messages.CollectionsLoaded{Err: err}
		}

		activeID := ""
		if active, err := v.collectionService.Active(ctx); err == nil {
			activeID = active.ID
		}

		return messages.CollectionsLoaded{Collections: collections, ActiveID: activeID}
	}
}

// Update handles messages for the collections view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.ready = true
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.CollectionsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
		} else {
			v.collections = msg.Collections
			v.activeID = msg.ActiveID
			v.err = nil
		}
		return v, nil

	case messages.CollectionSwitched:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		// Reload to refresh the active marker
		v.loading = true
		return v, v.loadCollections()
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.collections)-1 {
			v.selected++
		}
	case "enter":
		// Switch the active collection
		if len(v.collections) > 0 && v.selected < len(v.collections) {
			name := v.collections[v.selected].Name
			return v, v.switchCollection(name)
		}
	case "r":
		v.loading = true
		return v, v.loadCollections()
	}

	return v, nil
}

// switchCollection returns a command that switches the active collection.
func (v *View) switchCollection(name string) tea.Cmd {
	return func() tea.Msg {
		if v.collectionService == nil {
			return messages.CollectionSwitched{Name: name, Err: fmt.Errorf("collection service not available")}
		}

		err := v.collectionService.Use(context.Background(), name)
		return messages.CollectionSwitched{Name: name, Err: err}
	}
}

// View renders the collections view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Collections"))
	b.WriteString("\n\n")

	if v.loading {
		b.WriteString(v.styles.Muted.Render("Loading collections..."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	if len(v.collections) == 0 {
		b.WriteString(v.styles.Muted.Render("No collections yet."))
		b.WriteString("\n\n")
		b.WriteString(v.renderHelp())
		return b.String()
	}

	for i := range v.collections {
		b.WriteString(v.renderCollection(i, &v.collections[i]))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.renderHelp())

	return b.String()
}

// renderCollection renders a single collection line.
func (v *View) renderCollection(index int, collection *domain.Collection) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	marker := " "
	if collection.ID == v.activeID {
		marker = "*"
	}

	label := collection.Name
	if collection.EmbeddingModel != "" {
		label = fmt.Sprintf("%s (%s)", label, collection.EmbeddingModel)
	}

	line := fmt.Sprintf("%s%s %s", indicator, marker, label)
	if index == v.selected {
		return v.styles.Selected.Render(line)
	}
	return v.styles.Normal.Render(line)
}

// renderHelp renders the help footer.
func (v *View) renderHelp() string {
	return v.styles.Help.Render("[enter] make active  [r] reload  [esc] back  (* = active)")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Collections returns the loaded collections.
func (v *View) Collections() []domain.Collection {
	return v.collections
}

// ActiveID returns the active collection ID.
func (v *View) ActiveID() string {
	return v.activeID
}

// SelectedIndex returns the currently selected index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
