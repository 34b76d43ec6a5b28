package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ragdex/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ragdex/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/ragdex/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ragdex/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ragdex/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ragdex/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/ragdex/internal/core/domain"
)

// historyPrefill is how many past searches to load for the input pre-fill.
const historyPrefill = 1

// App is the interactive search interface following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	// keymap holds the keybindings.
	keymap *keymap.KeyMap

	// input is the query input component.
	input *input.SearchInput

	// list is the result list component.
	list *list.ResultList

	// statusbar shows state and keybinding hints.
	statusbar *status.Bar

	// focusInput is true while typing and false while navigating results.
	focusInput bool

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:      ports,
		ctx:        context.Background(),
		styles:     s,
		keymap:     km,
		input:      input.NewSearchInput(s),
		list:       list.NewResultList(s),
		statusbar:  status.NewBar(s, km),
		focusInput: true, // Start in input mode
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
// It runs initial commands when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("ragdex"),
		a.input.Init(),
		a.loadHistory(),
	)
}

// Update implements tea.Model.
// It handles messages and updates the model state.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.SearchCompleted:
		a.handleSearchCompleted(msg)
		return a, nil

	case messages.HistoryLoaded:
		a.handleHistoryLoaded(msg)
		return a, nil

	case messages.ErrorOccurred:
		a.err = msg.Err
		a.statusbar.SetState(status.StateError)
		a.statusbar.SetMessage(msg.Err.Error())
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	// Forward other messages (cursor blink) to the input component
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// handleKeyMsg processes keyboard input.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Esc and ctrl+c quit from either mode
	if msg.Type == tea.KeyEsc || msg.Type == tea.KeyCtrlC {
		return a, tea.Quit
	}

	// Enter in input mode submits the search
	if msg.Type == tea.KeyEnter && a.focusInput {
		query := a.input.Value()
		if query == "" {
			return a, nil
		}
		a.statusbar.SetState(status.StateSearching)
		a.focusInput = false
		a.input.Blur()
		return a, a.performSearch(query)
	}

	// Input mode: all keys go to input
	if a.focusInput {
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}

	// Results mode: handle navigation
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyUp:
		a.list.MoveUp()
		return a, nil
	case tea.KeyDown:
		a.list.MoveDown()
		return a, nil
	}

	switch msg.String() {
	case "k":
		a.list.MoveUp()
	case "j":
		a.list.MoveDown()
	case "q":
		return a, tea.Quit
	case "n":
		// New search: clear input and focus it
		a.focusInput = true
		a.input.SetValue("")
		return a, a.input.Focus()
	}

	return a, nil
}

// performSearch runs a hybrid search through the driving port.
func (a *App) performSearch(query string) tea.Cmd {
	return func() tea.Msg {
		output, err := a.ports.Rag.Search(a.ctx, query, domain.SearchOptions{})
		if err != nil {
			return messages.SearchCompleted{Err: err}
		}
		return messages.SearchCompleted{Output: output}
	}
}

// loadHistory fetches the most recent search for the input pre-fill.
func (a *App) loadHistory() tea.Cmd {
	return func() tea.Msg {
		entries, err := a.ports.Rag.History(a.ctx, historyPrefill)
		return messages.HistoryLoaded{Entries: entries, Err: err}
	}
}

// handleSearchCompleted processes search results.
func (a *App) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		a.err = msg.Err
		a.statusbar.SetState(status.StateError)
		a.statusbar.SetMessage(msg.Err.Error())
		return
	}

	a.err = nil
	a.list.SetResults(msg.Output.Results)
	a.statusbar.SetState(status.StateResults)
	a.statusbar.SetResultCount(len(msg.Output.Results))

	// Switch to results mode after a successful search
	a.focusInput = false
	a.input.Blur()
}

// handleHistoryLoaded pre-fills the input with the most recent query.
// A query the user already started typing takes precedence.
func (a *App) handleHistoryLoaded(msg messages.HistoryLoaded) {
	if msg.Err != nil || len(msg.Entries) == 0 {
		return
	}
	if a.input.Value() != "" {
		return
	}
	a.input.SetValue(msg.Entries[0].Query)
}

// View implements tea.Model.
// It renders the search interface as a string.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	sections := make([]string, 0, 8)

	// Header
	header := a.styles.Title.Render("ragdex")
	sections = append(sections, header, "")

	// Query input
	sections = append(sections, a.input.View(), "")

	// Error display
	if a.err != nil {
		errView := a.styles.Error.Render("Error: " + a.err.Error())
		sections = append(sections, errView, "")
	}

	// Results list
	sections = append(sections, a.list.View())

	// Status bar at bottom
	sections = append(sections, "", a.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetDimensions sets the terminal dimensions and sizes the components.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	a.input.SetWidth(width)
	a.list.SetDimensions(width, height-8) // Reserve space for header, input, status
	a.statusbar.SetWidth(width)
}

// Query returns the current search query.
func (a *App) Query() string {
	return a.input.Value()
}

// Results returns the current search results.
func (a *App) Results() []domain.SearchResult {
	return a.list.Results()
}

// SelectedIndex returns the currently selected result index.
func (a *App) SelectedIndex() int {
	return a.list.Selected()
}

// InputFocused returns whether the query input has focus.
func (a *App) InputFocused() bool {
	return a.focusInput
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}
