package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/assetchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/assetchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/assetchat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/assetchat/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/assetchat/internal/adapters/driving/tui/views/examples"
	"github.com/custodia-labs/assetchat/internal/adapters/driving/tui/views/menu"
)

// App is the main TUI application following the Elm architecture.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles

	menuView     *menu.View
	chatView     *chat.View
	examplesView *examples.View

	currentView messages.ViewType

	width  int
	height int
	ready  bool
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

	menuView := menu.NewView(s)
	if ports.Index != nil {
		stats := ports.Index.Stats()
		menuView.SetInfo(fmt.Sprintf("%d documents indexed with %s", stats.Documents, stats.Model))
	}

	chatView := chat.NewView(s, km, ports.Sessions)
	if ports.Mode != "" {
		chatView.SetMode(ports.Mode.Description())
	}

	return &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		menuView:     menuView,
		chatView:     chatView,
		examplesView: examples.NewView(s, ports.Examples),
		currentView:  messages.ViewMenu,
	}, nil
}

// WithContext sets the context questions are asked under.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.chatView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("assetchat"),
		a.chatView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		return a.routeKey(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		return a, nil

	case messages.QuestionSubmitted:
		a.currentView = messages.ViewChat
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd
	}

	// Answers, spinner ticks and cursor blinks belong to the chat.
	a.chatView, cmd = a.chatView.Update(msg)
	return a, cmd
}

func (a *App) routeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	case messages.ViewExamples:
		a.examplesView, cmd = a.examplesView.Update(msg)
	case messages.ViewHelp:
		if msg.Type == tea.KeyEsc || msg.String() == "q" {
			a.currentView = messages.ViewMenu
		}
	default:
		a.menuView, cmd = a.menuView.Update(msg)
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	case messages.ViewExamples:
		return a.examplesView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.menuView.View()
	}
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Menu and examples:
  j/k, ↑/↓    Navigate
  enter       Select
  esc         Back to menu

Chat:
  (type)      Enter a question
  enter       Ask
  pgup/pgdn   Scroll the conversation
  ctrl+r      Clear the conversation
  esc         Back to menu

Questions that name an asset's work orders ("work orders for asset
MPT-001") or ask for open work orders are answered straight from the
data. Everything else is answered from the most relevant records.

  ctrl+c      Quit

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the active view.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Ready reports whether the terminal size is known.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions resizes every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
	a.examplesView.SetDimensions(width, height)
}
