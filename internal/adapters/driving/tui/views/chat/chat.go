// Package chat provides the conversation view of the TUI.
package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/assetchat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/assetchat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/assetchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/assetchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/assetchat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/assetchat/internal/core/domain"
	"github.com/custodia-labs/assetchat/internal/core/ports/driving"
)

// chrome is the number of rows taken by everything but the transcript.
const chrome = 8

type entry struct {
	role domain.Role
	text string
}

// View shows the transcript above a question input.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	transcript viewport.Model
	spinner    spinner.Model
	statusbar  *status.Bar

	sessions driving.SessionService
	conv     driving.Conversation
	ctx      context.Context

	entries []entry
	pending bool
	width   int
	height  int
}

// NewView creates a chat view. A conversation is started on the first
// question.
func NewView(s *styles.Styles, km *keymap.KeyMap, sessions driving.SessionService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = s.AssistantLabel

	v := &View{
		styles:     s,
		keymap:     km,
		input:      input.NewQuestionInput(s),
		transcript: viewport.New(80, 24-chrome),
		spinner:    sp,
		statusbar:  status.NewBar(s, km),
		sessions:   sessions,
		ctx:        context.Background(),
		width:      80,
		height:     24,
	}
	v.refresh()
	return v
}

// WithContext sets the context questions are asked under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// SetMode shows the answer mode in the status bar.
func (v *View) SetMode(mode string) {
	v.statusbar.SetMode(mode)
}

// Init starts the input cursor.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)

	case messages.QuestionSubmitted:
		return v, v.ask(msg.Question)

	case messages.AnswerReceived:
		v.pending = false
		v.entries = append(v.entries, entry{role: domain.RoleAssistant, text: msg.Answer})
		if msg.Err != nil {
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
		} else {
			v.statusbar.SetState(status.StateReady)
		}
		v.refresh()
		return v, v.input.Focus()

	case spinner.TickMsg:
		if !v.pending {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		v.refresh()
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}

	case keymap.Matches(key, v.keymap.Send):
		question := strings.TrimSpace(v.input.Value())
		if question == "" || v.pending {
			return v, nil
		}
		v.input.Reset()
		return v, v.ask(question)

	case keymap.Matches(key, v.keymap.Reset):
		if v.pending {
			return v, nil
		}
		if v.conv != nil {
			v.conv.Reset()
		}
		v.entries = nil
		v.statusbar.Clear()
		v.refresh()
		return v, func() tea.Msg { return messages.ConversationReset{} }

	case keymap.Matches(key, v.keymap.ScrollUp), keymap.Matches(key, v.keymap.ScrollDown):
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// ask records the question and answers it in the background.
func (v *View) ask(question string) tea.Cmd {
	if v.pending || strings.TrimSpace(question) == "" {
		return nil
	}
	if v.sessions == nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage("no chat session available")
		return nil
	}
	if v.conv == nil {
		v.conv = v.sessions.New()
	}

	v.entries = append(v.entries, entry{role: domain.RoleUser, text: question})
	v.pending = true
	v.statusbar.SetState(status.StateThinking)
	v.statusbar.SetTurns(v.statusbar.Turns() + 1)
	v.input.Blur()
	v.refresh()

	conv, ctx := v.conv, v.ctx
	return tea.Batch(v.spinner.Tick, func() tea.Msg {
		answer, err := conv.Ask(ctx, question)
		return messages.AnswerReceived{Question: question, Answer: answer, Err: err}
	})
}

// refresh re-renders the transcript and scrolls to the newest turn.
func (v *View) refresh() {
	wrap := lipgloss.NewStyle().Width(max(v.transcript.Width-2, 10))

	var b strings.Builder
	if len(v.entries) == 0 {
		b.WriteString(v.styles.Muted.Render("Ask a question about assets, work orders, invoices or vendors."))
	}
	for i, e := range v.entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if e.role == domain.RoleUser {
			b.WriteString(v.styles.UserLabel.Render("You"))
		} else {
			b.WriteString(v.styles.AssistantLabel.Render("Assistant"))
		}
		b.WriteString("\n")
		b.WriteString(wrap.Render(e.text))
	}
	if v.pending {
		b.WriteString("\n\n")
		b.WriteString(v.spinner.View() + " " + v.styles.Muted.Render("Thinking..."))
	}

	v.transcript.SetContent(b.String())
	v.transcript.GotoBottom()
}

// View renders the chat.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("assetchat"))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Transcript.Render(v.transcript.View()))
	b.WriteString("\n")
	b.WriteString(v.input.View())
	b.WriteString("\n")
	b.WriteString(v.statusbar.View())
	return b.String()
}

// SetDimensions resizes the transcript, input and status bar.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.transcript.Width = max(width-4, 20)
	v.transcript.Height = max(height-chrome, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refresh()
}

// Pending reports whether an answer is outstanding.
func (v *View) Pending() bool {
	return v.pending
}

// Transcript returns the recorded turns as plain text, one per entry.
func (v *View) Transcript() []string {
	out := make([]string, len(v.entries))
	for i, e := range v.entries {
		out[i] = string(e.role) + ": " + e.text
	}
	return out
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.statusbar
}
