// Package examples lists ready-made questions to start a chat with.
package examples

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/assetchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/assetchat/internal/adapters/driving/tui/styles"
)

// DefaultQuestions are shown when no other questions are configured.
var DefaultQuestions = []string{
	"How many assets are in each category?",
	"Show me all open work orders",
	"Work orders for asset MPT-001",
	"Which vehicles are assigned to Homer Simpson?",
	"List all customers",
	"What is the warranty expiration date for MPT-001?",
	"Tell me about the most expensive assets",
}

// View is a selectable list of example questions.
type View struct {
	styles    *styles.Styles
	questions []string
	selected  int
	width     int
	height    int
}

// NewView creates the view. Nil questions selects DefaultQuestions.
func NewView(s *styles.Styles, questions []string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if questions == nil {
		questions = DefaultQuestions
	}
	return &View{
		styles:    s,
		questions: questions,
		width:     80,
		height:    24,
	}
}

// Init implements the view lifecycle.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles navigation. Enter submits the selected question.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if v.selected > 0 {
				v.selected--
			}
		case "down", "j":
			if v.selected < len(v.questions)-1 {
				v.selected++
			}
		case "enter":
			if len(v.questions) == 0 {
				return v, nil
			}
			q := v.questions[v.selected]
			return v, func() tea.Msg {
				return messages.QuestionSubmitted{Question: q}
			}
		case "esc":
			return v, func() tea.Msg {
				return messages.ViewChanged{View: messages.ViewMenu}
			}
		}
	}
	return v, nil
}

// View renders the list.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Try asking me:"))
	b.WriteString("\n\n")

	for i, q := range v.questions {
		if i == v.selected {
			b.WriteString("> " + v.styles.Selected.Render(q))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(q))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Ask  [Esc] Back"))
	return b.String()
}

// Selected returns the highlighted question.
func (v *View) Selected() string {
	if len(v.questions) == 0 {
		return ""
	}
	return v.questions[v.selected]
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}
