// Package messages defines Bubbletea message types for the TUI.
package messages

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the start screen.
	ViewMenu ViewType = iota
	// ViewChat is the conversation.
	ViewChat
	// ViewExamples lists example questions.
	ViewExamples
	// ViewHelp lists the keybindings.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewChat:
		return "chat"
	case ViewExamples:
		return "examples"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// QuestionSubmitted asks the chat view to send a question.
type QuestionSubmitted struct {
	Question string
}

// AnswerReceived carries an answer back to the chat view. Answer is always
// displayable; Err explains a failure for the status bar.
type AnswerReceived struct {
	Question string
	Answer   string
	Err      error
}

// ConversationReset signals the history was cleared.
type ConversationReset struct{}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}
