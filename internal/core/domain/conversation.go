package domain

// Role is the author of a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	Role Role
	Text string
}

// AnswerOptions tunes one answer. Zero fields fall back to the configured
// defaults.
type AnswerOptions struct {
	// K is the number of documents to retrieve.
	K int

	// Temperature is passed to the answer generator.
	Temperature float64

	// MaxTokens caps the generated answer.
	MaxTokens int
}

// Merge fills zero fields of o from defaults.
func (o AnswerOptions) Merge(defaults AnswerOptions) AnswerOptions {
	if o.K <= 0 {
		o.K = defaults.K
	}
	if o.Temperature <= 0 {
		o.Temperature = defaults.Temperature
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = defaults.MaxTokens
	}
	return o
}

// LookupResult is the outcome of the deterministic lookup layer.
type LookupResult struct {
	// Applicable is true when the question matched a lookup shape.
	// The Answer is then final and the model is not consulted.
	Applicable bool

	// Answer is the formatted report, including explicit "no results" text.
	Answer string

	// Matches is the number of matching records. Zero on a lookup miss.
	Matches int
}

// ApologyMessage is returned to the user when a question cannot be answered.
const ApologyMessage = "I'm sorry, I encountered an error processing your request. " +
	"Please try again or rephrase your question."

// NoHistoryText stands in for an empty conversation history in prompts.
const NoHistoryText = "No previous conversation."
