package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// Templates use the placeholders {conversation_history}, {question} and
// {context}.
const (
	// PromptAnswerRAG answers from retrieved documents.
	PromptAnswerRAG = "answer_rag"

	// PromptAnswerSummary answers from the dataset summaries only.
	PromptAnswerSummary = "answer_summary"
)
