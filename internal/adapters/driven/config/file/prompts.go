package file

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/custodia-labs/assetchat/internal/core/ports/driven"
)

// Ensure PromptStore implements the interface.
var _ driven.PromptStore = (*PromptStore)(nil)

// PromptStore loads answer prompts from user-editable files on disk,
// falling back to embedded defaults.
//
// Files are only created on the first Load, not in the constructor.
type PromptStore struct {
	mu        sync.RWMutex
	promptDir string
	cache     map[string]string
	initOnce  sync.Once
	initErr   error
}

// placeholders every answer template must keep.
var placeholders = []string{"{conversation_history}", "{question}", "{context}"}

//nolint:lll // Prompt content is intentionally long and should not be wrapped.
var defaultPrompts = map[string]string{
	driven.PromptAnswerRAG: `You are an asset maintenance assistant. You answer questions about assets, work orders, invoices, purchase orders, vendors, customers and employees using the records below.

PREVIOUS CONVERSATION HISTORY:
{conversation_history}

CURRENT QUESTION: {question}

RELEVANT RECORDS:
{context}

Instructions:
- Answer only from the records above and the conversation history.
- Refer back to the conversation history when the question builds on an earlier answer.
- If the records do not contain the answer, say so plainly instead of guessing.

Answering by question type:
- Counting ("how many", "number of"): reply with the single number in bold, for example **42**, using the exact figures from the GLOBAL SUMMARY record, followed by at most one short sentence.
- Listing: give one bare bullet per item holding only its identifier or name, with no extra fields. If more than 20 items match, state the total and ask the user to confirm before listing them all.
- Sums, averages, minimums and maximums: compute only from values visible in the records above, never estimate missing ones, and state the unit or currency of the result.
- Details about one record: describe its fields in plain language and omit every internal field whose name ends in "Key" (customerKey, vendorKey, contactKey, addressKey, phoneKey and the like).

Formatting:
- Be concise. Use short markdown headings (###) only when the answer has more than one part.
- Do not cite sources or record IDs as references, and do not mention the records or context.
- No preamble: start directly with the answer.
- RESPOND IN THE SAME LANGUAGE AS THE QUESTION.

Answer:`,

	driven.PromptAnswerSummary: `You are an asset maintenance assistant with access to a complete statistical summary of the maintenance dataset.

PREVIOUS CONVERSATION HISTORY:
{conversation_history}

CURRENT QUESTION: {question}

DATA SUMMARY:
{context}

Instructions:
- Use the data summary above to answer accurately.
- For counting questions, reply with the exact number from the summary in bold, for example **42**.
- For totals and averages, compute only from figures in the summary and state their unit.
- Refer back to the conversation history when the user asks for more detail on something mentioned earlier.
- Be direct and confident. Use short markdown headings only for multi-part answers, cite no sources and skip any preamble.
- Never mention internal fields whose name ends in "Key".
- RESPOND IN THE SAME LANGUAGE AS THE QUESTION.

Answer:`,
}

// NewPromptStore creates a new file-based prompt store.
// If promptDir is empty, defaults to ~/.assetchat/prompts/.
func NewPromptStore(promptDir string) (*PromptStore, error) {
	if promptDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("get home directory: %w", err)
		}
		promptDir = filepath.Join(home, DefaultDirName, "prompts")
	}

	return &PromptStore{
		promptDir: promptDir,
		cache:     make(map[string]string),
	}, nil
}

// Load returns the prompt template for the given name.
// A user file missing a placeholder is ignored in favour of the embedded
// default, since the answer would otherwise silently lose its context.
func (s *PromptStore) Load(name string) (string, error) {
	s.initOnce.Do(s.initialise)
	if s.initErr != nil {
		if prompt, ok := defaultPrompts[name]; ok {
			return prompt, nil
		}
		return "", fmt.Errorf("prompt store init failed: %w", s.initErr)
	}

	s.mu.RLock()
	if prompt, ok := s.cache[name]; ok {
		s.mu.RUnlock()
		return prompt, nil
	}
	s.mu.RUnlock()

	prompt, err := s.loadFromFile(name)
	if err == nil {
		if missing := missingPlaceholders(prompt); len(missing) > 0 {
			err = fmt.Errorf("prompt %q is missing %s", name, strings.Join(missing, ", "))
		}
	}
	if err != nil {
		if defaultPrompt, ok := defaultPrompts[name]; ok {
			return defaultPrompt, nil
		}
		return "", fmt.Errorf("load prompt %q: %w", name, err)
	}

	s.mu.Lock()
	if cached, ok := s.cache[name]; ok {
		prompt = cached
	} else {
		s.cache[name] = prompt
	}
	s.mu.Unlock()

	return prompt, nil
}

// Reload clears the prompt cache, forcing fresh loads from disk.
func (s *PromptStore) Reload() {
	s.mu.Lock()
	s.cache = make(map[string]string)
	s.mu.Unlock()
}

// Dir returns the prompt directory path.
func (s *PromptStore) Dir() string {
	return s.promptDir
}

func missingPlaceholders(prompt string) []string {
	var missing []string
	for _, p := range placeholders {
		if !strings.Contains(prompt, p) {
			missing = append(missing, p)
		}
	}
	return missing
}

// initialise creates the prompt directory and default files.
func (s *PromptStore) initialise() {
	if err := os.MkdirAll(s.promptDir, 0700); err != nil {
		s.initErr = fmt.Errorf("create prompt directory: %w", err)
		return
	}

	for name, content := range defaultPrompts {
		path := filepath.Join(s.promptDir, name+".txt")
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if err := os.WriteFile(path, []byte(content), 0600); err != nil {
				s.initErr = fmt.Errorf("create default prompt %q: %w", name, err)
				return
			}
		}
	}

	if err := s.createReadme(); err != nil {
		s.initErr = err
	}
}

func (s *PromptStore) loadFromFile(name string) (string, error) {
	data, err := os.ReadFile(filepath.Join(s.promptDir, name+".txt"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func (s *PromptStore) createReadme() error {
	path := filepath.Join(s.promptDir, "README.md")
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return nil
	}

	content := `# assetchat prompts

These templates are sent to the language model for every answer.

## Files

- ` + "`answer_rag.txt`" + ` - answers from the records retrieved for a question
- ` + "`answer_summary.txt`" + ` - answers from the dataset summaries only

## Placeholders

Every template must keep all three placeholders, otherwise the built-in
default is used instead:

- ` + "`{conversation_history}`" + ` - recent turns of the conversation
- ` + "`{question}`" + ` - the user's question
- ` + "`{context}`" + ` - the records or summaries the answer is based on

Changes take effect on the next question.
`
	return os.WriteFile(path, []byte(content), 0600)
}
