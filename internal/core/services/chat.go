package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/assetchat/internal/core/domain"
	"github.com/custodia-labs/assetchat/internal/core/ports/driven"
	"github.com/custodia-labs/assetchat/internal/core/ports/driving"
	"github.com/custodia-labs/assetchat/internal/logger"
)

// Ensure both answer strategies implement the interface.
var (
	_ driving.ChatService = (*RAGAnswerer)(nil)
	_ driving.ChatService = (*SummaryAnswerer)(nil)
)

// ChatConfig holds the dependencies shared by the answer strategies.
type ChatConfig struct {
	// Lookup answers exact-match questions before the model is consulted.
	Lookup *LookupService

	// LLM generates answers. When nil only lookups are answered.
	LLM driven.LLMService

	// Prompts supplies the prompt templates.
	Prompts driven.PromptStore

	// Defaults fill unset per-answer options.
	Defaults domain.AnswerOptions

	// HistoryTurns is how many recent turns the model sees.
	HistoryTurns int

	// Timeout bounds one generation call.
	Timeout time.Duration
}

// NewChatService returns the answer strategy for mode.
func NewChatService(mode domain.ChatMode, cfg ChatConfig, index driving.IndexService) (driving.ChatService, error) {
	switch mode {
	case domain.ChatModeRAG:
		return NewRAGAnswerer(cfg, index), nil
	case domain.ChatModeSummary:
		return NewSummaryAnswerer(cfg, index), nil
	default:
		return nil, fmt.Errorf("%w: chat mode %q", domain.ErrUnsupportedType, mode)
	}
}

// answerCore runs the steps both strategies share: lookup short-circuit,
// prompt rendering, bounded generation and sanitisation.
type answerCore struct {
	cfg ChatConfig
}

// contextBuilder produces the context text for a question together with the
// normalised question the model is asked.
type contextBuilder func(ctx context.Context, question string, opts domain.AnswerOptions) (normalized, text string, err error)

func (c *answerCore) answer(ctx context.Context, question string, history []domain.Turn,
	opts domain.AnswerOptions, promptName string, build contextBuilder) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}
	opts = opts.Merge(c.cfg.Defaults)

	logger.Section("Question")
	logger.Debug("Question: %q", question)

	if c.cfg.Lookup != nil {
		if res := c.cfg.Lookup.TryExact(question); res.Applicable {
			logger.Info("Answered by deterministic lookup (%d matches)", res.Matches)
			return res.Answer, nil
		}
	}

	if c.cfg.LLM == nil {
		return domain.ApologyMessage, fmt.Errorf("%w: %w", domain.ErrGeneration, domain.ErrLLMUnavailable)
	}

	normalized, contextText, err := build(ctx, question, opts)
	if err != nil {
		logger.Error("Assemble context: %v", err)
		return domain.ApologyMessage, err
	}

	template, err := c.cfg.Prompts.Load(promptName)
	if err != nil {
		return domain.ApologyMessage, fmt.Errorf("%w: load prompt %s: %w", domain.ErrGeneration, promptName, err)
	}
	prompt := RenderPrompt(template, FormatHistory(history, c.cfg.HistoryTurns), normalized, contextText)

	genCtx := ctx
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	logger.Section("Generation")
	logger.Debug("Model: %s, prompt: %d bytes, temperature %.2f", c.cfg.LLM.ModelName(), len(prompt), opts.Temperature)
	start := time.Now()
	raw, err := c.cfg.LLM.Generate(genCtx, prompt, driven.GenerateOptions{
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		if errors.Is(genCtx.Err(), context.DeadlineExceeded) {
			err = fmt.Errorf("timed out after %s: %w", c.cfg.Timeout, err)
		}
		logger.Error("Generation failed: %v", err)
		return domain.ApologyMessage, fmt.Errorf("%w: %w", domain.ErrGeneration, err)
	}
	logger.Info("Generated %d bytes in %s", len(raw), time.Since(start).Round(time.Millisecond))

	return Sanitize(strings.TrimSpace(raw)), nil
}

// RAGAnswerer answers from the documents retrieved for each question.
type RAGAnswerer struct {
	core      answerCore
	assembler *ContextAssembler
}

// NewRAGAnswerer creates the retrieval answer strategy.
func NewRAGAnswerer(cfg ChatConfig, index driving.IndexService) *RAGAnswerer {
	return &RAGAnswerer{
		core:      answerCore{cfg: cfg},
		assembler: NewContextAssembler(index),
	}
}

// Answer implements driving.ChatService.
func (a *RAGAnswerer) Answer(ctx context.Context, question string, history []domain.Turn,
	opts domain.AnswerOptions) (string, error) {
	return a.core.answer(ctx, question, history, opts, driven.PromptAnswerRAG,
		func(ctx context.Context, q string, o domain.AnswerOptions) (string, string, error) {
			assembled, err := a.assembler.Assemble(ctx, q, o.K)
			if err != nil {
				return "", "", err
			}
			return assembled.Question, assembled.Text, nil
		})
}

// Mode implements driving.ChatService.
func (a *RAGAnswerer) Mode() domain.ChatMode {
	return domain.ChatModeRAG
}

// SummaryAnswerer answers from the dataset summaries alone. It needs no
// query embedding, so it keeps working when the embedding provider is
// unreachable after startup.
type SummaryAnswerer struct {
	core  answerCore
	index driving.IndexService
}

// NewSummaryAnswerer creates the summary-only answer strategy.
func NewSummaryAnswerer(cfg ChatConfig, index driving.IndexService) *SummaryAnswerer {
	return &SummaryAnswerer{core: answerCore{cfg: cfg}, index: index}
}

// Answer implements driving.ChatService.
func (a *SummaryAnswerer) Answer(ctx context.Context, question string, history []domain.Turn,
	opts domain.AnswerOptions) (string, error) {
	return a.core.answer(ctx, question, history, opts, driven.PromptAnswerSummary,
		func(_ context.Context, q string, _ domain.AnswerOptions) (string, string, error) {
			var parts []string
			for _, t := range []domain.DocType{domain.DocTypeGlobalSummary, domain.DocTypeCustomersSummary} {
				if doc, ok := a.index.Summary(t); ok {
					parts = append(parts, doc.Text)
				}
			}
			if len(parts) == 0 {
				return "", "", fmt.Errorf("%w: no summary documents indexed", domain.ErrIndex)
			}
			return NormalizeQuestion(q), strings.Join(parts, ContextSeparator), nil
		})
}

// Mode implements driving.ChatService.
func (a *SummaryAnswerer) Mode() domain.ChatMode {
	return domain.ChatModeSummary
}

// FormatHistory renders the last n turns for a prompt, or a placeholder
// when there is nothing to show.
func FormatHistory(history []domain.Turn, n int) string {
	if n > 0 && len(history) > n {
		history = history[len(history)-n:]
	}
	parts := make([]string, 0, len(history))
	for _, t := range history {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		switch t.Role {
		case domain.RoleUser:
			parts = append(parts, "User: "+text)
		case domain.RoleAssistant:
			parts = append(parts, "Assistant: "+text)
		}
	}
	if len(parts) == 0 {
		return domain.NoHistoryText
	}
	return strings.Join(parts, "\n\n")
}

// RenderPrompt fills the template placeholders. Placeholder text inside the
// substituted values is left alone.
func RenderPrompt(template, history, question, contextText string) string {
	return strings.NewReplacer(
		"{conversation_history}", history,
		"{question}", question,
		"{context}", contextText,
	).Replace(template)
}
