// Package app assembles the chat pipeline from settings: it loads the
// dataset, synthesises documents, opens the vector index and builds the
// answer services every driving adapter shares.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/assetchat/internal/adapters/driven/ai"
	"github.com/custodia-labs/assetchat/internal/adapters/driven/records/jsonfile"
	"github.com/custodia-labs/assetchat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/assetchat/internal/adapters/driven/vectorstore/flat"
	"github.com/custodia-labs/assetchat/internal/core/domain"
	"github.com/custodia-labs/assetchat/internal/core/ports/driven"
	"github.com/custodia-labs/assetchat/internal/core/ports/driving"
	"github.com/custodia-labs/assetchat/internal/core/services"
	"github.com/custodia-labs/assetchat/internal/logger"
)

// Startup stages, in order.
const (
	StageSettings   = "settings"
	StageLoad       = "load data"
	StageEmbedding  = "embedding provider"
	StageIndexStore = "index store"
	StageIndex      = "vector index"
	StageLLM        = "language model"
	StageChat       = "chat"
)

// StartupError reports the stage that stopped the application from starting.
type StartupError struct {
	Stage string
	Err   error
}

// Error implements error.
func (e *StartupError) Error() string {
	return fmt.Sprintf("startup failed at %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *StartupError) Unwrap() error {
	return e.Err
}

func stageErr(stage string, err error) error {
	return &StartupError{Stage: stage, Err: err}
}

// Options configures New. Zero-valued adapters are created from Settings.
type Options struct {
	Settings *domain.AppSettings

	// Prompts supplies the answer templates. Required unless SkipChat.
	Prompts driven.PromptStore

	// SkipLLM leaves the language model out, for index maintenance.
	SkipLLM bool

	// SkipChat stops after the index is open.
	SkipChat bool

	// Rebuild ignores any persisted index.
	Rebuild bool

	Source   driven.RecordSource
	Embedder driven.EmbeddingService
	Store    driven.IndexStore
	LLM      driven.LLMService
}

// App is the running pipeline. Dataset and documents are a read-only
// snapshot; Reload replaces them wholesale.
type App struct {
	settings domain.AppSettings
	source   driven.RecordSource
	embedder driven.EmbeddingService
	store    driven.IndexStore
	llm      driven.LLMService
	prompts  driven.PromptStore

	index *services.IndexService

	mu        sync.RWMutex
	dataset   *domain.Dataset
	relations *services.Relations
	documents []domain.Document
	chat      driving.ChatService
	sessions  *services.SessionManager

	closers []func() error
}

// New runs every startup stage. On failure the returned error is a
// *StartupError naming the stage, and everything opened so far is closed.
func New(ctx context.Context, opts Options) (_ *App, err error) {
	if opts.Settings == nil {
		return nil, stageErr(StageSettings, fmt.Errorf("%w: no settings", domain.ErrInvalidInput))
	}

	a := &App{
		settings: *opts.Settings,
		source:   opts.Source,
		embedder: opts.Embedder,
		store:    opts.Store,
		llm:      opts.LLM,
		prompts:  opts.Prompts,
	}
	defer func() {
		if err != nil {
			_ = a.Close()
		}
	}()

	logger.Section("Startup")

	if a.source == nil {
		a.source = jsonfile.NewLoader(a.settings.Data.Dir)
	}
	ds, rel, docs, err := a.load(ctx)
	if err != nil {
		return nil, stageErr(StageLoad, err)
	}

	if a.embedder == nil {
		a.embedder, err = ai.CreateAndValidateEmbeddingService(&a.settings.Embedding)
		if err != nil {
			return nil, stageErr(StageEmbedding, err)
		}
		a.closers = append(a.closers, a.embedder.Close)
	}
	logger.Info("Embedding model: %s", a.embedder.ModelName())

	if a.store == nil {
		store, err := sqlite.NewStore(a.settings.Data.IndexPath)
		if err != nil {
			return nil, stageErr(StageIndexStore, err)
		}
		a.store = store
		a.closers = append(a.closers, store.Close)
	}

	a.index = services.NewIndexService(a.embedder, a.store, flat.Factory)
	if opts.Rebuild {
		err = a.index.Rebuild(ctx, docs)
	} else {
		err = a.index.Open(ctx, docs)
	}
	if err != nil {
		return nil, stageErr(StageIndex, err)
	}

	a.dataset, a.relations, a.documents = ds, rel, docs
	if opts.SkipChat {
		return a, nil
	}

	if a.llm == nil && !opts.SkipLLM {
		a.llm, err = ai.CreateAndValidateLLMService(&a.settings.LLM)
		if err != nil {
			return nil, stageErr(StageLLM, err)
		}
		if a.llm == nil {
			logger.Warn("No language model configured; only exact lookups will be answered")
		} else {
			a.closers = append(a.closers, a.llm.Close)
			logger.Info("Language model: %s", a.llm.ModelName())
		}
	}

	if a.prompts == nil {
		return nil, stageErr(StageChat, errors.New("no prompt store"))
	}
	if err := a.buildChat(); err != nil {
		return nil, stageErr(StageChat, err)
	}

	return a, nil
}

// load reads the dataset and synthesises its documents.
func (a *App) load(ctx context.Context) (*domain.Dataset, *services.Relations, []domain.Document, error) {
	ds, err := a.source.Load(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	if n := len(ds.Problems); n > 0 {
		logger.Warn("%d collection files could not be read", n)
	}
	logger.Info("Loaded %d records from %s", ds.Total(), a.source.Dir())

	rel := services.BuildRelations(ds)
	docs := services.NewSynthesizer(rel).Documents(ds)
	logger.Info("Synthesised %d documents", len(docs))
	return ds, rel, docs, nil
}

func (a *App) buildChat() error {
	chat, err := services.NewChatService(a.settings.ChatMode, services.ChatConfig{
		Lookup:       services.NewLookupService(a.dataset, a.relations),
		LLM:          a.llm,
		Prompts:      a.prompts,
		Defaults:     a.settings.AnswerDefaults(),
		HistoryTurns: a.settings.Retrieval.HistoryTurns,
		Timeout:      a.settings.Generation.Timeout,
	}, a.index)
	if err != nil {
		return err
	}
	a.chat = chat
	a.sessions = services.NewSessionManager(chat, a.settings.AnswerDefaults())
	logger.Info("Chat mode: %s", chat.Mode())
	return nil
}

// Reload reads the dataset again and rebuilds the index from it. Sessions
// already handed out keep answering from the previous snapshot.
func (a *App) Reload(ctx context.Context) error {
	ds, rel, docs, err := a.load(ctx)
	if err != nil {
		return err
	}
	if err := a.index.Rebuild(ctx, docs); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.dataset, a.relations, a.documents = ds, rel, docs
	if a.chat != nil {
		return a.buildChat()
	}
	return nil
}

// Chat returns the answer service. Nil when started with SkipChat.
func (a *App) Chat() driving.ChatService {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.chat
}

// Sessions returns the session manager. Nil when started with SkipChat.
func (a *App) Sessions() driving.SessionService {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.sessions == nil {
		return nil
	}
	return a.sessions
}

// Index returns the index service.
func (a *App) Index() driving.IndexService {
	return a.index
}

// Dataset returns the loaded dataset.
func (a *App) Dataset() *domain.Dataset {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dataset
}

// Documents returns the synthesised documents.
func (a *App) Documents() []domain.Document {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.documents
}

// Settings returns the settings the app was started with.
func (a *App) Settings() domain.AppSettings {
	return a.settings
}

// DataDir returns the directory the dataset is read from.
func (a *App) DataDir() string {
	return a.source.Dir()
}

// LLMAvailable reports whether questions can reach a language model.
func (a *App) LLMAvailable() bool {
	return a.llm != nil
}

// Close releases every adapter the app opened itself.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
