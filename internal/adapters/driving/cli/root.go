// Package cli implements the assetchat command line.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/assetchat/internal/core/domain"
	"github.com/custodia-labs/assetchat/internal/core/ports/driven"
	"github.com/custodia-labs/assetchat/internal/core/ports/driving"
	"github.com/custodia-labs/assetchat/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	verbose    bool
	configPath string
)

// StartOptions selects how much of the pipeline a command needs.
type StartOptions struct {
	// SkipLLM leaves the language model out.
	SkipLLM bool

	// SkipChat stops after the index is open.
	SkipChat bool

	// Rebuild ignores any persisted index.
	Rebuild bool
}

// Runtime is the running pipeline a command drives.
type Runtime interface {
	Chat() driving.ChatService
	Sessions() driving.SessionService
	Index() driving.IndexService
	Documents() []domain.Document
	DataDir() string
	LLMAvailable() bool
	Reload(ctx context.Context) error
	Close() error
}

// Starter builds a Runtime from the current settings.
type Starter func(ctx context.Context, opts StartOptions) (Runtime, error)

// Services are the dependencies every command shares.
type Services struct {
	Settings driving.SettingsService
	Start    Starter
	Watcher  driven.FileWatcher
}

// Initializer builds Services once flags are parsed. configPath is the
// --config value, empty for the default location.
type Initializer func(configPath string) (*Services, error)

var (
	initializer     Initializer
	settingsService driving.SettingsService
	startRuntime    Starter
	fileWatcher     driven.FileWatcher
)

var rootCmd = &cobra.Command{
	Use:   "assetchat",
	Short: "Chat with your asset maintenance data",
	Long: `assetchat answers natural-language questions about assets, work orders,
invoices, purchase orders, vendors, customers and employees.

It reads a directory of JSON exports, indexes one document per record plus
dataset summaries, and answers from the most relevant records. Questions
about an asset's work orders and about open work orders are answered
straight from the data.

Get started:
  assetchat settings wizard     # choose embedding and LLM providers
  assetchat index build         # embed the dataset
  assetchat chat                # start chatting`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

// SetInitializer registers the function that builds the services.
func SetInitializer(fn Initializer) {
	initializer = fn
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// setServices installs services directly.
func setServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	settingsService = s.Settings
	startRuntime = s.Start
	fileWatcher = s.Watcher
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show progress and debug output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.assetchat/config.toml)")
}

// Execute runs the root command. Commands stop when ctx is cancelled.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func initServices(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if initializer == nil {
		return nil
	}
	s, err := initializer(configPath)
	if err != nil {
		return fmt.Errorf("failed to initialise: %w", err)
	}
	setServices(s)
	return nil
}

// startApp starts the pipeline and reports startup failures with the
// stage that failed.
func startApp(cmd *cobra.Command, opts StartOptions) (Runtime, error) {
	if startRuntime == nil {
		return nil, errors.New("application not configured")
	}
	rt, err := startRuntime(cmd.Context(), opts)
	if err != nil {
		return nil, describeStartupError(err)
	}
	return rt, nil
}

// describeStartupError adds a hint for failures the user can fix.
func describeStartupError(err error) error {
	switch {
	case errors.Is(err, domain.ErrLoad):
		return fmt.Errorf("%w\nCheck the data directory with 'assetchat settings set data.dir <path>'", err)
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrLLMUnavailable):
		return fmt.Errorf("%w\nRun 'assetchat settings wizard' to fix", err)
	case errors.Is(err, domain.ErrIndexIncompatible):
		return fmt.Errorf("%w\nRun 'assetchat index build' to rebuild the index", err)
	default:
		return err
	}
}
