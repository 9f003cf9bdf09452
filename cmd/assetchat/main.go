// Command assetchat answers questions about asset maintenance data.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/assetchat/internal/adapters/driven/ai"
	"github.com/custodia-labs/assetchat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/assetchat/internal/adapters/driven/filewatcher"
	"github.com/custodia-labs/assetchat/internal/adapters/driven/records/jsonfile"
	"github.com/custodia-labs/assetchat/internal/adapters/driving/cli"
	"github.com/custodia-labs/assetchat/internal/app"
	"github.com/custodia-labs/assetchat/internal/core/ports/driven"
	"github.com/custodia-labs/assetchat/internal/core/services"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	// API keys may come from a .env file in the working directory.
	_ = godotenv.Load()

	cli.SetVersion(version)
	cli.SetInitializer(initialize)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cli.Execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// initialize wires the driven adapters behind the CLI.
func initialize(configPath string) (*cli.Services, error) {
	var (
		configStore *file.ConfigStore
		promptDir   string
		err         error
	)
	if configPath != "" {
		configStore, err = file.NewConfigStoreAt(configPath)
		promptDir = filepath.Join(filepath.Dir(configPath), "prompts")
	} else {
		configStore, err = file.NewConfigStore("")
	}
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())

	start := func(ctx context.Context, opts cli.StartOptions) (cli.Runtime, error) {
		settings, err := settingsService.Get()
		if err != nil {
			return nil, fmt.Errorf("read settings: %w", err)
		}

		var prompts driven.PromptStore
		if !opts.SkipChat {
			store, err := file.NewPromptStore(promptDir)
			if err != nil {
				return nil, fmt.Errorf("open prompts: %w", err)
			}
			prompts = store
		}

		a, err := app.New(ctx, app.Options{
			Settings: settings,
			Prompts:  prompts,
			SkipLLM:  opts.SkipLLM,
			SkipChat: opts.SkipChat,
			Rebuild:  opts.Rebuild,
		})
		if err != nil {
			return nil, err
		}
		return a, nil
	}

	return &cli.Services{
		Settings: settingsService,
		Start:    start,
		Watcher:  filewatcher.New(filewatcher.Config{Files: jsonfile.WatchedFiles()}),
	}, nil
}
