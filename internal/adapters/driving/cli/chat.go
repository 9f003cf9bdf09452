package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/assetchat/internal/adapters/driving/tui"
)

// runTUI starts the program; replaced in tests.
var runTUI = func(app *tui.App) error {
	return app.Run()
}

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat",
	Long: `Launch the interactive chat terminal UI.

Controls:
  enter       Ask the question
  pgup/pgdn   Scroll the conversation
  ctrl+r      Clear the conversation
  esc         Back to the menu
  ctrl+c      Quit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	rt, err := startApp(cmd, StartOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	if !rt.LLMAvailable() {
		cmd.PrintErrln("No language model configured: only work order lookups will be answered.")
	}

	app, err := tui.NewApp(&tui.Ports{
		Sessions: rt.Sessions(),
		Index:    rt.Index(),
		Mode:     rt.Chat().Mode(),
	})
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	if err := runTUI(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
