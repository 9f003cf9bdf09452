package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/assetchat/internal/core/domain"
	"github.com/custodia-labs/assetchat/internal/logger"
)

var queryK int

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the document index",
	Long:  `Build, inspect and maintain the embedded document index.`,
}

var indexBuildCmd = &cobra.Command{
	Use:   "build",
	Short: "Embed the dataset into a fresh index",
	Long: `Loads every collection, synthesizes one document per record plus the
dataset summaries, embeds them and saves the index.

Run this after changing the embedding provider or the data directory.`,
	RunE: runIndexBuild,
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index statistics",
	RunE:  runIndexStats,
}

var indexQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Show the records retrieved for a text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runIndexQuery,
}

var indexWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the index when the data changes",
	Long: `Watches the data directory and rebuilds the index whenever a
collection file changes. Runs until interrupted.`,
	RunE: runIndexWatch,
}

func init() {
	indexQueryCmd.Flags().IntVarP(&queryK, "k", "k", 10, "number of records to show")
	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexStatsCmd)
	indexCmd.AddCommand(indexQueryCmd)
	indexCmd.AddCommand(indexWatchCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexBuild(cmd *cobra.Command, _ []string) error {
	rt, err := startApp(cmd, StartOptions{SkipChat: true, Rebuild: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	cmd.Println("Index built.")
	printStats(cmd, rt.Index().Stats())
	return nil
}

func runIndexStats(cmd *cobra.Command, _ []string) error {
	rt, err := startApp(cmd, StartOptions{SkipChat: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	printStats(cmd, rt.Index().Stats())
	return nil
}

func runIndexQuery(cmd *cobra.Command, args []string) error {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return errors.New("query is empty")
	}

	rt, err := startApp(cmd, StartOptions{SkipChat: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	results, err := rt.Index().Query(cmd.Context(), text, queryK)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(results) == 0 {
		cmd.Println("No records found.")
		return nil
	}

	for i, r := range results {
		cmd.Printf("%d. [%.3f] %s %s\n", i+1, r.Similarity, r.Document.Type, r.Document.Key)
		cmd.Printf("   %s\n", firstLine(r.Document.Text, 100))
	}
	return nil
}

func runIndexWatch(cmd *cobra.Command, _ []string) error {
	if fileWatcher == nil {
		return errors.New("file watcher not configured")
	}

	rt, err := startApp(cmd, StartOptions{SkipChat: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := cmd.Context()
	events, err := fileWatcher.Watch(ctx, rt.DataDir())
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", rt.DataDir(), err)
	}

	cmd.Printf("Watching %s (%d documents indexed)\n", rt.DataDir(), rt.Index().Stats().Documents)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			logger.Info("Data changed: %s", strings.Join(ev.Files, ", "))
			if err := rt.Reload(ctx); err != nil {
				logger.Warn("Reload failed, keeping the previous index: %v", err)
				continue
			}
			cmd.Printf("Reindexed %d documents\n", rt.Index().Stats().Documents)
		}
	}
}

func printStats(cmd *cobra.Command, stats domain.IndexStats) {
	cmd.Printf("  Documents: %d\n", stats.Documents)
	cmd.Printf("  Dimensions: %d\n", stats.Dimensions)
	cmd.Printf("  Model: %s\n", stats.Model)
	cmd.Printf("  Fingerprint: %s\n", stats.Fingerprint)
}

// firstLine returns the first line of s, cut to n runes.
func firstLine(s string, n int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	r := []rune(s)
	if len(r) > n {
		return string(r[:n]) + "..."
	}
	return s
}
