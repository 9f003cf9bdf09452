package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/assetchat/internal/core/domain"
	"github.com/custodia-labs/assetchat/internal/logger"
)

var (
	askK           int
	askTemperature float64
	askMaxTokens   int
	askJSON        bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a single question",
	Long: `Answers one question about the dataset and exits.

Questions about an asset's work orders ("work orders for asset MPT-001")
and about open work orders are answered straight from the data. Everything
else is answered by the language model from the most relevant records.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askK, "k", "k", 0, "number of records to retrieve (default from settings)")
	askCmd.Flags().Float64Var(&askTemperature, "temperature", 0, "sampling temperature (default from settings)")
	askCmd.Flags().IntVar(&askMaxTokens, "max-tokens", 0, "maximum answer length in tokens (default from settings)")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

type askResult struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Mode     string `json:"mode"`
	Error    string `json:"error,omitempty"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return errors.New("question is empty")
	}

	rt, err := startApp(cmd, StartOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	chat := rt.Chat()
	opts := domain.AnswerOptions{K: askK, Temperature: askTemperature, MaxTokens: askMaxTokens}
	answer, askErr := chat.Answer(cmd.Context(), question, nil, opts)
	if askErr != nil {
		logger.Warn("Question failed: %v", askErr)
	}

	if askJSON {
		res := askResult{Question: question, Answer: answer, Mode: string(chat.Mode())}
		if askErr != nil {
			res.Error = askErr.Error()
		}
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal answer: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(answer)
	return nil
}
