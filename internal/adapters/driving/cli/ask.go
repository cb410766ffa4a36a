package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

var (
	askJSON bool
	askTopK int
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Answer a question from the indexed documents",
	Long: `Answer a question using only the indexed documents, citing the files
(and pages) the answer was drawn from.

Examples:
  brahma ask "What was the Q3 revenue?"
  brahma ask --json -k 8 who signed the lease`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the answer as JSON")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of passages to retrieve (0 = use settings)")
	rootCmd.AddCommand(askCmd)
}

// askOutput is the JSON form of an answer.
type askOutput struct {
	Question  string   `json:"question"`
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	Degraded  bool     `json:"degraded"`
	ElapsedMS int64    `json:"elapsed_ms"`
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("%w: question is empty", domain.ErrInvalidInput)
	}
	if askTopK < 0 {
		return fmt.Errorf("%w: --top-k must not be negative", domain.ErrInvalidInput)
	}

	engine, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer closeEngine(engine)

	var result *domain.QueryResult
	if a, ok := engine.(answerer); ok && askTopK > 0 {
		result, err = a.Answer(cmd.Context(), question, askTopK)
	} else {
		result, err = engine.AnswerQuestion(cmd.Context(), question)
	}
	if err != nil {
		return err
	}

	if askJSON {
		out := askOutput{
			Question:  question,
			Answer:    result.Answer,
			Sources:   make([]string, len(result.Sources)),
			Degraded:  result.Degraded,
			ElapsedMS: result.Elapsed.Milliseconds(),
		}
		for i, src := range result.Sources {
			out.Sources[i] = src.String()
		}
		return printJSON(cmd, out)
	}

	cmd.Println(result.Answer)
	if len(result.Sources) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, src := range result.Sources {
			cmd.Printf("  - %s\n", src)
		}
	}
	if result.Degraded {
		cmd.Println()
		cmd.Println("(the answer was not found in your documents)")
	}
	cmd.Printf("\nanswered in %.2fs\n", result.Elapsed.Seconds())
	return nil
}
