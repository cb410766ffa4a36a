package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

var (
	statusJSON  bool
	statusCheck bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the index and provider status",
	Long: `Show whether an index has been built, how large it is and which provider
answers questions.

Use --check to also contact the embedding and answer backends.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print the status as JSON")
	statusCmd.Flags().BoolVar(&statusCheck, "check", false, "ping the configured model backends")
	rootCmd.AddCommand(statusCmd)
}

// statusOutput is the JSON form of the index status. It never includes
// credentials.
type statusOutput struct {
	Ready          bool                  `json:"ready"`
	Provider       string                `json:"provider"`
	Model          string                `json:"model"`
	EmbeddingModel string                `json:"embedding_model"`
	Workspace      string                `json:"workspace"`
	IndexDir       string                `json:"index_dir"`
	Manifest       *domain.IndexManifest `json:"manifest,omitempty"`
	Check          string                `json:"check,omitempty"`
}

func runStatus(cmd *cobra.Command, _ []string) error {
	engine, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer closeEngine(engine)

	status, err := engine.Status(cmd.Context())
	if err != nil {
		return err
	}
	cfg := status.Config

	var checkErr error
	checked := false
	if statusCheck {
		if c, ok := settingsService.(checker); ok {
			checkErr = c.Check(cfg)
			checked = true
		}
	}

	if statusJSON {
		out := statusOutput{
			Ready:          status.Ready,
			Provider:       cfg.Provider.String(),
			Model:          cfg.LLM().Model,
			EmbeddingModel: cfg.EmbeddingSettings().Model,
			Workspace:      cfg.WorkspaceDir,
			IndexDir:       cfg.IndexDir,
			Manifest:       status.Manifest,
		}
		if checked {
			out.Check = "ok"
			if checkErr != nil {
				out.Check = checkErr.Error()
			}
		}
		if err := printJSON(cmd, out); err != nil {
			return err
		}
		return checkErr
	}

	cmd.Printf("Workspace: %s\n", cfg.WorkspaceDir)
	cmd.Printf("Index:     %s\n", cfg.IndexDir)
	cmd.Printf("Provider:  %s (%s)\n", cfg.Provider.Description(), cfg.LLM().Model)
	cmd.Printf("Embedding: %s (%s)\n", cfg.Embedding.Provider.Description(), cfg.EmbeddingSettings().Model)
	cmd.Println()

	if m := status.Manifest; status.Ready && m != nil {
		cmd.Println("Index is ready")
		cmd.Printf("  Chunks:    %d from %d documents\n", m.Chunks, m.Documents)
		cmd.Printf("  Model:     %s (%d dimensions)\n", m.Model, m.Dimensions)
		cmd.Printf("  Built at:  %s\n", m.BuiltAt.Local().Format("2006-01-02 15:04:05"))
	} else {
		cmd.Println("No index found. Run 'brahma index' to build one.")
	}

	if checked {
		cmd.Println()
		if checkErr != nil {
			cmd.Printf("Backend check: FAILED\n")
			return fmt.Errorf("backend check: %w", checkErr)
		}
		cmd.Println("Backend check: OK")
	}
	return nil
}
