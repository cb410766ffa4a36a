package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

var indexJSON bool

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the index from the workspace documents",
	Long: `Load every supported document in the workspace, split it into chunks,
embed the chunks and replace the index.

Unchanged chunks reuse their stored vectors. Files that fail to load are
reported and skipped. If no documents are found the existing index is kept.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

func init() {
	indexCmd.Flags().BoolVar(&indexJSON, "json", false, "print the report as JSON")
	rootCmd.AddCommand(indexCmd)
}

// indexOutput is the JSON form of an index report.
type indexOutput struct {
	Files        int      `json:"files"`
	Documents    int      `json:"documents"`
	Segments     int      `json:"segments"`
	Chunks       int      `json:"chunks"`
	Embedded     int      `json:"embedded"`
	Reused       int      `json:"reused"`
	Skipped      int      `json:"skipped"`
	SkippedFiles []string `json:"skipped_files,omitempty"`
	ElapsedMS    int64    `json:"elapsed_ms"`
}

func runIndex(cmd *cobra.Command, _ []string) error {
	engine, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer closeEngine(engine)

	if !indexJSON {
		cmd.Printf("Indexing %s\n", engine.Config().WorkspaceDir)
	}

	report, err := engine.Reindex(cmd.Context())
	if err != nil {
		return err
	}

	if indexJSON {
		return printJSON(cmd, toIndexOutput(report))
	}
	printIndexReport(cmd, report)
	return nil
}

func toIndexOutput(report *domain.IndexReport) indexOutput {
	out := indexOutput{
		Files:     report.Files,
		Documents: report.Documents,
		Segments:  report.Segments,
		Chunks:    report.Chunks,
		Embedded:  report.Embedded,
		Reused:    report.Reused,
		Skipped:   report.Skipped,
		ElapsedMS: report.Elapsed.Milliseconds(),
	}
	for _, skipped := range report.SkippedFiles {
		out.SkippedFiles = append(out.SkippedFiles, skipped.Error())
	}
	return out
}

func printIndexReport(cmd *cobra.Command, report *domain.IndexReport) {
	if report.Documents == 0 {
		cmd.Println("No documents found; the index was left unchanged.")
	} else {
		cmd.Printf("Indexed %d chunks from %d documents (%d segments) in %.1fs\n",
			report.Chunks, report.Documents, report.Segments, report.Elapsed.Seconds())
		cmd.Printf("  Embedded: %d, reused: %d\n", report.Embedded, report.Reused)
	}

	if len(report.SkippedFiles) > 0 {
		cmd.Printf("Skipped %d files:\n", len(report.SkippedFiles))
		for _, skipped := range report.SkippedFiles {
			cmd.Printf("  %s\n", skipped.Error())
		}
	}
}
