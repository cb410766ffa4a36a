package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/brahma/internal/adapters/driving/watch"
	"github.com/custodia-labs/brahma/internal/core/domain"
)

var (
	watchDebounce    time.Duration
	watchSkipInitial bool
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the index when workspace documents change",
	Long: `Watch the workspace and rebuild the index after documents are added,
changed or removed. Changes are batched until the workspace has been quiet
for the debounce period.

The index is rebuilt once on start unless --skip-initial is given.
Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "quiet period before reindexing")
	watchCmd.Flags().BoolVar(&watchSkipInitial, "skip-initial", false, "do not reindex on start")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	engine, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}
	defer closeEngine(engine)

	printReport := func(report *domain.IndexReport, err error) {
		cmd.Printf("[%s] ", time.Now().Format("15:04:05"))
		if err != nil {
			cmd.Printf("Reindex failed: %v\n", err)
			if hint := Guidance(err); hint != "" {
				cmd.Printf("  Hint: %s\n", hint)
			}
			return
		}
		printIndexReport(cmd, report)
	}

	if !watchSkipInitial {
		printReport(engine.Reindex(cmd.Context()))
	}

	cfg := engine.Config()
	w := watch.New(engine, cfg,
		watch.WithDebounce(watchDebounce),
		watch.WithReportFunc(printReport),
	)

	cmd.Printf("Watching %s for changes (Ctrl+C to stop)\n", cfg.WorkspaceDir)
	return w.Run(cmd.Context())
}
