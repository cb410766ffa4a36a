package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/brahma/internal/adapters/driving/tui"
)

// chatCmd represents the chat command.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Launch the interactive chat",
	Long: `Launch the interactive terminal chat.

Ask questions about your documents and see the cited sources and the time
each answer took.

Commands:
  /reindex                      - Rebuild the index
  /provider <local|cloud> [key] - Switch the answer provider
  /status                       - Show the index status
  /clear                        - Clear the conversation
  /help                         - Toggle help
  /quit                         - Exit

Controls:
  Enter          - Ask
  Ctrl+R         - Rebuild the index
  PgUp/PgDn      - Scroll the conversation
  Ctrl+L         - Clear the conversation
  F1             - Toggle help
  Ctrl+C         - Quit`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	engine, err := openEngine(cmd.Context())
	if err != nil {
		return err
	}

	ports := tui.NewPorts(engine, settingsService)
	ports.Guidance = Guidance

	app, err := tui.NewApp(ports)
	if err != nil {
		closeEngine(engine)
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())

	// The chat may have swapped engines after a provider change.
	defer func() {
		if current := app.Engine(); current != nil {
			closeEngine(current)
		}
	}()

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
