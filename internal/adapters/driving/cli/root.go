// Package cli implements the brahma command line.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/brahma/internal/core/domain"
	"github.com/custodia-labs/brahma/internal/core/ports/driving"
	"github.com/custodia-labs/brahma/internal/logger"
)

// envVerbose enables debug logging when set to a truthy value.
const envVerbose = "BRAHMA_VERBOSE"

var (
	version = "dev"
	verbose bool

	settingsService driving.SettingsService
	engineFactory   driving.EngineFactory
)

// errNotConfigured is returned when main has not wired the services.
var errNotConfigured = errors.New("services not configured")

// Services holds the core services the commands drive.
type Services struct {
	Settings driving.SettingsService
	Engines  driving.EngineFactory
}

// SetServices wires the core services into the commands.
func SetServices(s Services) {
	settingsService = s.Settings
	engineFactory = s.Engines
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

var rootCmd = &cobra.Command{
	Use:   "brahma",
	Short: "Ask questions about your local documents",
	Long: `Brahma indexes the documents in a workspace directory and answers
questions about them with source citations.

Answers come from a local model (Ollama) or a cloud model (API key required).
Build the index with 'brahma index', then ask with 'brahma ask' or open the
interactive chat with 'brahma chat'.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose || envEnabled(os.Getenv(envVerbose)))
	},
}

func init() {
	rootCmd.SetOut(os.Stdout)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command and prints any error with guidance.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		rootCmd.PrintErrln("Error:", err)
		if hint := Guidance(err); hint != "" {
			rootCmd.PrintErrln("Hint:", hint)
		}
	}
	return err
}

// openEngine loads the current settings and builds an engine from them.
// The caller owns the returned engine.
func openEngine(ctx context.Context) (driving.Engine, error) {
	if settingsService == nil || engineFactory == nil {
		return nil, errNotConfigured
	}
	cfg, err := settingsService.Load()
	if err != nil {
		return nil, err
	}
	return engineFactory.Build(ctx, cfg)
}

// closeEngine closes e, logging rather than returning a failure.
func closeEngine(e driving.Engine) {
	if err := e.Close(); err != nil {
		logger.Warn("Failed to close engine: %v", err)
	}
}

// answerer is implemented by engines that accept a per-question top-k.
type answerer interface {
	Answer(ctx context.Context, question string, k int) (*domain.QueryResult, error)
}

// checker is implemented by settings services that can ping the backends.
type checker interface {
	Check(cfg domain.EngineConfig) error
}

func envEnabled(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// printJSON writes v as indented JSON.
func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
