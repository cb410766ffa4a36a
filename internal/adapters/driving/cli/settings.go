package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change the workspace, index and model settings.

Environment variables (BRAHMA_WORKSPACE, BRAHMA_PROVIDER, BRAHMA_API_KEY, ...)
override the settings file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsProviderCmd = &cobra.Command{
	Use:   "provider <local|cloud>",
	Short: "Choose where answers are generated",
	Long: `Choose the answer provider.

Available providers:
  local - a model served by Ollama on this machine
  cloud - a hosted model (requires an API key)

When switching to cloud without --api-key, the key is read from the
terminal without echo; a blank entry keeps the stored key. Pass --keep-key
to reuse the stored key without a prompt. Otherwise the provider is set
without a key and questions fail until one is given. Stored vectors are
kept; only the answer model changes.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsProvider,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by key. Omit the value to restore the default.

Run 'brahma settings keys' to list the available keys.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the settable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var (
	providerAPIKey  string
	providerKeepKey bool
)

// stdinIsTerminal reports whether secrets can be prompted for.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func init() {
	settingsProviderCmd.Flags().StringVar(&providerAPIKey, "api-key", "", "API key for the cloud provider")
	settingsProviderCmd.Flags().BoolVar(&providerKeepKey, "keep-key", false, "Reuse the stored API key")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsProviderCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured
	}

	cfg, err := settingsService.Load()
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	llm := cfg.LLM()
	cmd.Println("[Answers]")
	cmd.Printf("  Provider: %s\n", cfg.Provider.Description())
	if cfg.Provider == domain.ProviderCloud {
		cmd.Printf("  Backend: %s\n", cfg.CloudBackend.Description())
	}
	cmd.Printf("  Model: %s\n", llm.Model)
	if llm.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", llm.BaseURL)
	}
	if cfg.Credential != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(cfg.Credential))
	} else {
		cmd.Printf("  API Key: (not set)\n")
	}
	cmd.Println()

	embedding := cfg.EmbeddingSettings()
	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", embedding.Model)
	if embedding.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", embedding.BaseURL)
	}
	if embedding.Provider.RequiresAPIKey() {
		if embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Workspace: %s\n", cfg.WorkspaceDir)
	cmd.Printf("  Directory: %s\n", cfg.IndexDir)
	cmd.Printf("  Recursive: %t\n", cfg.Recursive)
	cmd.Printf("  Exclude: %s\n", strings.Join(cfg.Exclude, ", "))
	cmd.Printf("  Top K: %d\n", cfg.TopK)
	cmd.Printf("  Chunk size: %d (overlap %d)\n", cfg.ChunkSize, cfg.ChunkOverlap)
	cmd.Printf("  Embedding batch: %d (%d workers)\n", cfg.EmbedBatchSize, cfg.EmbedWorkers)
	cmd.Println()

	cmd.Println("[Requests]")
	cmd.Printf("  Timeout: %s\n", cfg.RequestTimeout)
	cmd.Println()

	cmd.Printf("Settings file: %s\n", settingsService.Path())
	return nil
}

func runSettingsProvider(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured
	}

	provider := domain.Provider(strings.ToLower(strings.TrimSpace(args[0])))
	if !provider.IsValid() {
		return fmt.Errorf("%w: unknown provider %q (use local or cloud)", domain.ErrInvalidInput, args[0])
	}

	apiKey := strings.TrimSpace(providerAPIKey)
	if provider.RequiresCredential() && apiKey == "" {
		cfg, err := settingsService.Load()
		if err != nil {
			return err
		}
		switch {
		case providerKeepKey:
			apiKey = cfg.Credential
		case stdinIsTerminal():
			apiKey = promptAPIKey(cmd, cfg.Credential)
		}
	}

	engine, err := settingsService.Reconfigure(cmd.Context(), nil, provider, apiKey)
	if err != nil {
		return fmt.Errorf("failed to set provider: %w", err)
	}
	cfg := engine.Config()
	closeEngine(engine)

	cmd.Printf("Provider set to: %s\n", provider.Description())
	if provider.RequiresCredential() && cfg.Credential == "" {
		cmd.Println("\nNote: no API key is configured; questions will fail until one is set.")
		cmd.Println("Run 'brahma settings provider cloud --api-key <key>' (or --keep-key) or set BRAHMA_API_KEY.")
	}
	return nil
}

// promptAPIKey reads a key from the terminal. A blank entry returns stored.
func promptAPIKey(cmd *cobra.Command, stored string) string {
	if stored != "" {
		cmd.Print("Enter API key (leave blank to keep the stored key): ")
	} else {
		cmd.Print("Enter API key: ")
	}
	key := strings.TrimSpace(readPassword())
	cmd.Println()
	if key == "" {
		return stored
	}
	return key
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured
	}

	key := strings.TrimSpace(args[0])
	value := ""
	if len(args) > 1 {
		value = args[1]
	} else if isSecret(key) && stdinIsTerminal() {
		cmd.Printf("Enter value for %s: ", key)
		value = readPassword()
		cmd.Println()
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	switch {
	case strings.TrimSpace(value) == "":
		cmd.Printf("Reset %s to its default\n", key)
	case isSecret(key):
		cmd.Printf("Set %s = %s\n", key, maskAPIKey(value))
	default:
		cmd.Printf("Set %s = %s\n", key, strings.TrimSpace(value))
	}
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

// Helper functions.

// isSecret reports whether a settings key holds a credential.
func isSecret(key string) bool {
	return strings.HasSuffix(key, "api_key")
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
