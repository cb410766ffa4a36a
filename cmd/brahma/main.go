// Command brahma answers questions about the documents in a workspace.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/brahma/internal/adapters/driven/ai"
	"github.com/custodia-labs/brahma/internal/adapters/driven/config/file"
	"github.com/custodia-labs/brahma/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/brahma/internal/adapters/driving/cli"
	"github.com/custodia-labs/brahma/internal/core/services"
	"github.com/custodia-labs/brahma/internal/loaders"
	"github.com/custodia-labs/brahma/internal/logger"
	"github.com/custodia-labs/brahma/internal/postprocessors"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// envConfigDir overrides the settings directory (default ~/.brahma).
const envConfigDir = "BRAHMA_CONFIG_DIR"

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is normal.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to load .env: %v", err)
	}

	svc, err := newServices()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}

	cli.SetVersion(version)
	cli.SetServices(svc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.Execute(ctx)
}

// newServices wires the driven adapters into the core services.
func newServices() (cli.Services, error) {
	configDir := os.Getenv(envConfigDir)
	if configDir == "" {
		dir, err := file.DefaultConfigDir()
		if err != nil {
			return cli.Services{}, err
		}
		configDir = dir
	}

	store, err := file.NewConfigStore(configDir)
	if err != nil {
		return cli.Services{}, fmt.Errorf("opening settings: %w", err)
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return cli.Services{}, fmt.Errorf("opening prompts: %w", err)
	}

	builder := services.NewEngineBuilder(services.EngineDeps{
		NewEmbedder: ai.NewEmbedder,
		NewLLM:      ai.NewLLM,
		OpenIndex:   sqlite.Open,
		Loaders:     loaders.NewDefaultRegistry(),
		NewPipeline: postprocessors.NewDefaultPipeline,
		Prompts:     prompts,
	})

	settingsService := services.NewSettingsService(store, builder,
		services.WithAIValidator(ai.NewConfigValidator()),
	)

	return cli.Services{Settings: settingsService, Engines: builder}, nil
}
