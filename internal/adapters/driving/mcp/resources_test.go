package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/brahma/internal/core/domain"
)

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleStatusResource(t *testing.T) {
	ctx := context.Background()

	t.Run("ready index", func(t *testing.T) {
		cfg := domain.DefaultEngineConfig("/work").WithProvider(domain.ProviderCloud, "sk-secret")
		built := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		engine := &mockEngine{status: &domain.IndexStatus{
			Ready:    true,
			Manifest: &domain.IndexManifest{Model: "nomic-embed-text", Dimensions: 768, Chunks: 40, Documents: 4, BuiltAt: built},
			Config:   cfg,
		}}
		server, err := NewServer(&Ports{Engine: engine})
		require.NoError(t, err)

		result, err := server.handleStatusResource(ctx, makeReadResourceRequest(statusURI))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, statusURI, result.Contents[0].URI)
		assert.Equal(t, "application/json", result.Contents[0].MIMEType)
		assert.NotContains(t, result.Contents[0].Text, "sk-secret")

		var info statusInfo
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &info))
		assert.True(t, info.Ready)
		assert.Equal(t, "cloud", info.Provider)
		assert.Equal(t, 40, info.Chunks)
		assert.Equal(t, "nomic-embed-text", info.Model)
		require.NotNil(t, info.BuiltAt)
		assert.True(t, built.Equal(*info.BuiltAt))
	})

	t.Run("no index yet", func(t *testing.T) {
		engine := &mockEngine{status: &domain.IndexStatus{Config: domain.DefaultEngineConfig("/work")}}
		server, err := NewServer(&Ports{Engine: engine})
		require.NoError(t, err)

		result, err := server.handleStatusResource(ctx, makeReadResourceRequest(statusURI))

		require.NoError(t, err)
		var info statusInfo
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &info))
		assert.False(t, info.Ready)
		assert.Nil(t, info.BuiltAt)
		assert.Zero(t, info.Chunks)
	})

	t.Run("status error", func(t *testing.T) {
		server, err := NewServer(&Ports{Engine: &mockEngine{err: errors.New("disk on fire")}})
		require.NoError(t, err)

		_, err = server.handleStatusResource(ctx, makeReadResourceRequest(statusURI))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk on fire")
	})
}
