package domain

import "time"

// IndexManifest describes a persisted index.
// Its presence on disk is what marks an index as ready.
type IndexManifest struct {
	// Model is the embedding model that produced the stored vectors.
	Model string `json:"model"`

	// Dimensions is the vector size.
	Dimensions int `json:"dimensions"`

	// Chunks is the number of stored chunks.
	Chunks int `json:"chunks"`

	// Documents is the number of documents the chunks came from.
	Documents int `json:"documents"`

	// BuiltAt is when the index was last replaced.
	BuiltAt time.Time `json:"built_at"`
}

// IndexReport summarises a reindex run.
type IndexReport struct {
	// Files is the number of candidate files found in the workspace.
	Files int

	// Documents is the number of documents successfully loaded.
	Documents int

	// Segments is the number of units loaded from those documents.
	Segments int

	// Chunks is the number of chunks now stored in the index.
	Chunks int

	// Skipped is the number of files that failed to load.
	Skipped int

	// SkippedFiles details each failed file.
	SkippedFiles []LoadError

	// Embedded is the number of chunks sent to the embedding backend.
	Embedded int

	// Reused is the number of chunks whose stored vectors were kept.
	Reused int

	// Elapsed is the wall time of the run.
	Elapsed time.Duration
}

// IndexStatus describes the current state of the index.
type IndexStatus struct {
	// Ready is true when a persisted index exists.
	Ready bool

	// Manifest is the persisted manifest, nil when not ready.
	Manifest *IndexManifest

	// Config is the configuration of the engine reporting the status.
	Config EngineConfig
}
