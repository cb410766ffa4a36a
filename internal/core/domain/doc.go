// Package domain defines the core business entities for Brahma.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A loaded file split into segments
//   - Chunk: A retrievable unit of text with its origin
//   - EngineConfig: An immutable description of the engine
//   - QueryResult: An answer with its cited sources
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
