// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - Loader: Reads one file format into text segments
//   - LoaderRegistry: Selects the loader for a file
//   - PostProcessor: Turns a loaded document into chunks
//   - EmbeddingService: Maps text to vectors
//   - VectorIndex: Persists chunks and answers nearest-neighbour queries
//   - VectorIndexOpener: Attaches to a persisted index directory
//   - LLMService: Generates answers from a prompt
//   - ConfigStore: Application configuration
//   - PromptStore: Editable prompt templates
//
// # Import Rules
//
//   - Can Import: domain, standard library
//   - Cannot Import: services, adapters
package driven
