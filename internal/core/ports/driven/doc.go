// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - RecordSource: Loads the dataset collections from disk
//   - EmbeddingService: Turns document and question text into vectors
//   - VectorIndex: In-memory similarity search over document vectors
//   - IndexStore: Persists built indexes between runs (SQLite)
//   - ConfigStore: Application configuration
//   - PromptStore: Answer prompt templates
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - LLMService: Without it, only deterministic lookups are answered.
//   - FileWatcher: Only used by long-running index maintenance.
//   - CorpusPreparer: Implemented by embedders fitted to a corpus before use.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
