// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - Normaliser: Extracts text from raw document bytes
//   - NormaliserRegistry: Selects the appropriate normaliser
//   - Fetcher: Retrieves a URL as a raw document
//   - EmbeddingService: Turns text into a fixed-length vector
//   - VectorStore: Persists embedding records and answers k-NN queries
//   - CollectionProvider: Opens or creates named collections
//   - LLMService: Completes or streams chat responses
//   - ConfigStore: Dot-notation key/value settings
//   - PromptStore: Prompt templates
//   - AIConfigValidator: Checks provider settings before they are saved
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or normaliser package
package driven
