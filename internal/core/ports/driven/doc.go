// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - Connector: Fetches documents from a data source
//   - ConnectorFactory: Creates connectors from configuration
//   - Normaliser: Extracts text from raw documents
//   - NormaliserRegistry: Selects the appropriate normaliser
//   - Indexer: Chunks a document according to its legal type
//   - IndexerRegistry: Selects the appropriate indexer
//   - DocumentStore: Document and chunk persistence
//   - CollectionStore: Collection persistence
//   - SourceStore: Source configuration persistence
//   - SyncStateStore: Sync progress persistence
//   - ExclusionStore: Document exclusion persistence
//   - ConfigStore: Application configuration
//   - SearchEngine: Full-text keyword search (FTS5 or Xapian)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - VectorIndex: Vector storage/search. Only enabled when
//     EmbeddingService is configured.
//   - EmbeddingService: Generates vector embeddings. Without it,
//     semantic search is disabled.
//   - LLMService: Language model operations. Without it, context
//     analysis and chunk extraction fall back to rule-based logic, and
//     question answering is disabled.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, indexer or normaliser package
package driven
