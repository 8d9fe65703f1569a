package domain

const unknownDescription = "Unknown"

// SearchMode defines how search operations combine retrieval methods.
type SearchMode string

// Available search modes.
const (
	// SearchModeKeyword uses only full-text keyword search.
	SearchModeKeyword SearchMode = "keyword"

	// SearchModeSemantic uses only vector similarity search.
	SearchModeSemantic SearchMode = "semantic"

	// SearchModeHybrid fuses keyword and semantic results.
	SearchModeHybrid SearchMode = "hybrid"
)

// IsValid returns true if the search mode is recognised.
func (m SearchMode) IsValid() bool {
	switch m {
	case SearchModeKeyword, SearchModeSemantic, SearchModeHybrid:
		return true
	default:
		return false
	}
}

// RequiresEmbedding returns true if this mode needs an embedding provider.
func (m SearchMode) RequiresEmbedding() bool {
	return m == SearchModeSemantic || m == SearchModeHybrid
}

// RequiresLLM returns true if this mode needs an LLM provider. Search
// itself never needs an LLM; none of the available modes require one.
func (m SearchMode) RequiresLLM() bool {
	return false
}

// RequiresKeywordEngine returns true if this mode needs a keyword engine.
func (m SearchMode) RequiresKeywordEngine() bool {
	return m == SearchModeKeyword || m == SearchModeHybrid
}

// String returns the string representation.
func (m SearchMode) String() string {
	return string(m)
}

// Description returns a human-readable description of the mode.
func (m SearchMode) Description() string {
	switch m {
	case SearchModeKeyword:
		return "Keyword (full-text search)"
	case SearchModeSemantic:
		return "Semantic (vector search)"
	case SearchModeHybrid:
		return "Hybrid (keyword + semantic, rank fusion)"
	default:
		return unknownDescription
	}
}

// AIProvider identifies an AI service provider for embeddings or LLM.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is the Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	default:
		return unknownDescription
	}
}

// VectorBackend identifies the vector index implementation.
type VectorBackend string

// Available vector backends.
const (
	// VectorBackendFlat is the exact brute-force index.
	VectorBackendFlat VectorBackend = "flat"

	// VectorBackendIVF is the inverted-file index with a k-means
	// coarse quantizer. Approximate, faster on large collections.
	VectorBackendIVF VectorBackend = "ivf"

	// VectorBackendHNSW is the native HNSWlib index (requires a CGO
	// build).
	VectorBackendHNSW VectorBackend = "hnsw"
)

// IsValid returns true if the backend is recognised.
func (b VectorBackend) IsValid() bool {
	switch b {
	case VectorBackendFlat, VectorBackendIVF, VectorBackendHNSW:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b VectorBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b VectorBackend) Description() string {
	switch b {
	case VectorBackendFlat:
		return "Flat (exact search, pure Go)"
	case VectorBackendIVF:
		return "IVF (approximate, k-means partitions, pure Go)"
	case VectorBackendHNSW:
		return "HNSW (native, requires CGO build)"
	default:
		return unknownDescription
	}
}

// AllVectorBackends returns all available vector backends.
func AllVectorBackends() []VectorBackend {
	return []VectorBackend{
		VectorBackendFlat,
		VectorBackendIVF,
		VectorBackendHNSW,
	}
}

// KeywordBackend identifies the full-text search implementation.
type KeywordBackend string

// Available keyword backends.
const (
	// KeywordBackendFTS5 uses the SQLite FTS5 extension.
	KeywordBackendFTS5 KeywordBackend = "fts5"

	// KeywordBackendXapian uses native Xapian with Danish stemming
	// (requires a CGO build).
	KeywordBackendXapian KeywordBackend = "xapian"
)

// IsValid returns true if the backend is recognised.
func (b KeywordBackend) IsValid() bool {
	switch b {
	case KeywordBackendFTS5, KeywordBackendXapian:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b KeywordBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b KeywordBackend) Description() string {
	switch b {
	case KeywordBackendFTS5:
		return "FTS5 (SQLite full-text, pure Go)"
	case KeywordBackendXapian:
		return "Xapian (native, Danish stemming, requires CGO build)"
	default:
		return unknownDescription
	}
}

// AllKeywordBackends returns all available keyword backends.
func AllKeywordBackends() []KeywordBackend {
	return []KeywordBackend{
		KeywordBackendFTS5,
		KeywordBackendXapian,
	}
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// Mode is the search retrieval mode.
	Mode SearchMode
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// RequestsPerMinute caps outgoing API calls. Zero disables the
	// limiter.
	RequestsPerMinute int

	// CacheEnabled stores embeddings on disk keyed by model and text,
	// so re-indexing unchanged documents costs no API calls.
	CacheEnabled bool
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI/Anthropic).
	APIKey string

	// RequestsPerMinute caps outgoing API calls. Zero disables the
	// limiter.
	RequestsPerMinute int
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// VectorIndexSettings holds vector index configuration.
type VectorIndexSettings struct {
	// Backend selects the index implementation.
	Backend VectorBackend

	// Dimensions is the embedding vector size.
	Dimensions int
}

// KeywordSettings holds keyword engine configuration.
type KeywordSettings struct {
	// Backend selects the full-text implementation.
	Backend KeywordBackend
}

// IndexingSettings holds the chunking pipeline configuration.
type IndexingSettings struct {
	// TargetChunkSize is the preferred chunk length in characters.
	// Per-type balancing targets are derived from it.
	TargetChunkSize int

	// MinChunkSize is the length below which chunks are merged with
	// neighbours from the same section.
	MinChunkSize int

	// ChunkOverlap is the overlap between adjacent generic chunks.
	ChunkOverlap int

	// LLMChunking enables LLM-driven chunk extraction for document
	// types that support it. Rule-based extraction is the fallback.
	LLMChunking bool

	// MaxSegmentSize bounds the text segments sent for LLM analysis.
	MaxSegmentSize int

	// Parallelism is the number of documents processed concurrently
	// during sync.
	Parallelism int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Search holds search behaviour settings.
	Search SearchSettings

	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// LLM holds LLM provider settings.
	LLM LLMSettings

	// VectorIndex holds vector index settings.
	VectorIndex VectorIndexSettings

	// Keyword holds keyword engine settings.
	Keyword KeywordSettings

	// Indexing holds chunking pipeline settings.
	Indexing IndexingSettings

	// ActiveCollection is the collection used when commands name none.
	ActiveCollection string
}

// DefaultAppSettings returns settings with sensible defaults.
// AI features (Embedding, LLM) are left unconfigured by default;
// users must set them up via settings before semantic search and
// question answering become available.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Search: SearchSettings{
			Mode: SearchModeHybrid,
		},
		Embedding: EmbeddingSettings{
			RequestsPerMinute: 60,
			CacheEnabled:      true,
		},
		LLM: LLMSettings{
			RequestsPerMinute: 20,
		},
		VectorIndex: VectorIndexSettings{
			Backend:    VectorBackendFlat,
			Dimensions: 1536, // text-embedding-3-small default
		},
		Keyword: KeywordSettings{
			Backend: KeywordBackendFTS5,
		},
		Indexing: IndexingSettings{
			TargetChunkSize: 1000,
			MinChunkSize:    250,
			ChunkOverlap:    200,
			LLMChunking:     false,
			MaxSegmentSize:  8000,
			Parallelism:     4,
		},
		ActiveCollection: DefaultCollectionName,
	}
}

// AllSearchModes returns all available search modes.
func AllSearchModes() []SearchMode {
	return []SearchMode{
		SearchModeKeyword,
		SearchModeSemantic,
		SearchModeHybrid,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can
// be added without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// DefaultPipelineConfig returns the default pipeline configuration.
// The chunker only acts on documents whose indexer produced no chunks;
// the remaining processors refine chunk metadata in order.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Processors: []string{"chunker", "balancer", "refnorm", "crossref", "legalstatus", "validator"},
		ProcessorConfigs: map[string]map[string]any{
			"chunker": {
				"chunk_size": 1000,
				"overlap":    200,
			},
			"balancer": {
				"target_size": 1000,
				"min_size":    250,
			},
		},
	}
}
