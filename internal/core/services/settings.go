package services

import (
	"context"
	"fmt"
	"time"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
	"github.com/lovbase/paragraf/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keySearchMode       = "search.mode"
	keyEmbedProvider    = "embedding.provider"
	keyEmbedModel       = "embedding.model"
	keyEmbedBaseURL     = "embedding.base_url"
	keyEmbedAPIKey      = "embedding.api_key"
	keyEmbedRPM         = "embedding.requests_per_minute"
	keyEmbedCache       = "embedding.cache_enabled"
	keyLLMProvider      = "llm.provider"
	keyLLMModel         = "llm.model"
	keyLLMBaseURL       = "llm.base_url"
	keyLLMAPIKey        = "llm.api_key"
	keyLLMRPM           = "llm.requests_per_minute"
	keyVectorBackend    = "vector_index.backend"
	keyVectorDims       = "vector_index.dimensions"
	keyKeywordBackend   = "keyword.backend"
	keyIndexTargetSize  = "indexing.target_chunk_size"
	keyIndexMinSize     = "indexing.min_chunk_size"
	keyIndexOverlap     = "indexing.chunk_overlap"
	keyIndexLLMChunking = "indexing.llm_chunking"
	keyIndexMaxSegment  = "indexing.max_segment_size"
	keyIndexParallelism = "indexing.parallelism"
	keyActiveCollection = "collection.active"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Search: domain.SearchSettings{
			Mode: s.getSearchMode(defaults.Search.Mode),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			Model:             s.configStore.GetString(keyEmbedModel, defaults.Embedding.Model),
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL, ""), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey, ""),
			RequestsPerMinute: s.configStore.GetInt(keyEmbedRPM, defaults.Embedding.RequestsPerMinute),
			CacheEnabled:      s.configStore.GetBool(keyEmbedCache, defaults.Embedding.CacheEnabled),
		},
		LLM: domain.LLMSettings{
			Provider:          s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:             s.configStore.GetString(keyLLMModel, defaults.LLM.Model),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL, ""), // No default - empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyLLMAPIKey, ""),
			RequestsPerMinute: s.configStore.GetInt(keyLLMRPM, defaults.LLM.RequestsPerMinute),
		},
		VectorIndex: domain.VectorIndexSettings{
			Backend:    s.getVectorBackend(defaults.VectorIndex.Backend),
			Dimensions: s.configStore.GetInt(keyVectorDims, defaults.VectorIndex.Dimensions),
		},
		Keyword: domain.KeywordSettings{
			Backend: s.getKeywordBackend(defaults.Keyword.Backend),
		},
		Indexing:         s.GetIndexingConfig(),
		ActiveCollection: s.configStore.GetString(keyActiveCollection, defaults.ActiveCollection),
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	s.configStore.Set(keySearchMode, settings.Search.Mode.String())

	s.configStore.Set(keyEmbedProvider, settings.Embedding.Provider.String())
	s.configStore.Set(keyEmbedModel, settings.Embedding.Model)
	s.configStore.Set(keyEmbedBaseURL, settings.Embedding.BaseURL)
	if settings.Embedding.APIKey != "" {
		s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey)
	}
	s.configStore.Set(keyEmbedRPM, settings.Embedding.RequestsPerMinute)
	s.configStore.Set(keyEmbedCache, settings.Embedding.CacheEnabled)

	s.configStore.Set(keyLLMProvider, settings.LLM.Provider.String())
	s.configStore.Set(keyLLMModel, settings.LLM.Model)
	s.configStore.Set(keyLLMBaseURL, settings.LLM.BaseURL)
	if settings.LLM.APIKey != "" {
		s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey)
	}
	s.configStore.Set(keyLLMRPM, settings.LLM.RequestsPerMinute)

	s.configStore.Set(keyVectorBackend, settings.VectorIndex.Backend.String())
	s.configStore.Set(keyVectorDims, settings.VectorIndex.Dimensions)
	s.configStore.Set(keyKeywordBackend, settings.Keyword.Backend.String())

	s.configStore.Set(keyIndexTargetSize, settings.Indexing.TargetChunkSize)
	s.configStore.Set(keyIndexMinSize, settings.Indexing.MinChunkSize)
	s.configStore.Set(keyIndexOverlap, settings.Indexing.ChunkOverlap)
	s.configStore.Set(keyIndexLLMChunking, settings.Indexing.LLMChunking)
	s.configStore.Set(keyIndexMaxSegment, settings.Indexing.MaxSegmentSize)
	s.configStore.Set(keyIndexParallelism, settings.Indexing.Parallelism)

	if settings.ActiveCollection != "" {
		s.configStore.Set(keyActiveCollection, settings.ActiveCollection)
	}

	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SetSearchMode updates the search mode.
func (s *SettingsService) SetSearchMode(mode domain.SearchMode) error {
	if !mode.IsValid() {
		return fmt.Errorf("invalid search mode: %s", mode)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Search.Mode = mode
	return s.Save(settings)
}

// SetEmbeddingProvider configures the embedding provider.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider: %s", provider)
	}

	// Validate provider supports embeddings
	validProviders := domain.AllEmbeddingProviders()
	valid := false
	for _, p := range validProviders {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.Embedding.Model = model
	} else {
		defaults := domain.DefaultEmbeddingModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.Embedding.Model = defaultModel
		}
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.Embedding.BaseURL == "" {
			settings.Embedding.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.Embedding.BaseURL = ""
	}

	// Set API key
	settings.Embedding.APIKey = apiKey

	// Update vector dimensions based on model
	dims := domain.EmbeddingDimensions()
	if d, ok := dims[settings.Embedding.Model]; ok {
		settings.VectorIndex.Dimensions = d
	}

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else {
		defaults := domain.DefaultLLMModels()
		if defaultModel, ok := defaults[provider]; ok {
			settings.LLM.Model = defaultModel
		}
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		// Local providers need a base URL
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		// Cloud providers don't need a custom base URL
		settings.LLM.BaseURL = ""
	}

	// Set API key
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// Validate checks if current settings are valid for the configured mode.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	// Validate search mode
	if !settings.Search.Mode.IsValid() {
		return fmt.Errorf("invalid search mode: %s", settings.Search.Mode)
	}

	// Check embedding configuration if required
	if settings.Search.Mode.RequiresEmbedding() {
		if !settings.Embedding.IsConfigured() {
			return fmt.Errorf(
				"search mode %q requires embedding provider to be configured",
				settings.Search.Mode.Description(),
			)
		}
	}

	return nil
}

// RequiresEmbedding returns true if current mode needs embedding.
func (s *SettingsService) RequiresEmbedding() bool {
	settings, err := s.Get()
	if err != nil {
		return false
	}
	return settings.Search.Mode.RequiresEmbedding()
}

// RequiresLLM returns true if question answering is available, i.e.
// the LLM provider is configured. Search itself never needs an LLM.
func (s *SettingsService) RequiresLLM() bool {
	settings, err := s.Get()
	if err != nil {
		return false
	}
	return settings.LLM.IsConfigured()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(context.Background(), &settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(context.Background(), &settings.LLM)
}

// Helper methods for reading enum-valued config keys.

func (s *SettingsService) getSearchMode(defaultVal domain.SearchMode) domain.SearchMode {
	mode := domain.SearchMode(s.configStore.GetString(keySearchMode, ""))
	if !mode.IsValid() {
		return defaultVal
	}
	return mode
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key, ""))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getVectorBackend(defaultVal domain.VectorBackend) domain.VectorBackend {
	backend := domain.VectorBackend(s.configStore.GetString(keyVectorBackend, ""))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

func (s *SettingsService) getKeywordBackend(defaultVal domain.KeywordBackend) domain.KeywordBackend {
	backend := domain.KeywordBackend(s.configStore.GetString(keyKeywordBackend, ""))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}

// GetIndexingConfig returns the chunking pipeline settings.
func (s *SettingsService) GetIndexingConfig() domain.IndexingSettings {
	defaults := domain.DefaultAppSettings().Indexing

	return domain.IndexingSettings{
		TargetChunkSize: s.configStore.GetInt(keyIndexTargetSize, defaults.TargetChunkSize),
		MinChunkSize:    s.configStore.GetInt(keyIndexMinSize, defaults.MinChunkSize),
		ChunkOverlap:    s.configStore.GetInt(keyIndexOverlap, defaults.ChunkOverlap),
		LLMChunking:     s.configStore.GetBool(keyIndexLLMChunking, defaults.LLMChunking),
		MaxSegmentSize:  s.configStore.GetInt(keyIndexMaxSegment, defaults.MaxSegmentSize),
		Parallelism:     s.configStore.GetInt(keyIndexParallelism, defaults.Parallelism),
	}
}

// GetPipelineConfig returns the post-processor pipeline configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetPipelineConfig() domain.PipelineConfig {
	defaults := domain.DefaultPipelineConfig()

	// Try to load processors list from config
	if processors := s.configStore.GetStringSlice("pipeline.processors"); len(processors) > 0 {
		defaults.Processors = processors
	}

	// Load per-processor configs
	// For each known processor, check if config exists
	for _, name := range defaults.Processors {
		prefix := "pipeline." + name + "."
		cfg := s.loadProcessorConfig(prefix)
		if len(cfg) > 0 {
			if defaults.ProcessorConfigs == nil {
				defaults.ProcessorConfigs = make(map[string]map[string]any)
			}
			// Merge with existing defaults
			existing := defaults.ProcessorConfigs[name]
			if existing == nil {
				existing = make(map[string]any)
			}
			for k, v := range cfg {
				existing[k] = v
			}
			defaults.ProcessorConfigs[name] = existing
		}
	}

	return defaults
}

// loadProcessorConfig loads config keys with a given prefix into a map.
func (s *SettingsService) loadProcessorConfig(prefix string) map[string]any {
	cfg := make(map[string]any)

	// Check common processor config keys
	knownKeys := []string{"chunk_size", "overlap", "target_size", "min_size", "max_refs"}
	for _, key := range knownKeys {
		fullKey := prefix + key
		if val := s.configStore.Get(fullKey); val != nil {
			cfg[key] = val
		}
	}

	return cfg
}

// GetSchedulerConfig returns the scheduler configuration.
// Returns default configuration if nothing is configured.
func (s *SettingsService) GetSchedulerConfig() domain.SchedulerConfig {
	defaults := domain.DefaultSchedulerConfig()

	// Master switch
	if val := s.configStore.Get("scheduler.enabled"); val != nil {
		defaults.Enabled = s.configStore.GetBool("scheduler.enabled", defaults.Enabled)
	}

	// Per-task config
	// Map from task ID to config key (underscore version for TOML)
	taskKeys := map[string]string{
		domain.TaskIDSourceRescan: "source_rescan",
		domain.TaskIDCachePrune:   "cache_prune",
	}

	for taskID, configKey := range taskKeys {
		prefix := "scheduler." + configKey + "."

		taskCfg := defaults.TaskConfigs[taskID]

		// Check enabled
		if val := s.configStore.Get(prefix + "enabled"); val != nil {
			taskCfg.Enabled = s.configStore.GetBool(prefix+"enabled", taskCfg.Enabled)
		}

		// Check interval (duration string like "45m", "1h")
		if interval := s.configStore.GetString(prefix+"interval", ""); interval != "" {
			if d, err := time.ParseDuration(interval); err == nil {
				taskCfg.Interval = d
			}
		}

		defaults.TaskConfigs[taskID] = taskCfg
	}

	return defaults
}
