// Command paragraf is the entry point for the Paragraf CLI. It wires
// the storage, search and AI adapters into the core services and hands
// them to the command tree.
//
// AI services are optional at startup: when the embedding or LLM
// provider is unconfigured or unreachable, the relevant service is
// left nil and the commands degrade to keyword-only behaviour with a
// warning on stderr.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lovbase/paragraf/cgo/hnsw"
	"github.com/lovbase/paragraf/cgo/xapian"
	"github.com/lovbase/paragraf/internal/adapters/driven/ai"
	"github.com/lovbase/paragraf/internal/adapters/driven/config/file"
	"github.com/lovbase/paragraf/internal/adapters/driven/embedding/cached"
	"github.com/lovbase/paragraf/internal/adapters/driven/storage/sqlite"
	"github.com/lovbase/paragraf/internal/adapters/driven/vector/flat"
	"github.com/lovbase/paragraf/internal/adapters/driven/vector/ivf"
	"github.com/lovbase/paragraf/internal/adapters/driving/cli"
	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
	"github.com/lovbase/paragraf/internal/core/services"
	"github.com/lovbase/paragraf/internal/indexers"
	"github.com/lovbase/paragraf/internal/normalisers"
	"github.com/lovbase/paragraf/internal/postprocessors"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, ai.NewConfigValidator())
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()
	dataDir := filepath.Dir(store.Path())

	embeddingService, err := ai.CreateAndValidateEmbeddingService(&settings.Embedding)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (semantic search disabled)\n", err)
		embeddingService = nil
	}
	llmService, err := ai.CreateAndValidateLLMService(&settings.LLM)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (answer generation disabled)\n", err)
		llmService = nil
	}
	defer func() {
		if embeddingService != nil {
			embeddingService.Close()
		}
		if llmService != nil {
			llmService.Close()
		}
	}()

	promptStore, promptDir, err := openPromptStore()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (built-in prompts only)\n", err)
	}
	if promptStore != nil && llmService != nil {
		if aware, ok := llmService.(driven.PromptStoreAware); ok {
			aware.SetPromptStore(promptStore)
		}
	}

	vectorIndex := openVectorIndex(settings, dataDir, embeddingService)
	if vectorIndex != nil {
		defer vectorIndex.Close()
	}

	searchEngine := openSearchEngine(settings, dataDir, store)

	pipeline, err := postprocessors.NewDefaultPipeline(settingsService.GetPipelineConfig())
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	searchService := services.NewSearchService(
		store.DocumentStore(),
		searchEngine,
		vectorIndex,
		embeddingService,
		llmService,
		settings.Search.Mode,
	)
	searchService.SetSourceStore(store.SourceStore())

	askService := services.NewAskService(searchService, llmService)
	sourceService := services.NewSourceService(store.SourceStore(), store.SyncStateStore(), store.DocumentStore())
	documentService := services.NewDocumentService(store.DocumentStore(), store.SourceStore(), store.ExclusionStore())
	collectionService := services.NewCollectionService(
		store.CollectionStore(),
		store.DocumentStore(),
		configStore,
		searchEngine,
		vectorIndex,
		settingsService,
	)

	syncOrchestrator := services.NewSyncOrchestrator(
		store.SourceStore(),
		store.SyncStateStore(),
		store.DocumentStore(),
		store.ExclusionStore(),
		services.NewConnectorFactory(),
		normalisers.NewDefaultRegistry(),
		indexers.NewDefaultRegistry(settings.Indexing, llmService),
		pipeline,
		searchEngine,
		vectorIndex,
		embeddingService,
	)
	if active, err := collectionService.Active(context.Background()); err == nil {
		syncOrchestrator.SetCollection(active.ID)
	}

	envService := services.NewEnvService(dataDir, configStore.Path(), settingsService)

	schedulerConfig := settingsService.GetSchedulerConfig()
	scheduler := services.NewScheduler(
		schedulerConfig,
		store.SchedulerStore(),
		syncOrchestrator,
		cacheRoot(),
	)

	cli.SetVersion(version)
	cli.SetServices(cli.Deps{
		Search:      searchService,
		Ask:         askService,
		Sync:        syncOrchestrator,
		Settings:    settingsService,
		Source:      sourceService,
		Document:    documentService,
		Collection:  collectionService,
		Env:         envService,
		PromptStore: promptStore,
		PromptDir:   promptDir,
	})
	cli.SetTUIConfig(&cli.TUIConfig{
		SearchService:     searchService,
		AskService:        askService,
		SourceService:     sourceService,
		SyncOrchestrator:  syncOrchestrator,
		DocumentService:   documentService,
		SettingsService:   settingsService,
		CollectionService: collectionService,
		Scheduler:         scheduler,
		SchedulerConfig:   schedulerConfig,
	})

	return cli.Execute()
}

// openPromptStore opens the user prompt override store. The nil
// interface on failure keeps the prompts commands degraded rather than
// wrapping a typed nil.
func openPromptStore() (driven.PromptStore, string, error) {
	ps, err := file.NewPromptStore("")
	if err != nil {
		return nil, "", fmt.Errorf("open prompt store: %w", err)
	}
	return ps, ps.Dir(), nil
}

// openVectorIndex opens the configured vector backend for the active
// collection. Without an embedding service there is nothing to put in
// it, so nil is returned and search stays keyword-only.
func openVectorIndex(settings *domain.AppSettings, dataDir string, embeddingService driven.EmbeddingService) driven.VectorIndex {
	if embeddingService == nil {
		return nil
	}

	collection := settings.ActiveCollection
	if collection == "" {
		collection = domain.DefaultCollectionName
	}
	dims := settings.VectorIndex.Dimensions
	path := filepath.Join(dataDir, "vectors", collection+".pgvx")

	var (
		index driven.VectorIndex
		err   error
	)
	switch settings.VectorIndex.Backend {
	case domain.VectorBackendIVF:
		index, err = ivf.NewIndex(ivf.Config{Path: path, Dims: dims})
	case domain.VectorBackendHNSW:
		index, err = hnsw.New(filepath.Join(dataDir, "vectors", collection+".hnsw"), dims, hnsw.PrecisionFloat32)
	default:
		index, err = flat.NewIndex(path, dims)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: open vector index: %v (semantic search disabled)\n", err)
		return nil
	}
	return index
}

// openSearchEngine opens the configured keyword backend, falling back
// to the SQLite FTS5 engine when Xapian cannot be opened.
func openSearchEngine(settings *domain.AppSettings, dataDir string, store *sqlite.Store) driven.SearchEngine {
	if settings.Keyword.Backend == domain.KeywordBackendXapian {
		engine, err := xapian.New(filepath.Join(dataDir, "xapian"))
		if err == nil {
			return engine
		}
		fmt.Fprintf(os.Stderr, "Warning: open xapian index: %v (falling back to FTS5)\n", err)
	}
	return store.SearchEngine()
}

// cacheRoot returns the directory the scheduler prune task sweeps.
// Empty disables pruning.
func cacheRoot() string {
	dir, err := cached.DefaultCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Dir(dir)
}
