package postprocessors

import (
	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
	"github.com/lovbase/paragraf/internal/postprocessors/balancer"
	"github.com/lovbase/paragraf/internal/postprocessors/chunker"
	"github.com/lovbase/paragraf/internal/postprocessors/crossref"
	"github.com/lovbase/paragraf/internal/postprocessors/legalstatus"
	"github.com/lovbase/paragraf/internal/postprocessors/refnorm"
	"github.com/lovbase/paragraf/internal/postprocessors/validator"
)

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("chunker", buildChunker)
	r.Register("balancer", buildBalancer)
	r.Register("refnorm", buildRefnorm)
	r.Register("crossref", buildCrossref)
	r.Register("legalstatus", buildLegalstatus)
	r.Register("validator", buildValidator)
}

// NewDefaultPipeline builds a pipeline from config with the built-in
// processors registered. Unknown processor names fail the build.
func NewDefaultPipeline(cfg domain.PipelineConfig) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)

	pipeline := NewPipeline()
	for _, name := range cfg.Processors {
		processor, err := r.Build(name, cfg.GetProcessorConfig(name))
		if err != nil {
			return nil, err
		}
		pipeline.Add(processor)
	}
	return pipeline, nil
}

// buildChunker creates a chunker processor from generic config.
// Supported config keys:
//   - chunk_size (int): Characters per chunk (default: 1000)
//   - overlap (int): Overlapping characters between chunks (default: 200)
func buildChunker(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []chunker.Option

	if cfg != nil {
		if size := getIntFromConfig(cfg, "chunk_size"); size > 0 {
			opts = append(opts, chunker.WithChunkSize(size))
		}
		if overlap := getIntFromConfig(cfg, "overlap"); overlap >= 0 {
			opts = append(opts, chunker.WithOverlap(overlap))
		}
	}

	return chunker.New(opts...), nil
}

// buildBalancer creates a balancer processor from generic config.
// Supported config keys:
//   - target_size (int): Target chunk size in characters (default: 1000)
//   - min_size (int): Merge threshold in characters (default: 250)
func buildBalancer(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []balancer.Option

	if cfg != nil {
		if size := getIntFromConfig(cfg, "target_size"); size > 0 {
			opts = append(opts, balancer.WithTargetSize(size))
		}
		if size := getIntFromConfig(cfg, "min_size"); size > 0 {
			opts = append(opts, balancer.WithMinSize(size))
		}
	}

	return balancer.New(opts...), nil
}

func buildRefnorm(cfg map[string]any) (driven.PostProcessor, error) {
	return refnorm.New(), nil
}

// buildCrossref creates a crossref processor from generic config.
// Supported config keys:
//   - max_links (int): Cross-references kept per chunk (default: 5)
func buildCrossref(cfg map[string]any) (driven.PostProcessor, error) {
	var opts []crossref.Option

	if cfg != nil {
		if n := getIntFromConfig(cfg, "max_links"); n > 0 {
			opts = append(opts, crossref.WithMaxLinks(n))
		}
	}

	return crossref.New(opts...), nil
}

func buildLegalstatus(cfg map[string]any) (driven.PostProcessor, error) {
	return legalstatus.New(), nil
}

func buildValidator(cfg map[string]any) (driven.PostProcessor, error) {
	return validator.New(), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
