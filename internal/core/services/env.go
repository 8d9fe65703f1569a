package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driving"
	"github.com/lovbase/paragraf/internal/manifest"
)

// Ensure EnvService implements the interface.
var _ driving.EnvService = (*EnvService)(nil)

// EnvService inspects the runtime environment: data directory, config
// file, AI provider credentials and index backends.
type EnvService struct {
	dataDir    string
	configPath string
	settings   driving.SettingsService
}

// NewEnvService creates a new environment diagnostics service.
// A .env file next to the working directory is loaded if present, so
// API keys placed there show up in the checks.
func NewEnvService(dataDir, configPath string, settings driving.SettingsService) *EnvService {
	// Missing .env is the normal case, not an error.
	_ = godotenv.Load()

	return &EnvService{
		dataDir:    dataDir,
		configPath: configPath,
		settings:   settings,
	}
}

// Check runs all environment checks and returns a report.
func (s *EnvService) Check(_ context.Context) (*driving.EnvReport, error) {
	report := &driving.EnvReport{
		DataDir:    s.dataDir,
		ConfigPath: s.configPath,
	}

	report.Checks = append(report.Checks, s.checkDataDir())
	report.Checks = append(report.Checks, s.checkConfigFile())

	if s.settings != nil {
		settings, err := s.settings.Get()
		if err != nil {
			return nil, fmt.Errorf("load settings: %w", err)
		}
		report.Checks = append(report.Checks, s.checkSearchMode(settings))
		report.Checks = append(report.Checks, s.checkEmbedding(settings))
		report.Checks = append(report.Checks, s.checkLLM(settings))
	}

	return report, nil
}

// checkDataDir verifies the data directory exists and is writable.
func (s *EnvService) checkDataDir() driving.EnvCheck {
	check := driving.EnvCheck{Name: "data directory"}

	info, err := os.Stat(s.dataDir)
	if err != nil {
		check.Status = driving.CheckFail
		check.Detail = fmt.Sprintf("%s does not exist", s.dataDir)
		return check
	}
	if !info.IsDir() {
		check.Status = driving.CheckFail
		check.Detail = fmt.Sprintf("%s is not a directory", s.dataDir)
		return check
	}

	// Writability: the only reliable probe is writing.
	probe, err := os.CreateTemp(s.dataDir, ".envcheck-*")
	if err != nil {
		check.Status = driving.CheckFail
		check.Detail = fmt.Sprintf("%s is not writable: %v", s.dataDir, err)
		return check
	}
	probe.Close()
	os.Remove(probe.Name())

	check.Status = driving.CheckOK
	check.Detail = s.dataDir
	return check
}

// checkConfigFile verifies the configuration file is readable.
func (s *EnvService) checkConfigFile() driving.EnvCheck {
	check := driving.EnvCheck{Name: "config file"}

	if _, err := os.Stat(s.configPath); err != nil {
		check.Status = driving.CheckWarn
		check.Detail = fmt.Sprintf("%s not found, using defaults", s.configPath)
		return check
	}

	check.Status = driving.CheckOK
	check.Detail = s.configPath
	return check
}

// checkSearchMode verifies the configured mode's requirements are met.
func (s *EnvService) checkSearchMode(settings *domain.AppSettings) driving.EnvCheck {
	check := driving.EnvCheck{Name: "search mode"}

	mode := settings.Search.Mode
	if mode.RequiresEmbedding() && !settings.Embedding.IsConfigured() {
		check.Status = driving.CheckWarn
		check.Detail = fmt.Sprintf("%s needs an embedding provider; falls back to keyword search", mode)
		return check
	}

	check.Status = driving.CheckOK
	check.Detail = mode.Description()
	return check
}

// checkEmbedding verifies the embedding provider configuration.
func (s *EnvService) checkEmbedding(settings *domain.AppSettings) driving.EnvCheck {
	check := driving.EnvCheck{Name: "embedding provider"}
	cfg := settings.Embedding

	if !cfg.Provider.IsValid() {
		check.Status = driving.CheckWarn
		check.Detail = "not configured; semantic search disabled"
		return check
	}

	if cfg.Provider.RequiresAPIKey() && cfg.APIKey == "" && !hasProviderKeyInEnv(cfg.Provider) {
		check.Status = driving.CheckFail
		check.Detail = fmt.Sprintf("%s configured but no API key found", cfg.Provider)
		return check
	}

	check.Status = driving.CheckOK
	check.Detail = fmt.Sprintf("%s (%s, %d dimensions)", cfg.Provider, cfg.Model, settings.VectorIndex.Dimensions)
	return check
}

// checkLLM verifies the LLM provider configuration.
func (s *EnvService) checkLLM(settings *domain.AppSettings) driving.EnvCheck {
	check := driving.EnvCheck{Name: "llm provider"}
	cfg := settings.LLM

	if !cfg.Provider.IsValid() {
		check.Status = driving.CheckWarn
		check.Detail = "not configured; question answering disabled"
		return check
	}

	if cfg.Provider.RequiresAPIKey() && cfg.APIKey == "" && !hasProviderKeyInEnv(cfg.Provider) {
		check.Status = driving.CheckFail
		check.Detail = fmt.Sprintf("%s configured but no API key found", cfg.Provider)
		return check
	}

	check.Status = driving.CheckOK
	check.Detail = fmt.Sprintf("%s (%s)", cfg.Provider, cfg.Model)
	return check
}

// hasProviderKeyInEnv reports whether the conventional environment
// variable for a cloud provider's API key is set.
func hasProviderKeyInEnv(provider domain.AIProvider) bool {
	switch provider {
	case domain.AIProviderOpenAI:
		return os.Getenv("OPENAI_API_KEY") != ""
	case domain.AIProviderAnthropic:
		return os.Getenv("ANTHROPIC_API_KEY") != ""
	default:
		return false
	}
}

// CheckManifest parses a requirements manifest and reports its
// contents and validation issues.
func (s *EnvService) CheckManifest(path string) (*driving.ManifestReport, error) {
	m, err := manifest.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("parse manifest: %w", err)
	}

	report := &driving.ManifestReport{
		Path:     filepath.Clean(path),
		Sections: m.Sections,
	}

	for _, req := range m.Requirements {
		var constraints []string
		for _, c := range req.Constraints {
			constraints = append(constraints, c.String())
		}
		report.Requirements = append(report.Requirements, driving.ManifestRequirement{
			Name:       req.Name,
			Constraint: strings.Join(constraints, ","),
			Marker:     req.Marker,
			Section:    req.Section,
		})
	}

	for _, issue := range m.Validate() {
		report.Issues = append(report.Issues, issue.Message)
	}

	return report, nil
}
