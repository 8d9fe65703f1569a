// Package ollama provides an LLM service adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/lovbase/paragraf/internal/adapters/driven/llm/llmjson"
	"github.com/lovbase/paragraf/internal/core/ports/driven"
)

// Ensure LLMService implements the interfaces.
var (
	_ driven.LLMService       = (*LLMService)(nil)
	_ driven.PromptStoreAware = (*LLMService)(nil)
)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.1"
	DefaultTimeout = 300 * time.Second // Local models can be slow
)

// Config holds configuration for the Ollama LLM service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the LLM model to use (default: llama3.1).
	Model string

	// Timeout is the request timeout (default: 300s).
	Timeout time.Duration
}

// LLMService provides LLM operations using Ollama.
type LLMService struct {
	client      *http.Client
	baseURL     string
	model       string
	promptStore driven.PromptStore
}

// chatRequest is the Ollama /api/chat request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options,omitempty"`
}

// chatMessage is the Ollama message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatOptions is the Ollama generation options format.
type chatOptions struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

// chatResponse is the Ollama /api/chat response format.
type chatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

// NewLLMService creates a new Ollama LLM service.
func NewLLMService(cfg Config) *LLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Generate produces text completion from a prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	messages := []driven.ChatMessage{
		{Role: "user", Content: prompt},
	}
	chatOpts := driven.ChatOptions{
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	return s.sendChat(ctx, messages, chatOpts, opts.StopWords)
}

// Chat conducts a multi-turn conversation.
func (s *LLMService) Chat(ctx context.Context, messages []driven.ChatMessage, opts driven.ChatOptions) (string, error) {
	return s.sendChat(ctx, messages, opts, nil)
}

// sendChat is the internal implementation for both Generate and Chat.
func (s *LLMService) sendChat(
	ctx context.Context,
	messages []driven.ChatMessage,
	opts driven.ChatOptions,
	stopWords []string,
) (string, error) {
	// Convert driven.ChatMessage to internal format
	apiMessages := make([]chatMessage, len(messages))
	for i, msg := range messages {
		apiMessages[i] = chatMessage{
			Role:    msg.Role,
			Content: msg.Content,
		}
	}

	reqBody := chatRequest{
		Model:    s.model,
		Messages: apiMessages,
		Stream:   false,
		Options: chatOptions{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
			Stop:        stopWords,
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/api/chat",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if chatResp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", chatResp.Error)
	}

	return chatResp.Message.Content, nil
}

// analysisInputLimit bounds how much document text the context
// analysis prompt sends.
const analysisInputLimit = 6000

// defaultQueryRewritePrompt is the fallback prompt when no PromptStore is configured.
const defaultQueryRewritePrompt = `Omskriv spørgsmålet til en søgeforespørgsel mod danske skatteretlige dokumenter.
Bevar lovhenvisninger og fagudtryk. Returnér KUN forespørgslen, intet andet.

Spørgsmål: %s
Forespørgsel:`

// defaultAnswerSystemPrompt is the fallback prompt when no PromptStore is configured.
const defaultAnswerSystemPrompt = `Du er en juridisk assistent med speciale i dansk skatteret.
Svar kun ud fra de angivne kilder og citér dem med [n].
Sig klart hvis kilderne ikke indeholder svaret.`

// defaultAnswerPrompt is the fallback prompt when no PromptStore is configured.
const defaultAnswerPrompt = `Kilder:
%s

Spørgsmål: %s

Besvar spørgsmålet ud fra kilderne ovenfor. Citér kilder med [n].`

// defaultContextAnalysisPrompt is the fallback prompt when no PromptStore is configured.
const defaultContextAnalysisPrompt = `Læs begyndelsen af et dansk juridisk dokument og returnér KUN et JSON-objekt
med nøglerne "title", "law_area", "doc_type", "key_concepts", "audience" og "summary".

Dokument:
%s`

// defaultChunkExtractPrompt is the fallback prompt when no PromptStore is configured.
const defaultChunkExtractPrompt = `Opdel udsnittet i semantiske afsnit og returnér KUN et JSON-array af objekter
med nøglerne "content", "type", "section", "title" og "concepts". Udelad ingen tekst.

Udsnit:
%s`

// RewriteQuery rewrites a question into a retrieval-friendly search query.
func (s *LLMService) RewriteQuery(ctx context.Context, query string) (string, error) {
	promptTemplate := s.loadPrompt(driven.PromptQueryRewrite, defaultQueryRewritePrompt)
	prompt := fmt.Sprintf(promptTemplate, query)

	result, err := s.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   100,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("rewrite query: %w", err)
	}

	return strings.TrimSpace(result), nil
}

// AnalyseDocument reads the opening of a document and returns its
// structured context.
func (s *LLMService) AnalyseDocument(ctx context.Context, docType string, text string) (*driven.DocumentAnalysis, error) {
	promptTemplate := s.loadPrompt(driven.PromptContextAnalysis, defaultContextAnalysisPrompt)
	prompt := fmt.Sprintf(promptTemplate, llmjson.Truncate(text, analysisInputLimit))

	result, err := s.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   600,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("analyse document: %w", err)
	}

	analysis, err := llmjson.ParseAnalysis(result)
	if err != nil {
		return nil, fmt.Errorf("analyse document: %w", err)
	}
	if analysis.DocTypeHint == "" {
		analysis.DocTypeHint = docType
	}
	return analysis, nil
}

// ExtractChunks splits a text segment into typed chunks.
func (s *LLMService) ExtractChunks(ctx context.Context, docType string, segment string) ([]driven.ExtractedChunk, error) {
	promptTemplate := s.loadPrompt(driven.PromptChunkExtract, defaultChunkExtractPrompt)
	prompt := fmt.Sprintf(promptTemplate, segment)

	result, err := s.Generate(ctx, prompt, driven.GenerateOptions{
		MaxTokens:   4096,
		Temperature: 0.1,
	})
	if err != nil {
		return nil, fmt.Errorf("extract chunks: %w", err)
	}

	chunks, err := llmjson.ParseChunks(result)
	if err != nil {
		return nil, fmt.Errorf("extract chunks: %w", err)
	}
	return chunks, nil
}

// Answer generates an answer grounded in the given context block.
func (s *LLMService) Answer(ctx context.Context, question, contextBlock string, opts driven.AnswerOptions) (string, error) {
	systemPrompt := s.loadPrompt(driven.PromptAnswerSystem, defaultAnswerSystemPrompt)
	userTemplate := s.loadPrompt(driven.PromptAnswer, defaultAnswerPrompt)

	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1500
	}

	result, err := s.Chat(ctx, []driven.ChatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: fmt.Sprintf(userTemplate, contextBlock, question)},
	}, driven.ChatOptions{
		MaxTokens:   maxTokens,
		Temperature: opts.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("answer: %w", err)
	}

	return strings.TrimSpace(result), nil
}

// loadPrompt loads a prompt from the store, falling back to the default if unavailable.
func (s *LLMService) loadPrompt(name, fallback string) string {
	if s.promptStore == nil {
		return fallback
	}
	prompt, err := s.promptStore.Load(name)
	if err != nil {
		return fallback
	}
	return prompt
}

// ModelName returns the name of the LLM model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// SetPromptStore sets the prompt store for loading customisable prompts.
// If not set, the service uses hardcoded default prompts.
func (s *LLMService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Ping validates the service is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("ollama: API returned status %d (failed to read body: %w)", resp.StatusCode, err)
		}
		return fmt.Errorf("ollama: API returned status %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
