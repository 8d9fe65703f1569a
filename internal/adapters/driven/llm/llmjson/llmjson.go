// Package llmjson parses the structured JSON answers the LLM task
// prompts ask for. Models wrap JSON in prose or code fences and drop
// closing brackets often enough that a repair pass pays for itself.
package llmjson

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/lovbase/paragraf/internal/core/ports/driven"
)

// Extract isolates the JSON payload in a model response: code fences
// are stripped and surrounding prose outside the outermost object or
// array is discarded.
func Extract(raw string) string {
	s := strings.TrimSpace(raw)

	// Strip markdown code fences.
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	objStart := strings.IndexByte(s, '{')
	arrStart := strings.IndexByte(s, '[')
	start := objStart
	var closer byte = '}'
	if start < 0 || (arrStart >= 0 && arrStart < start) {
		start = arrStart
		closer = ']'
	}
	if start < 0 {
		return s
	}
	if end := strings.LastIndexByte(s, closer); end > start {
		return s[start : end+1]
	}
	return s[start:]
}

var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

// Repair fixes the JSON defects models commonly produce: trailing
// commas and unbalanced closing brackets.
func Repair(s string) string {
	s = trailingComma.ReplaceAllString(s, "$1")

	// Balance brackets, ignoring anything inside strings.
	var stack []byte
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			stack = append(stack, '}')
		case c == '[':
			stack = append(stack, ']')
		case c == '}' || c == ']':
			if len(stack) > 0 && stack[len(stack)-1] == c {
				stack = stack[:len(stack)-1]
			}
		}
	}
	if inString {
		s += `"`
	}
	for i := len(stack) - 1; i >= 0; i-- {
		s += string(stack[i])
	}
	return s
}

// documentAnalysis mirrors the JSON shape the context analysis prompt
// asks for.
type documentAnalysis struct {
	Title       string   `json:"title"`
	LawArea     string   `json:"law_area"`
	DocType     string   `json:"doc_type"`
	KeyConcepts []string `json:"key_concepts"`
	Audience    string   `json:"audience"`
	Summary     string   `json:"summary"`
}

// ParseAnalysis decodes a context analysis response.
func ParseAnalysis(raw string) (*driven.DocumentAnalysis, error) {
	payload := Repair(Extract(raw))

	var analysis documentAnalysis
	if err := json.Unmarshal([]byte(payload), &analysis); err != nil {
		return nil, fmt.Errorf("parsing document analysis: %w", err)
	}

	return &driven.DocumentAnalysis{
		Title:       strings.TrimSpace(analysis.Title),
		LawArea:     strings.TrimSpace(analysis.LawArea),
		DocTypeHint: strings.TrimSpace(analysis.DocType),
		KeyConcepts: analysis.KeyConcepts,
		Audience:    strings.TrimSpace(analysis.Audience),
		Summary:     strings.TrimSpace(analysis.Summary),
	}, nil
}

// extractedChunk mirrors the JSON shape the chunk extraction prompt
// asks for.
type extractedChunk struct {
	Content  string   `json:"content"`
	Type     string   `json:"type"`
	Section  string   `json:"section"`
	Title    string   `json:"title"`
	Concepts []string `json:"concepts"`
}

// ParseChunks decodes a chunk extraction response. Elements without
// content are dropped.
func ParseChunks(raw string) ([]driven.ExtractedChunk, error) {
	payload := Repair(Extract(raw))

	var elements []extractedChunk
	if err := json.Unmarshal([]byte(payload), &elements); err != nil {
		return nil, fmt.Errorf("parsing extracted chunks: %w", err)
	}

	chunks := make([]driven.ExtractedChunk, 0, len(elements))
	for _, el := range elements {
		content := strings.TrimSpace(el.Content)
		if content == "" {
			continue
		}
		chunks = append(chunks, driven.ExtractedChunk{
			Content:  content,
			Type:     strings.TrimSpace(el.Type),
			Section:  strings.TrimSpace(el.Section),
			Title:    strings.TrimSpace(el.Title),
			Concepts: el.Concepts,
		})
	}
	return chunks, nil
}

// Truncate shortens text to at most n bytes on a rune boundary.
// Task prompts send document openings, not whole documents.
func Truncate(text string, n int) string {
	if len(text) <= n {
		return text
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
