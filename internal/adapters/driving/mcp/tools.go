package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driving"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query           string   `json:"query" jsonschema:"the search query, e.g. a law reference or a question about Danish tax law"`
	Limit           int      `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	DocTypes        []string `json:"doc_types,omitempty" jsonschema:"restrict to document types: lovtekst, juridisk_vejledning, afgoerelse, cirkulaere, styresignal"`
	IncludeOphaevet bool     `json:"include_ophaevet,omitempty" jsonschema:"include repealed provisions in the results"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	DocumentID string   `json:"document_id"`
	Title      string   `json:"title"`
	Section    string   `json:"section,omitempty"`
	Source     string   `json:"source,omitempty"`
	Score      float64  `json:"score"`
	Highlights []string `json:"highlights,omitempty"`
	Content    string   `json:"content,omitempty"`
}

// AskInput is the input schema for the question-answering tool.
type AskInput struct {
	Question     string `json:"question" jsonschema:"the question about Danish tax law, in Danish or English"`
	ContextLimit int    `json:"context_limit,omitempty" jsonschema:"number of chunks used as context (default 8)"`
}

// AskOutput is the output schema for the question-answering tool.
type AskOutput struct {
	Answer  string           `json:"answer"`
	Sources []CitationOutput `json:"sources,omitempty"`
	Model   string           `json:"model,omitempty"`
}

// CitationOutput is one cited source in an answer.
type CitationOutput struct {
	DocumentID    string  `json:"document_id"`
	DocumentTitle string  `json:"document_title"`
	Reference     string  `json:"reference,omitempty"`
	Score         float64 `json:"score"`
}

// DocumentContentInput is the input schema for the document content tool.
type DocumentContentInput struct {
	DocumentID string `json:"document_id" jsonschema:"the document ID, as returned by search results"`
}

// DocumentContentOutput is the output schema for the document content tool.
type DocumentContentOutput struct {
	DocumentID string `json:"document_id"`
	Content    string `json:"content"`
}

// ListCollectionsOutput is the output schema for the collection listing tool.
type ListCollectionsOutput struct {
	Collections []CollectionOutput `json:"collections"`
	Active      string             `json:"active,omitempty"`
}

// CollectionOutput describes one collection.
type CollectionOutput struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	EmbeddingModel string `json:"embedding_model,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_tax_corpus",
		Description: "Search the indexed Danish tax-law corpus (statutes, guidance, rulings)",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask_tax_question",
		Description: "Answer a question about Danish tax law, grounded in the indexed corpus with citations",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_document_content",
		Description: "Fetch the full text of an indexed document by ID",
	}, s.handleDocumentContent)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_collections",
		Description: "List the document collections and which one is active",
	}, s.handleListCollections)
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}

	opts := domain.SearchOptions{
		Limit:           limit,
		IncludeOphaevet: input.IncludeOphaevet,
	}
	for _, dt := range input.DocTypes {
		opts.DocTypes = append(opts.DocTypes, domain.DocType(dt))
	}

	results, err := s.ports.Search.Search(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}

	for i := range results {
		output.Results[i] = SearchResultOutput{
			DocumentID: results[i].Document.ID,
			Title:      results[i].Document.Title,
			Section:    results[i].Chunk.Section,
			Source:     results[i].SourceName,
			Score:      results[i].Score,
			Highlights: results[i].Highlights,
			Content:    results[i].Chunk.Content,
		}
	}

	return nil, output, nil
}

// handleAsk handles the question-answering tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if s.ports.Ask == nil {
		return nil, AskOutput{}, errors.New("question answering is not configured")
	}

	answer, err := s.ports.Ask.Ask(ctx, input.Question, driving.AskOptions{
		ContextLimit: input.ContextLimit,
	})
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer: answer.Text,
		Model:  answer.Model,
	}
	for _, src := range answer.Sources {
		output.Sources = append(output.Sources, CitationOutput{
			DocumentID:    src.DocumentID,
			DocumentTitle: src.DocumentTitle,
			Reference:     src.Reference,
			Score:         src.Score,
		})
	}

	return nil, output, nil
}

// handleDocumentContent handles the document content tool invocation.
func (s *Server) handleDocumentContent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input DocumentContentInput,
) (*mcp.CallToolResult, DocumentContentOutput, error) {
	if s.ports.Document == nil {
		return nil, DocumentContentOutput{}, errors.New("document service is not configured")
	}

	content, err := s.ports.Document.GetContent(ctx, input.DocumentID)
	if err != nil {
		return nil, DocumentContentOutput{}, err
	}

	return nil, DocumentContentOutput{
		DocumentID: input.DocumentID,
		Content:    content,
	}, nil
}

// handleListCollections handles the collection listing tool invocation.
func (s *Server) handleListCollections(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListCollectionsOutput, error) {
	if s.ports.Collection == nil {
		return nil, ListCollectionsOutput{}, errors.New("collection service is not configured")
	}

	collections, err := s.ports.Collection.List(ctx)
	if err != nil {
		return nil, ListCollectionsOutput{}, err
	}

	output := ListCollectionsOutput{}
	for i := range collections {
		output.Collections = append(output.Collections, CollectionOutput{
			Name:           collections[i].Name,
			Description:    collections[i].Description,
			EmbeddingModel: collections[i].EmbeddingModel,
		})
	}

	if active, err := s.ports.Collection.Active(ctx); err == nil {
		output.Active = active.Name
	}

	return nil, output, nil
}
