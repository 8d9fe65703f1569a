package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lovbase/paragraf/internal/core/domain"
)

var (
	searchLimit    int
	searchJSON     bool
	searchDocTypes []string
	searchOphaevet bool
	searchRelated  bool
	searchExplain  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed documents",
	Long: `Performs hybrid search across the active collection.
Combines keyword (BM25) and semantic (vector) search, then boosts
chunks whose legal metadata matches the query: a chunk citing the
exact paragraph you asked about outranks one that merely mentions it.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	searchCmd.Flags().StringSliceVar(&searchDocTypes, "doc-type", nil, "filter by document type (lovtekst, juridisk_vejledning, ...)")
	searchCmd.Flags().BoolVar(&searchOphaevet, "include-ophaevet", false, "include repealed and historical rules")
	searchCmd.Flags().BoolVar(&searchRelated, "related", false, "pull in cross-referenced notes for top results")
	searchCmd.Flags().BoolVar(&searchExplain, "explain", false, "show how the query was analysed")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query := args[0]

	if searchService == nil {
		return errors.New("search service not configured")
	}

	ctx := context.Background()

	if searchExplain {
		if err := outputQueryAnalysis(ctx, cmd, query); err != nil {
			return err
		}
	}

	opts := domain.SearchOptions{
		Limit:           searchLimit,
		IncludeOphaevet: searchOphaevet,
		WithRelated:     searchRelated,
	}
	for _, dt := range searchDocTypes {
		docType := domain.DocType(dt)
		if !docType.IsValid() {
			return fmt.Errorf("unknown document type: %s", dt)
		}
		opts.DocTypes = append(opts.DocTypes, docType)
	}

	results, err := searchService.Search(ctx, query, opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		return outputSearchJSON(cmd, results)
	}

	return outputSearchTable(cmd, results)
}

func outputQueryAnalysis(ctx context.Context, cmd *cobra.Command, query string) error {
	analysis, err := searchService.Analyse(ctx, query)
	if err != nil {
		return fmt.Errorf("analyse query: %w", err)
	}

	cmd.Println("Query analysis:")
	if len(analysis.LawRefs) > 0 {
		refs := make([]string, len(analysis.LawRefs))
		for i, ref := range analysis.LawRefs {
			refs[i] = ref.String()
		}
		cmd.Printf("  Law refs:     %s\n", strings.Join(refs, ", "))
	}
	if len(analysis.CaseRefs) > 0 {
		cmd.Printf("  Case refs:    %s\n", strings.Join(analysis.CaseRefs, ", "))
	}
	if len(analysis.SectionIDs) > 0 {
		cmd.Printf("  JV sections:  %s\n", strings.Join(analysis.SectionIDs, ", "))
	}
	if len(analysis.Concepts) > 0 {
		cmd.Printf("  Concepts:     %s\n", strings.Join(analysis.Concepts, ", "))
	}
	cmd.Printf("  Question:     %s\n", analysis.QuestionType)
	cmd.Println()
	return nil
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) error {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		title := results[i].Document.Title
		if title == "" {
			title = results[i].Document.ID
		}

		cmd.Printf("  [%d] %s (%.2f)\n", i+1, title, results[i].Score)
		if section := results[i].Chunk.Section; section != "" {
			cmd.Printf("      %s\n", section)
		}
		if results[i].SourceName != "" {
			cmd.Printf("      Source: %s\n", results[i].SourceName)
		}
		if len(results[i].Highlights) > 0 {
			cmd.Printf("      %s\n", results[i].Highlights[0])
		}
		if len(results[i].Boosts) > 0 {
			cmd.Printf("      Boosts: %s\n", strings.Join(results[i].Boosts, "; "))
		}
		if results[i].Related {
			cmd.Printf("      (via cross-reference)\n")
		}
		cmd.Println()
	}

	return nil
}
