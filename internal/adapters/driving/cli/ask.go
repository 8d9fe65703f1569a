package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/ports/driving"
)

var (
	askContextLimit int
	askNoSources    bool
	askCollection   string
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the indexed corpus",
	Long: `Answers a question grounded in the indexed documents.

The most relevant chunks are retrieved, passed to the configured LLM
as numbered context, and the answer cites them as [1], [2], ...
Requires an LLM provider; run 'paragraf settings llm' to configure.`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().IntVarP(&askContextLimit, "context", "n", 0, "number of chunks in the context block (0 = default)")
	askCmd.Flags().BoolVar(&askNoSources, "no-sources", false, "suppress the source list under the answer")
	askCmd.Flags().StringVar(&askCollection, "collection", "", "answer from a specific collection instead of the active one")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	if askService == nil {
		return errors.New("ask service not configured")
	}

	ctx := context.Background()

	opts := driving.AskOptions{
		ContextLimit: askContextLimit,
	}
	if askCollection != "" {
		if collectionService == nil {
			return errors.New("collection service not configured")
		}
		collection, err := collectionService.Get(ctx, askCollection)
		if err != nil {
			return fmt.Errorf("collection %s: %w", askCollection, err)
		}
		opts.CollectionID = collection.ID
	}

	answer, err := askService.Ask(ctx, args[0], opts)
	if err != nil {
		if errors.Is(err, domain.ErrLLMUnavailable) {
			return fmt.Errorf("%w\nRun 'paragraf settings llm' to configure a provider", err)
		}
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Text)

	if !askNoSources && len(answer.Sources) > 0 {
		cmd.Println()
		cmd.Println("Kilder:")
		for i, source := range answer.Sources {
			line := source.Reference
			if line == "" {
				line = source.DocumentTitle
			} else if source.DocumentTitle != "" {
				line = fmt.Sprintf("%s (%s)", source.Reference, source.DocumentTitle)
			}
			cmd.Printf("  [%d] %s\n", i+1, line)
		}
	}

	return nil
}
