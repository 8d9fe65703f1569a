package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lovbase/paragraf/internal/core/ports/driven"
)

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "Manage prompt templates",
	Long: `Prompt templates drive question answering and AI-assisted chunking.
Defaults ship with the binary; a file with the same name in the prompt
directory overrides the default.`,
}

var promptsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prompt templates",
	RunE:  runPromptsList,
}

var promptsShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Print a prompt template",
	Args:  cobra.ExactArgs(1),
	RunE:  runPromptsShow,
}

// promptNames lists the known templates with a short purpose line.
var promptNames = []struct {
	name    string
	purpose string
}{
	{driven.PromptAnswerSystem, "system prompt for question answering"},
	{driven.PromptAnswer, "user prompt for question answering"},
	{driven.PromptQueryRewrite, "rewrites a question into a search query"},
	{driven.PromptContextAnalysis, "extracts document context as JSON"},
	{driven.PromptChunkExtract, "splits a text segment into typed chunks"},
}

func init() {
	promptsCmd.AddCommand(promptsListCmd)
	promptsCmd.AddCommand(promptsShowCmd)
	rootCmd.AddCommand(promptsCmd)
}

func runPromptsList(cmd *cobra.Command, _ []string) error {
	if promptStore == nil {
		return errors.New("prompt store not configured")
	}

	cmd.Println("Prompt templates:")
	cmd.Println()
	for _, p := range promptNames {
		cmd.Printf("  %-18s %s\n", p.name, p.purpose)
	}
	cmd.Println()
	if promptDir != "" {
		cmd.Printf("Override directory: %s\n", promptDir)
	}
	cmd.Println("Run 'paragraf prompts show [name]' to print a template.")
	return nil
}

func runPromptsShow(cmd *cobra.Command, args []string) error {
	if promptStore == nil {
		return errors.New("prompt store not configured")
	}

	template, err := promptStore.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load prompt %q: %w", args[0], err)
	}

	cmd.Println(template)
	return nil
}
