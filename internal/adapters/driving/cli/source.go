package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lovbase/paragraf/internal/core/domain"
	"github.com/lovbase/paragraf/internal/core/services"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage document sources",
	Long:  `Add, list, and remove document sources.`,
}

var sourceAddCmd = &cobra.Command{
	Use:   "add [connector-type]",
	Short: "Add a new source",
	Long: `Adds a new document source. Prompts for the connector's
configuration values. Without an argument, lists the available types.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSourceAdd,
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured sources",
	RunE:  runSourceList,
}

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove [source-id]",
	Short: "Remove a source and its indexed data",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceRemove,
}

var sourceTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List available source types",
	RunE:  runSourceTypes,
}

func init() {
	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
	sourceCmd.AddCommand(sourceTypesCmd)
	rootCmd.AddCommand(sourceCmd)
}

func runSourceAdd(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	if len(args) == 0 {
		return runSourceTypes(cmd, nil)
	}

	sourceType, err := services.SourceTypeByID(args[0])
	if err != nil {
		return fmt.Errorf("unknown source type %q, run 'paragraf source types': %w", args[0], err)
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Printf("Adding %s source\n", sourceType.Name)
	cmd.Print("Name: ")
	name := readLine(reader)
	if name == "" {
		return errors.New("source name is required")
	}

	config := make(map[string]string)
	for _, key := range sourceType.ConfigKeys {
		prompt := key.Label
		if !key.Required {
			prompt += " (optional)"
		}
		cmd.Printf("%s: ", prompt)
		value := readLine(reader)
		if value == "" && key.Required {
			return fmt.Errorf("%s is required", key.Key)
		}
		if value != "" {
			config[key.Key] = value
		}
	}

	source := domain.Source{
		ID:        uuid.New().String(),
		Type:      sourceType.ID,
		Name:      name,
		Config:    config,
		CreatedAt: time.Now(),
	}

	if err := sourceService.Add(context.Background(), source); err != nil {
		return fmt.Errorf("failed to add source: %w", err)
	}

	cmd.Printf("Added source: %s (%s)\n", source.ID, name)
	cmd.Printf("Run 'paragraf sync %s' to index it.\n", source.ID)
	return nil
}

func runSourceList(cmd *cobra.Command, _ []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	sources, err := sourceService.List(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No configured sources. Run 'paragraf source add filesystem' to add one.")
		return nil
	}

	cmd.Println("Configured sources:")
	cmd.Println()
	for i := range sources {
		cmd.Printf("  %s\n", sources[i].ID)
		cmd.Printf("    Name: %s\n", sources[i].Name)
		cmd.Printf("    Type: %s\n", sources[i].Type)
		if path := sources[i].Config["path"]; path != "" {
			cmd.Printf("    Path: %s\n", path)
		}
		cmd.Println()
	}

	return nil
}

func runSourceRemove(cmd *cobra.Command, args []string) error {
	if sourceService == nil {
		return errors.New("source service not configured")
	}

	sourceID := args[0]
	if err := sourceService.Remove(context.Background(), sourceID); err != nil {
		return fmt.Errorf("failed to remove source: %w", err)
	}

	cmd.Printf("Removed source: %s\n", sourceID)
	return nil
}

func runSourceTypes(cmd *cobra.Command, _ []string) error {
	types := services.SourceTypes()
	if len(types) == 0 {
		cmd.Println("No source types available.")
		return nil
	}

	cmd.Println("Available source types:")
	cmd.Println()
	for _, st := range types {
		cmd.Printf("  %s - %s\n", st.ID, st.Name)
		cmd.Printf("    %s\n", st.Description)
		cmd.Println("    Config:")
		for _, key := range st.ConfigKeys {
			required := ""
			if key.Required {
				required = " (required)"
			}
			cmd.Printf("      %s%s - %s\n", key.Key, required, key.Description)
		}
		cmd.Println()
	}

	return nil
}
