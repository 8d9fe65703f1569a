package cli

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var collectionCmd = &cobra.Command{
	Use:     "collection",
	Aliases: []string{"col"},
	Short:   "Manage document collections",
	Long: `Collections are independently indexed sets of documents, each
pinned to one embedding model. One collection is active at a time; all
indexing and search operations apply to the active collection.`,
}

var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections",
	RunE:  runCollectionList,
}

var collectionCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a new collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionCreate,
}

var collectionUseCmd = &cobra.Command{
	Use:   "use [name]",
	Short: "Switch the active collection",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionUse,
}

var collectionRenameCmd = &cobra.Command{
	Use:   "rename [old-name] [new-name]",
	Short: "Rename a collection",
	Args:  cobra.ExactArgs(2),
	RunE:  runCollectionRename,
}

var collectionMergeCmd = &cobra.Command{
	Use:   "merge [source] [target]",
	Short: "Merge one collection into another",
	Long: `Moves every document of the source collection into the target and
deletes the source. Both collections must be pinned to the same
embedding model, and the source cannot be the active collection.`,
	Args: cobra.ExactArgs(2),
	RunE: runCollectionMerge,
}

var collectionDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a collection and its indexed data",
	Args:  cobra.ExactArgs(1),
	RunE:  runCollectionDelete,
}

var collectionStatsCmd = &cobra.Command{
	Use:   "stats [name]",
	Short: "Show collection statistics",
	Long:  `Shows document and chunk counts. Without an argument, reports on the active collection.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCollectionStats,
}

var collectionImportCmd = &cobra.Command{
	Use:   "import [name] [dir]",
	Short: "Import a legacy index bundle into a new collection",
	Long: `Imports a pre-built index bundle (chunks.json and metadata.json per
document directory) into a new collection. A requirements.txt in the
bundle is parsed and recorded as provenance. Imported chunks carry no
embeddings; resync or re-embed to enable semantic search.`,
	Args: cobra.ExactArgs(2),
	RunE: runCollectionImport,
}

// collectionDescription is a flag for the create command.
var collectionDescription string

func init() {
	collectionCreateCmd.Flags().StringVarP(&collectionDescription, "description", "d", "", "Collection description")

	collectionCmd.AddCommand(collectionListCmd)
	collectionCmd.AddCommand(collectionCreateCmd)
	collectionCmd.AddCommand(collectionUseCmd)
	collectionCmd.AddCommand(collectionRenameCmd)
	collectionCmd.AddCommand(collectionMergeCmd)
	collectionCmd.AddCommand(collectionDeleteCmd)
	collectionCmd.AddCommand(collectionStatsCmd)
	collectionCmd.AddCommand(collectionImportCmd)
	rootCmd.AddCommand(collectionCmd)
}

func runCollectionList(cmd *cobra.Command, _ []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	ctx := context.Background()

	collections, err := collectionService.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	active, err := collectionService.Active(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve active collection: %w", err)
	}

	cmd.Println("Collections:")
	cmd.Println()
	for i := range collections {
		marker := " "
		if collections[i].ID == active.ID {
			marker = "*"
		}
		cmd.Printf("%s %s\n", marker, collections[i].Name)
		if collections[i].Description != "" {
			cmd.Printf("    %s\n", collections[i].Description)
		}
		if collections[i].EmbeddingModel != "" {
			cmd.Printf("    Embedding: %s (%d dimensions)\n",
				collections[i].EmbeddingModel, collections[i].Dimensions)
		}
	}
	cmd.Println()
	cmd.Println("* = active")
	return nil
}

func runCollectionCreate(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	name := args[0]
	collection, err := collectionService.Create(context.Background(), name, collectionDescription)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	cmd.Printf("Created collection: %s\n", collection.Name)
	if collection.EmbeddingModel != "" {
		cmd.Printf("Pinned to embedding model %s (%d dimensions).\n",
			collection.EmbeddingModel, collection.Dimensions)
	}
	cmd.Printf("Run 'paragraf collection use %s' to make it active.\n", collection.Name)
	return nil
}

func runCollectionUse(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	name := args[0]
	if err := collectionService.Use(context.Background(), name); err != nil {
		return fmt.Errorf("failed to switch collection: %w", err)
	}

	cmd.Printf("Active collection: %s\n", name)
	return nil
}

func runCollectionRename(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	oldName, newName := args[0], args[1]
	if err := collectionService.Rename(context.Background(), oldName, newName); err != nil {
		return fmt.Errorf("failed to rename collection: %w", err)
	}

	cmd.Printf("Renamed collection %s to %s\n", oldName, newName)
	return nil
}

func runCollectionMerge(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	src, dst := args[0], args[1]
	if err := collectionService.Merge(context.Background(), src, dst); err != nil {
		return fmt.Errorf("failed to merge collections: %w", err)
	}

	cmd.Printf("Merged collection %s into %s\n", src, dst)
	return nil
}

func runCollectionDelete(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	name := args[0]
	if err := collectionService.Delete(context.Background(), name); err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}

	cmd.Printf("Deleted collection: %s\n", name)
	return nil
}

func runCollectionStats(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	ctx := context.Background()

	name := ""
	if len(args) > 0 {
		name = args[0]
	} else {
		active, err := collectionService.Active(ctx)
		if err != nil {
			return fmt.Errorf("failed to resolve active collection: %w", err)
		}
		name = active.Name
	}

	stats, err := collectionService.Stats(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to get collection stats: %w", err)
	}

	cmd.Printf("Collection: %s\n\n", name)
	cmd.Printf("  Documents: %d\n", stats.Documents)
	cmd.Printf("  Chunks:    %d\n", stats.Chunks)
	cmd.Printf("  Embedded:  %d\n", stats.Embedded)

	if len(stats.ByDocType) > 0 {
		cmd.Println("\n  By document type:")
		printCountMap(cmd, stats.ByDocType)
	}

	if len(stats.ByChunkType) > 0 {
		cmd.Println("\n  By chunk type:")
		printCountMap(cmd, stats.ByChunkType)
	}

	if len(stats.ByLegalStatus) > 0 {
		cmd.Println("\n  By legal status:")
		printCountMap(cmd, stats.ByLegalStatus)
	}

	return nil
}

// printCountMap prints a map of named counts in sorted key order.
func printCountMap[K ~string](cmd *cobra.Command, counts map[K]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)
	for _, k := range keys {
		cmd.Printf("    %s: %d\n", k, counts[K(k)])
	}
}

func runCollectionImport(cmd *cobra.Command, args []string) error {
	if collectionService == nil {
		return errors.New("collection service not configured")
	}

	name, dir := args[0], args[1]
	cmd.Printf("Importing bundle from %s...\n", dir)

	collection, err := collectionService.ImportLegacy(context.Background(), name, dir)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	cmd.Printf("Imported into collection: %s\n", collection.Name)
	if len(collection.Provenance) > 0 {
		cmd.Println("Provenance:")
		keys := make([]string, 0, len(collection.Provenance))
		for k := range collection.Provenance {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			cmd.Printf("  %s %s\n", k, collection.Provenance[k])
		}
	}
	cmd.Println("Imported chunks carry no embeddings; re-embed to enable semantic search.")
	return nil
}
