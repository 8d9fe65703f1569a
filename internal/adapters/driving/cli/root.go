// Package cli implements the paragraf command-line interface.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/lovbase/paragraf/internal/core/ports/driven"
	"github.com/lovbase/paragraf/internal/core/ports/driving"
	"github.com/lovbase/paragraf/internal/logger"
)

// version is set from the build via SetVersion.
var version = "dev"

// Services wired into the commands. Nil services make the commands
// that need them fail with a clear error instead of panicking.
var (
	searchService     driving.SearchService
	askService        driving.AskService
	syncOrchestrator  driving.SyncOrchestrator
	settingsService   driving.SettingsService
	sourceService     driving.SourceService
	documentService   driving.DocumentService
	collectionService driving.CollectionService
	envService        driving.EnvService
	promptStore       driven.PromptStore
	promptDir         string
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "paragraf",
	Short: "Search and question answering over Danish tax law",
	Long: `Paragraf indexes Danish tax-law documents (love, bekendtgørelser,
Den juridiske vejledning, afgørelser) into searchable collections and
answers questions grounded in the indexed text.

Start with 'paragraf source add filesystem' to index a directory,
then 'paragraf search' or 'paragraf ask'.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Deps bundles everything the CLI needs from the composition root.
type Deps struct {
	Search      driving.SearchService
	Ask         driving.AskService
	Sync        driving.SyncOrchestrator
	Settings    driving.SettingsService
	Source      driving.SourceService
	Document    driving.DocumentService
	Collection  driving.CollectionService
	Env         driving.EnvService
	PromptStore driven.PromptStore
	PromptDir   string
}

// SetServices wires services into the command tree. Must be called
// before Execute.
func SetServices(deps Deps) {
	searchService = deps.Search
	askService = deps.Ask
	syncOrchestrator = deps.Sync
	settingsService = deps.Settings
	sourceService = deps.Source
	documentService = deps.Document
	collectionService = deps.Collection
	envService = deps.Env
	promptStore = deps.PromptStore
	promptDir = deps.PromptDir
}

// SetVersion sets the version string printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
