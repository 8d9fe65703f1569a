package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lovbase/paragraf/internal/core/ports/driving"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Inspect the runtime environment",
}

var envCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check data directory, config and AI providers",
	RunE:  runEnvCheck,
}

var envManifestCmd = &cobra.Command{
	Use:   "manifest [path]",
	Short: "Inspect a requirements manifest from a legacy bundle",
	Args:  cobra.ExactArgs(1),
	RunE:  runEnvManifest,
}

func init() {
	envCmd.AddCommand(envCheckCmd)
	envCmd.AddCommand(envManifestCmd)
	rootCmd.AddCommand(envCmd)
}

func checkMarker(status driving.CheckStatus) string {
	switch status {
	case driving.CheckOK:
		return "[OK]  "
	case driving.CheckWarn:
		return "[WARN]"
	default:
		return "[FAIL]"
	}
}

func runEnvCheck(cmd *cobra.Command, _ []string) error {
	if envService == nil {
		return errors.New("env service not configured")
	}

	report, err := envService.Check(context.Background())
	if err != nil {
		return fmt.Errorf("environment check failed: %w", err)
	}

	cmd.Printf("Data directory: %s\n", report.DataDir)
	cmd.Printf("Config file:    %s\n\n", report.ConfigPath)

	failures := 0
	for _, check := range report.Checks {
		cmd.Printf("%s %s: %s\n", checkMarker(check.Status), check.Name, check.Detail)
		if check.Status == driving.CheckFail {
			failures++
		}
	}

	cmd.Println()
	if failures > 0 {
		return fmt.Errorf("%d check(s) failed", failures)
	}
	cmd.Println("Environment looks good.")
	return nil
}

func runEnvManifest(cmd *cobra.Command, args []string) error {
	if envService == nil {
		return errors.New("env service not configured")
	}

	report, err := envService.CheckManifest(args[0])
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	cmd.Printf("Manifest: %s\n\n", report.Path)

	if len(report.Requirements) == 0 {
		cmd.Println("No requirements found.")
	} else {
		cmd.Printf("Requirements (%d):\n", len(report.Requirements))
		for _, req := range report.Requirements {
			line := "  " + req.Name
			if req.Constraint != "" {
				line += " " + req.Constraint
			}
			if req.Marker != "" {
				line += " ; " + req.Marker
			}
			if req.Section != "" {
				line += fmt.Sprintf("  (%s)", req.Section)
			}
			cmd.Println(line)
		}
	}

	if len(report.Issues) > 0 {
		cmd.Println("\nIssues:")
		for _, issue := range report.Issues {
			cmd.Printf("  [WARN] %s\n", issue)
		}
	}

	return nil
}
