package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nodewee/doc-pipeline/pkg/preflight"
	"github.com/nodewee/doc-pipeline/pkg/utils"
)

var (
	checkLang   string
	checkJSON   bool
	checkInput  string
	checkOutput string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the workflow engine, data root and job directories",
	Long: `Run the environment checks a pipeline run depends on.

Checks run concurrently and cover the workflow scripts (or the nextflow launcher
when no workflow directory is configured), the data root, the resource directory
for --lang, and the job's input and output directories when given.

Examples:
  doc-pipeline check
  doc-pipeline check --lang deu_frak --data-root /opt/PICCL/data
  doc-pipeline check --input-dir input --output-dir output --json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		if workflowDir != "" {
			cfg.WorkflowDir = workflowDir
		}
		if dataRoot != "" {
			cfg.DataRoot = dataRoot
		}
		if err := cfg.ResolvePaths(); err != nil {
			return err
		}

		report, err := preflight.NewChecker().Run(context.Background(), preflight.Settings{
			EnginePath:  cfg.NextflowPath,
			WorkflowDir: cfg.WorkflowDir,
			DataRoot:    cfg.DataRoot,
			Language:    checkLang,
			InputDir:    checkInput,
			OutputDir:   checkOutput,
		})
		if err != nil {
			return utils.WrapError(err, utils.ErrorTypeSystem, "check interrupted")
		}

		if checkJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return utils.WrapError(err, utils.ErrorTypeIO, "failed to encode report")
			}
		} else {
			printReport(report)
		}

		if report.HasFailures {
			return utils.NewValidationError("environment check reported failures", nil)
		}
		return nil
	},
}

// printReport prints one line per check
func printReport(report *preflight.Report) {
	fmt.Println("🩺 Environment Check")
	fmt.Println("====================")
	for _, item := range report.Items {
		icon := "✅"
		switch item.Status {
		case preflight.StatusWarn:
			icon = "⚠️ "
		case preflight.StatusFail:
			icon = "❌"
		}
		fmt.Printf("%s %-32s %s\n", icon, item.Name, item.Message)
		if item.Hint != "" {
			fmt.Printf("   💡 %s\n", item.Hint)
		}
	}
}

func init() {
	checkCmd.Flags().StringVar(&checkLang, "lang", "", "Language whose resources should be checked")
	checkCmd.Flags().StringVar(&checkInput, "input-dir", "", "Input directory to check")
	checkCmd.Flags().StringVar(&checkOutput, "output-dir", "", "Output directory to check")
	checkCmd.Flags().StringVar(&dataRoot, "data-root", "", "Root of the per-language correction resources")
	checkCmd.Flags().StringVar(&workflowDir, "workflow-dir", "", "Directory with the workflow scripts")
	checkCmd.Flags().BoolVar(&checkJSON, "json", false, "Print the report as JSON")

	rootCmd.AddCommand(checkCmd)
}
