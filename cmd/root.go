package cmd

import (
	"github.com/spf13/cobra"

	"github.com/nodewee/doc-pipeline/pkg/config"
)

var (
	verbose     bool
	logLevel    string
	showVersion bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "doc-pipeline",
	Short: "Run OCR, post-OCR correction and linguistic enrichment workflows over document batches",
	Long: `A pipeline driver for batches of scanned or digital documents. It selects and runs
the PICCL workflows a job needs: OCR, TICCL post-OCR correction, and either ucto
tokenization or Frog linguistic enrichment.

Stages run one after another through Nextflow. Each stage's FoLiA output is linked
into the job's output directory as soon as the stage finishes.

Commands:
  run      Run a job described by a job parameter file
  check    Verify the workflow engine, data root and job directories
  config   Manage tool path configuration
  version  Show version information

Exit codes:
  0  success
  1  a stage failed, or the command was used incorrectly
  4  language resources are missing
  5  the input type could not be determined

Examples:
  doc-pipeline run --job job.yml --input-dir input --output-dir output --status status.log
  doc-pipeline run --job job.yml --workflow-dir /opt/PICCL --data-root /opt/PICCL/data
  doc-pipeline check --lang nld --input-dir input
  doc-pipeline config set workflow_dir /opt/PICCL`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			cmd.Println(versionLine())
			return nil
		}
		return cmd.Help()
	},
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return rootCmd
}

// loadConfig resolves configuration from file, environment and global flags
func loadConfig() *config.Config {
	cfg := config.LoadConfigWithEnvOverrides()
	if verbose {
		cfg.EnableVerbose = true
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose output to show progress information")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level (debug, info, warn, error)")
	rootCmd.Flags().BoolVarP(&showVersion, "version", "V", false,
		"Show version information")
}
