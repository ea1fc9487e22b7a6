package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nodewee/doc-pipeline/pkg/config"
	"github.com/nodewee/doc-pipeline/pkg/engine"
	"github.com/nodewee/doc-pipeline/pkg/interfaces"
	"github.com/nodewee/doc-pipeline/pkg/job"
	"github.com/nodewee/doc-pipeline/pkg/logger"
	"github.com/nodewee/doc-pipeline/pkg/pipeline"
	"github.com/nodewee/doc-pipeline/pkg/preflight"
	"github.com/nodewee/doc-pipeline/pkg/status"
	"github.com/nodewee/doc-pipeline/pkg/utils"
)

var (
	jobFile      string
	statusFile   string
	inputDir     string
	outputDir    string
	workDir      string
	dataRoot     string
	workflowDir  string
	nextflowPath string
	runPreflight bool
)

// RunHandler encapsulates the run command's processing logic
type RunHandler struct {
	config *config.Config
	logger *logger.Logger
}

// NewRunHandler creates a run handler
func NewRunHandler() *RunHandler {
	return &RunHandler{}
}

// Run loads the job and drives it through the pipeline
func (h *RunHandler) Run(ctx context.Context) error {
	h.initialize()
	sink := h.statusSink()

	jc, err := h.prepare(ctx)
	if err != nil {
		// The host job system reads failures from the status file
		if writeErr := sink.Write("ERROR: "+err.Error(), 0); writeErr != nil {
			h.logger.Warn("Failed to write status: %v", writeErr)
		}
		return err
	}

	eng := engine.NewNextflow(h.config, h.logger)
	if h.config.WorkflowDir != "" {
		h.logger.Info("Running workflows from %s", h.config.WorkflowDir)
	} else {
		h.logger.Info("Running workflows mediated by Nextflow from %s", h.config.RemoteWorkflow)
	}

	outcome := pipeline.NewOrchestrator(eng, sink, h.logger).Run(ctx, jc)
	h.displayResults(outcome)
	return outcome.Err
}

// initialize loads configuration and creates the logger
func (h *RunHandler) initialize() {
	h.config = loadConfig()
	h.applyCommandLineOverrides()
	h.logger = logger.NewLogger(h.config.LogLevel, h.config.EnableVerbose)
}

// prepare validates the configuration and loads the job
func (h *RunHandler) prepare(ctx context.Context) (*job.Context, error) {
	if err := h.config.ResolvePaths(); err != nil {
		return nil, err
	}
	if err := h.config.Validate(); err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeValidation, "configuration validation failed")
	}
	h.logger.Debug("Configuration: %s", h.config)

	jc, err := job.Load(jobFile, h.resolveDirs())
	if err != nil {
		return nil, err
	}

	if runPreflight {
		if err := h.preflight(ctx, jc); err != nil {
			return nil, err
		}
	}
	return jc, nil
}

// applyCommandLineOverrides applies command line parameter overrides
func (h *RunHandler) applyCommandLineOverrides() {
	if workflowDir != "" {
		h.config.WorkflowDir = workflowDir
	}
	if dataRoot != "" {
		h.config.DataRoot = dataRoot
	}
	if nextflowPath != "" {
		h.config.NextflowPath = nextflowPath
	}
}

// resolveDirs fills in directory defaults relative to the working directory
func (h *RunHandler) resolveDirs() job.Dirs {
	dirs := job.Dirs{
		InputDir:  inputDir,
		OutputDir: outputDir,
		WorkDir:   workDir,
		DataRoot:  h.config.DataRoot,
	}
	if dirs.WorkDir == "" {
		dirs.WorkDir = "."
	}
	if dirs.InputDir == "" {
		dirs.InputDir = filepath.Join(dirs.WorkDir, "input")
	}
	if dirs.OutputDir == "" {
		dirs.OutputDir = filepath.Join(dirs.WorkDir, "output")
	}
	return dirs
}

// preflight refuses to start a run whose environment is already broken
func (h *RunHandler) preflight(ctx context.Context, jc *job.Context) error {
	report, err := preflight.NewChecker().Run(ctx, preflight.Settings{
		EnginePath:  h.config.NextflowPath,
		WorkflowDir: h.config.WorkflowDir,
		DataRoot:    jc.DataRoot,
		Language:    jc.Language,
		InputDir:    jc.InputDir,
		OutputDir:   jc.OutputDir,
	})
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeSystem, "preflight check failed")
	}
	for _, item := range report.Items {
		switch item.Status {
		case preflight.StatusFail:
			h.logger.Error("%s: %s", item.Name, item.Message)
		case preflight.StatusWarn:
			h.logger.Warn("%s: %s", item.Name, item.Message)
		default:
			h.logger.Debug("%s: %s", item.Name, item.Message)
		}
	}
	if report.HasFailures {
		return utils.NewValidationError("preflight check reported failures", nil)
	}
	return nil
}

func (h *RunHandler) statusSink() interfaces.StatusSink {
	if statusFile == "" {
		return status.NewLogSink(h.logger)
	}
	sink := status.NewFileSink(statusFile)
	h.logger.Debug("Appending status to %s", sink.Path())
	return sink
}

// displayResults displays the run outcome
func (h *RunHandler) displayResults(outcome *pipeline.Outcome) {
	if !outcome.Success() {
		fmt.Printf("❌ Run %s failed (exit %d)\n", outcome.RunID, outcome.ExitCode)
		return
	}
	fmt.Printf("✅ Run %s completed\n", outcome.RunID)
	fmt.Printf("📊 Input type: %s\n", outcome.InputType)
	fmt.Printf("🔄 Stages: %v\n", outcome.StagesRun)
	fmt.Printf("📝 Published files: %d\n", len(outcome.Published))
	if len(outcome.Renames) > 0 {
		fmt.Printf("✏️  Renamed files: %d\n", len(outcome.Renames))
	}
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a job through the pipeline",
	Long: `Run a job described by a YAML job parameter file.

The job file carries the language, the stage options and the input files with
their input template tags:

  lang: nld
  ticcl: yes
  ucto: yes
  rank: 20
  distance: 2
  inputs:
    - filename: page1.tif
      inputtemplate: tif

Directories default to input/ and output/ below the working directory, which
defaults to the current directory. Progress is appended to --status when given
and logged otherwise.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return NewRunHandler().Run(context.Background())
	},
}

func init() {
	runCmd.Flags().StringVarP(&jobFile, "job", "j", "", "Job parameter file (YAML)")
	runCmd.Flags().StringVarP(&statusFile, "status", "s", "", "Status file progress is appended to")
	runCmd.Flags().StringVar(&inputDir, "input-dir", "", "Input directory (default: <work-dir>/input)")
	runCmd.Flags().StringVar(&outputDir, "output-dir", "", "Output directory (default: <work-dir>/output)")
	runCmd.Flags().StringVar(&workDir, "work-dir", "", "Working directory (default: current directory)")
	runCmd.Flags().StringVar(&dataRoot, "data-root", "", "Root of the per-language correction resources")
	runCmd.Flags().StringVar(&workflowDir, "workflow-dir", "", "Directory with the workflow scripts")
	runCmd.Flags().StringVar(&nextflowPath, "nextflow", "", "Path to the nextflow launcher")
	runCmd.Flags().BoolVar(&runPreflight, "preflight", false, "Check the environment before starting")
	_ = runCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(runCmd)
}
