package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/nodewee/doc-pipeline/pkg/config"
	"github.com/nodewee/doc-pipeline/pkg/constants"
	"github.com/nodewee/doc-pipeline/pkg/interfaces"
	"github.com/nodewee/doc-pipeline/pkg/logger"
)

// Nextflow runs pipeline workflows through the Nextflow launcher. With a
// local workflow directory the scripts are executed directly; otherwise they
// are fetched from the remote workflow repository by "nextflow run".
type Nextflow struct {
	enginePath  string
	workflowDir string
	remote      string
	logger      *logger.Logger
}

var _ interfaces.StageEngine = (*Nextflow)(nil)

// NewNextflow creates an engine from tool configuration
func NewNextflow(cfg *config.Config, log *logger.Logger) *Nextflow {
	remote := cfg.RemoteWorkflow
	if remote == "" {
		remote = constants.DefaultRemoteRepo
	}
	enginePath := cfg.NextflowPath
	if enginePath == "" {
		enginePath = constants.DefaultEnginePath
	}
	return &Nextflow{
		enginePath:  enginePath,
		workflowDir: cfg.WorkflowDir,
		remote:      strings.TrimSuffix(remote, "/"),
		logger:      log,
	}
}

// Name returns the engine name
func (n *Nextflow) Name() string {
	return "nextflow"
}

// Command returns the program and arguments used for an invocation
func (n *Nextflow) Command(inv interfaces.StageInvocation) (string, []string) {
	script := inv.Workflow + constants.WorkflowScriptExt
	var name string
	var args []string
	if n.workflowDir != "" {
		name = filepath.Join(n.workflowDir, script)
	} else {
		name = n.enginePath
		args = append(args, "run", n.remote+"/"+script)
	}
	args = append(args, inv.Args...)
	args = append(args, "-with-trace")
	return name, args
}

// Run executes the workflow with stdout and stderr redirected to per-stage
// log files in the working directory, then reads the logs and the trace back
// and removes them.
func (n *Nextflow) Run(ctx context.Context, inv interfaces.StageInvocation) (*interfaces.StageResult, error) {
	name, args := n.Command(inv)
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = inv.WorkDir
	cmd.Env = append(os.Environ(), "LC_ALL=en_US.UTF-8", "LANG=en_US.UTF-8")

	result := &interfaces.StageResult{Command: cmd.String()}

	outPath := filepath.Join(inv.WorkDir, fmt.Sprintf(constants.StdoutLogPattern, inv.Stage))
	errPath := filepath.Join(inv.WorkDir, fmt.Sprintf(constants.StderrLogPattern, inv.Stage))
	tracePath := filepath.Join(inv.WorkDir, constants.TraceFileName)

	outFile, err := os.Create(outPath)
	if err != nil {
		return result, fmt.Errorf("failed to create stdout log: %w", err)
	}
	errFile, err := os.Create(errPath)
	if err != nil {
		outFile.Close()
		os.Remove(outPath)
		return result, fmt.Errorf("failed to create stderr log: %w", err)
	}
	cmd.Stdout = outFile
	cmd.Stderr = errFile

	n.logger.Debug("Running %s workflow in %s", inv.Workflow, inv.WorkDir)
	n.logger.ProgressAlways("⚙️", "Command: %s", result.Command)
	runErr := cmd.Run()
	outFile.Close()
	errFile.Close()

	result.Stdout = n.drain(outPath)
	result.Stderr = n.drain(errPath)
	if trace, ok := n.drainOptional(tracePath); ok {
		result.Trace = trace
		result.HasTrace = true
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		result.ExitCode = -1
		return result, fmt.Errorf("failed to start %s: %w", name, runErr)
	}
	return result, nil
}

// drain reads a captured log and removes it
func (n *Nextflow) drain(path string) string {
	content, _ := n.drainOptional(path)
	return content
}

func (n *Nextflow) drainOptional(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			n.logger.Warn("Failed to read %s: %v", path, err)
		}
		return "", false
	}
	if err := os.Remove(path); err != nil {
		n.logger.Warn("Failed to remove %s: %v", path, err)
	}
	return string(data), true
}
