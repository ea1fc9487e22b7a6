// Package engine invokes the external processing workflows. Every stage runs
// through Runner so that diagnostics look the same whichever stage failed.
package engine

import (
	"context"
	"fmt"

	"github.com/nodewee/doc-pipeline/pkg/interfaces"
	"github.com/nodewee/doc-pipeline/pkg/logger"
	"github.com/nodewee/doc-pipeline/pkg/utils"
)

// Runner is the single entry point for engine invocations
type Runner struct {
	engine interfaces.StageEngine
	logger *logger.Logger
}

// NewRunner wraps an engine
func NewRunner(engine interfaces.StageEngine, log *logger.Logger) *Runner {
	return &Runner{engine: engine, logger: log}
}

// Run invokes the engine, writes the captured streams to the diagnostic log
// and returns a stage-failed error for a non-zero exit.
func (r *Runner) Run(ctx context.Context, inv interfaces.StageInvocation) (*interfaces.StageResult, error) {
	r.logger.Progress("🚀", "Running %s (%s)", inv.Stage, inv.Workflow)

	result, err := r.engine.Run(ctx, inv)
	if result != nil {
		r.dump(inv, result)
	}

	if err != nil {
		r.logger.Error("%s stage could not be started: %v", inv.Stage, err)
		return result, utils.NewStageFailedError(inv.Stage, 0, err)
	}
	if result == nil {
		return nil, utils.NewStageFailedError(inv.Stage, 0, fmt.Errorf("%s engine returned no result", r.engine.Name()))
	}
	if result.ExitCode != 0 {
		r.logger.Error("%s stage failed with exit status %d", inv.Stage, result.ExitCode)
		return result, utils.NewStageFailedError(inv.Stage, result.ExitCode, nil)
	}

	r.logger.Progress("✅", "%s stage completed", inv.Stage)
	return result, nil
}

func (r *Runner) dump(inv interfaces.StageInvocation, result *interfaces.StageResult) {
	name := r.engine.Name()
	r.logger.Section(fmt.Sprintf("[%s] %s standard error output", inv.Stage, name), result.Stderr)
	r.logger.Section(fmt.Sprintf("[%s] %s standard output", inv.Stage, name), result.Stdout)
	if result.HasTrace {
		r.logger.Section(fmt.Sprintf("[%s] %s trace summary", inv.Stage, name), result.Trace)
	}
}
