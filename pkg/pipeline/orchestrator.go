package pipeline

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/nodewee/doc-pipeline/pkg/classifier"
	"github.com/nodewee/doc-pipeline/pkg/constants"
	"github.com/nodewee/doc-pipeline/pkg/engine"
	"github.com/nodewee/doc-pipeline/pkg/interfaces"
	"github.com/nodewee/doc-pipeline/pkg/job"
	"github.com/nodewee/doc-pipeline/pkg/logger"
	"github.com/nodewee/doc-pipeline/pkg/publish"
	"github.com/nodewee/doc-pipeline/pkg/resources"
	"github.com/nodewee/doc-pipeline/pkg/types"
	"github.com/nodewee/doc-pipeline/pkg/utils"
)

// Outcome is the terminal result of one run
type Outcome struct {
	RunID     string
	InputType types.InputType
	StagesRun []types.StageName
	Published []string
	Renames   []interfaces.Rename
	// Percent is the last progress value written to the status channel
	Percent  int
	Err      error
	ExitCode int
}

// Success reports whether the run completed
func (o *Outcome) Success() bool {
	return o.Err == nil
}

// Orchestrator drives a job through classification, resource resolution and
// the planned stages. Stages run one after another; each stage's output is
// published before the next one starts.
type Orchestrator struct {
	runner *engine.Runner
	status interfaces.StatusSink
	logger *logger.Logger

	// overridable for tests
	newLocator   func(jc *job.Context) interfaces.ResourceLocator
	newPublisher func(jc *job.Context) interfaces.OutputPublisher
	lookPath     func(string) (string, error)
}

// NewOrchestrator creates an orchestrator running stages on eng and
// reporting progress to status.
func NewOrchestrator(eng interfaces.StageEngine, status interfaces.StatusSink, log *logger.Logger) *Orchestrator {
	return &Orchestrator{
		runner: engine.NewRunner(eng, log),
		status: status,
		logger: log,
		newLocator: func(jc *job.Context) interfaces.ResourceLocator {
			return resources.NewLocator(jc.DataRoot, jc.InputDir, jc.WorkDir, log)
		},
		newPublisher: func(jc *job.Context) interfaces.OutputPublisher {
			return publish.NewPublisher(jc.OutputDir, log)
		},
		lookPath: exec.LookPath,
	}
}

// run holds the mutable state of one Run call
type run struct {
	jc       *job.Context
	work     *utils.WorkArea
	outcome  *Outcome
	finished bool
}

// Run executes the job and returns its outcome. It never panics on stage
// failure; the outcome carries the error and the process exit code.
func (o *Orchestrator) Run(ctx context.Context, jc *job.Context) *Outcome {
	r := &run{
		jc:      jc,
		work:    utils.NewWorkArea(jc.WorkDir, jc.Debug, o.logger),
		outcome: &Outcome{RunID: jc.RunID, Percent: constants.ProgressStart},
	}

	o.logger.Info("Run %s: language %s, %d input file(s)", jc.RunID, jc.Language, len(jc.Inputs))
	o.report(r, MessageStart, constants.ProgressStart)

	if jc.Debug {
		o.logEnvironment()
	}

	if err := r.work.EnsureBaseDir(); err != nil {
		return o.fail(r, utils.WrapError(err, utils.ErrorTypeIO, "failed to prepare working directory"))
	}

	// Start -> Classified
	classified, err := classifier.Classify(jc.Inputs)
	if err != nil {
		return o.fail(r, err)
	}
	r.outcome.InputType = classified.Type
	if len(classified.Conflicts) > 0 {
		o.logger.Warn("Inputs carry several input types %v; using %s", classified.Conflicts, classified.Type)
	}
	for _, name := range classified.Ignored {
		o.logger.Debug("Input %s has no recognised template, ignored for classification", name)
	}
	o.logger.Info("Input type: %s", classified.Type)

	// Classified -> ResourcesResolved
	res, err := o.newLocator(jc).Resolve(jc.Language)
	if err != nil {
		return o.fail(r, err)
	}
	if res.LexiconOverridden {
		o.logger.Info("Using lexicon supplied with the job")
	}

	plan, err := BuildPlan(jc, classified.Type, res)
	if err != nil {
		return o.fail(r, err)
	}
	if err := plan.Validate(); err != nil {
		return o.fail(r, err)
	}
	for _, w := range plan.Warnings {
		o.logger.Warn("%s", w)
	}
	if !jc.Options.Correction {
		o.logger.Info("Correction skipped as requested")
	}
	o.logger.Debug("Planned stages: %v", plan.StageNames())

	publisher := o.newPublisher(jc)
	for _, stage := range plan.Stages {
		if err := o.runStage(ctx, r, publisher, stage); err != nil {
			return o.fail(r, err)
		}
	}

	// Finalized -> Done
	o.report(r, MessageFinalize, constants.ProgressFinalize)
	renames, err := publisher.Normalize()
	r.outcome.Renames = renames
	if err != nil {
		return o.fail(r, err)
	}
	if err := r.work.Cleanup(); err != nil {
		o.logger.Warn("Work area cleanup failed: %v", err)
	}
	r.finished = true

	o.report(r, MessageDone, constants.ProgressDone)
	r.outcome.ExitCode = constants.ExitSuccess
	o.logger.ProgressAlways("✅", "Run %s completed: %d stage(s), %d published file(s)",
		jc.RunID, len(r.outcome.StagesRun), len(r.outcome.Published))
	return r.outcome
}

func (o *Orchestrator) runStage(ctx context.Context, r *run, publisher interfaces.OutputPublisher, stage Stage) error {
	o.report(r, stage.Message, stage.Percent)

	if _, err := r.work.CreateStageDir(stage.OutputDir); err != nil {
		return utils.WrapError(err, utils.ErrorTypeIO, "failed to create stage output directory").
			WithContext(utils.ContextStage, string(stage.Name))
	}

	if _, err := o.runner.Run(ctx, stage.Invocation(r.jc.WorkDir)); err != nil {
		return err
	}
	r.outcome.StagesRun = append(r.outcome.StagesRun, stage.Name)

	published, err := publisher.Publish(stage.OutputDir, constants.PublishExtension)
	if err != nil {
		return err
	}
	r.outcome.Published = append(r.outcome.Published, published...)
	return nil
}

// fail finishes the run with err. The captured stage logs were already
// dumped by the runner.
func (o *Orchestrator) fail(r *run, err error) *Outcome {
	o.logger.Error("%v", err)

	if !r.finished {
		if cleanupErr := r.work.Cleanup(); cleanupErr != nil {
			o.logger.Warn("Work area cleanup failed: %v", cleanupErr)
		}
	}

	if writeErr := o.status.Write("ERROR: "+err.Error(), r.outcome.Percent); writeErr != nil {
		o.logger.Warn("Failed to write status: %v", writeErr)
	}

	r.outcome.Err = err
	r.outcome.ExitCode = utils.ExitCode(err)
	return r.outcome
}

// report writes a progress update. The status channel is informational, so a
// failed write is logged and the run continues.
func (o *Orchestrator) report(r *run, message string, percent int) {
	r.outcome.Percent = percent
	if err := o.status.Write(message, percent); err != nil {
		o.logger.Warn("Failed to write status: %v", err)
	}
}

// logEnvironment writes the engine-related environment for debug runs
func (o *Orchestrator) logEnvironment() {
	var b strings.Builder
	for _, key := range []string{"LANG", "LC_ALL", "NXF_HOME", "LM_PREFIX", "VIRTUAL_ENV"} {
		value := os.Getenv(key)
		if value == "" {
			value = "(none)"
		}
		fmt.Fprintf(&b, "%s: %s\n", key, value)
	}
	enginePath, err := o.lookPath(constants.DefaultEnginePath)
	if err != nil {
		enginePath = "(not found)"
	}
	fmt.Fprintf(&b, "nextflow: %s\n", enginePath)
	o.logger.Section("Environment (locale forced to en_US.UTF-8)", b.String())
}
