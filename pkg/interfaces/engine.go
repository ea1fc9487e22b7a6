package interfaces

import (
	"context"

	"github.com/nodewee/doc-pipeline/pkg/types"
)

// StageInvocation describes one external engine call
type StageInvocation struct {
	Stage    types.StageName
	Workflow string   // workflow script name without extension, e.g. "ocr"
	Args     []string // flat argument list passed to the workflow
	WorkDir  string   // directory the engine runs in; logs and trace land here
}

// StageResult holds everything the engine left behind for one invocation
type StageResult struct {
	Command  string
	ExitCode int
	Stdout   string
	Stderr   string
	Trace    string
	HasTrace bool
}

// StageEngine runs external processing workflows. The orchestrator treats the
// engine as opaque apart from its exit status, its two log streams and the
// optional trace.
type StageEngine interface {
	// Run executes the workflow and returns its captured output. A non-nil
	// error means the engine could not be started at all; a workflow that ran
	// and failed is reported through StageResult.ExitCode.
	Run(ctx context.Context, inv StageInvocation) (*StageResult, error)

	// Name returns the engine name
	Name() string
}
