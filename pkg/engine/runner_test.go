package engine

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/nodewee/doc-pipeline/pkg/interfaces"
	"github.com/nodewee/doc-pipeline/pkg/logger"
	"github.com/nodewee/doc-pipeline/pkg/types"
	"github.com/nodewee/doc-pipeline/pkg/utils"
)

// fakeEngine returns a canned result
type fakeEngine struct {
	result *interfaces.StageResult
	err    error
	calls  []interfaces.StageInvocation
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Run(ctx context.Context, inv interfaces.StageInvocation) (*interfaces.StageResult, error) {
	f.calls = append(f.calls, inv)
	return f.result, f.err
}

func ocrInvocation() interfaces.StageInvocation {
	return interfaces.StageInvocation{Stage: types.StageOCR, Workflow: "ocr", WorkDir: "/tmp"}
}

func TestRunnerSuccessDumpsLogs(t *testing.T) {
	var buf bytes.Buffer
	eng := &fakeEngine{result: &interfaces.StageResult{Stdout: "out text", Stderr: "err text"}}
	r := NewRunner(eng, logger.NewLoggerWithWriter("error", false, &buf))

	if _, err := r.Run(context.Background(), ocrInvocation()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"[ocr] fake standard error output", "err text", "[ocr] fake standard output", "out text"} {
		if !strings.Contains(out, want) {
			t.Errorf("diagnostics missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "trace summary") {
		t.Error("no trace was produced, none should be dumped")
	}
	if len(eng.calls) != 1 {
		t.Errorf("engine called %d times", len(eng.calls))
	}
}

func TestRunnerNonZeroExit(t *testing.T) {
	var buf bytes.Buffer
	eng := &fakeEngine{result: &interfaces.StageResult{
		ExitCode: 3,
		Stderr:   "ERROR ~ process failed",
		Trace:    "task_id\tstatus\n1\tFAILED",
		HasTrace: true,
	}}
	r := NewRunner(eng, logger.NewLoggerWithWriter("error", false, &buf))

	_, err := r.Run(context.Background(), ocrInvocation())
	if utils.GetErrorType(err) != utils.ErrorTypeStageFailed {
		t.Fatalf("err = %v, want stage failed", err)
	}
	var appErr *utils.AppError
	if !errors.As(err, &appErr) || appErr.ContextString(utils.ContextStage) != "ocr" {
		t.Errorf("stage context missing: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "ERROR ~ process failed") || !strings.Contains(out, "1\tFAILED") {
		t.Errorf("logs and trace should be dumped on failure:\n%s", out)
	}
}

func TestRunnerStartFailure(t *testing.T) {
	eng := &fakeEngine{result: &interfaces.StageResult{ExitCode: -1}, err: errors.New("exec: not found")}
	r := NewRunner(eng, logger.Discard())

	_, err := r.Run(context.Background(), ocrInvocation())
	if utils.GetErrorType(err) != utils.ErrorTypeStageFailed {
		t.Fatalf("err = %v, want stage failed", err)
	}
	if !strings.Contains(err.Error(), "exec: not found") {
		t.Errorf("cause lost: %v", err)
	}
}
