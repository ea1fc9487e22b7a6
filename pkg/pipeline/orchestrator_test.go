package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nodewee/doc-pipeline/pkg/constants"
	"github.com/nodewee/doc-pipeline/pkg/interfaces"
	"github.com/nodewee/doc-pipeline/pkg/job"
	"github.com/nodewee/doc-pipeline/pkg/logger"
	"github.com/nodewee/doc-pipeline/pkg/types"
	"github.com/nodewee/doc-pipeline/pkg/utils"
)

// fakeEngine writes one FoLiA file per stage into the stage output directory
// and leaves scratch files in the work area like the real engine does.
type fakeEngine struct {
	fail    map[types.StageName]int
	stderr  string
	outputs map[types.StageName]string
	calls   []interfaces.StageInvocation
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Run(_ context.Context, inv interfaces.StageInvocation) (*interfaces.StageResult, error) {
	f.calls = append(f.calls, inv)
	scratch := filepath.Join(inv.WorkDir, constants.ScratchDirName, string(inv.Stage))
	if err := os.MkdirAll(scratch, 0o755); err != nil {
		return nil, err
	}

	if code := f.fail[inv.Stage]; code != 0 {
		return &interfaces.StageResult{ExitCode: code, Stderr: f.stderr, Stdout: "partial"}, nil
	}

	name := f.outputs[inv.Stage]
	if name == "" {
		name = "doc." + string(inv.Stage) + ".folia.xml"
	}
	out := argValue(inv.Args, "--outputdir")
	if err := os.WriteFile(filepath.Join(out, name), []byte("<FoLiA/>"), 0o644); err != nil {
		return nil, err
	}
	return &interfaces.StageResult{Stdout: "ok"}, nil
}

func (f *fakeEngine) stages() []types.StageName {
	var names []types.StageName
	for _, c := range f.calls {
		names = append(names, c.Stage)
	}
	return names
}

type recordingSink struct {
	messages []string
	percents []int
}

func (s *recordingSink) Write(message string, percent int) error {
	s.messages = append(s.messages, message)
	s.percents = append(s.percents, percent)
	return nil
}

func (s *recordingSink) last() (string, int) {
	n := len(s.messages)
	return s.messages[n-1], s.percents[n-1]
}

type harness struct {
	jc     *job.Context
	engine *fakeEngine
	sink   *recordingSink
	log    *bytes.Buffer
	orch   *Orchestrator
}

func newHarness(t *testing.T, lang string, resourceFiles ...string) *harness {
	t.Helper()
	root := t.TempDir()
	jc := &job.Context{
		RunID:     "test-run",
		Language:  lang,
		Options:   job.DefaultOptions(),
		Inputs:    []job.InputFile{{Name: "page.tif", Template: "tif"}},
		InputDir:  filepath.Join(root, "input"),
		OutputDir: filepath.Join(root, "output"),
		WorkDir:   root,
		DataRoot:  filepath.Join(root, "piccldata"),
	}
	if err := os.MkdirAll(jc.InputDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if resourceFiles == nil {
		resourceFiles = []string{"nld.dict", "nld.chars", "nld.confusion"}
	}
	if len(resourceFiles) > 0 {
		dir := filepath.Join(jc.DataRoot, "data", "int", resourceDirName(lang))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatal(err)
		}
		for _, name := range resourceFiles {
			if err := os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}

	h := &harness{
		jc:     jc,
		engine: &fakeEngine{},
		sink:   &recordingSink{},
		log:    &bytes.Buffer{},
	}
	h.orch = NewOrchestrator(h.engine, h.sink, logger.NewLoggerWithWriter("debug", true, h.log))
	h.orch.lookPath = func(string) (string, error) { return "/usr/local/bin/nextflow", nil }
	return h
}

// resourceDirName returns the directory the locator reads for lang
func resourceDirName(lang string) string {
	if lang == constants.FrakturGerman {
		return constants.StandardGerman
	}
	return lang
}

func (h *harness) run() *Outcome {
	return h.orch.Run(context.Background(), h.jc)
}

func (h *harness) scratchExists() bool {
	return utils.Exists(filepath.Join(h.jc.WorkDir, constants.ScratchDirName))
}

func assertIncreasing(t *testing.T, percents []int) {
	t.Helper()
	for i := 1; i < len(percents); i++ {
		if percents[i] <= percents[i-1] {
			t.Errorf("progress not increasing: %v", percents)
			return
		}
	}
}

func TestRunOCRCorrectionTokenizer(t *testing.T) {
	h := newHarness(t, "nld")
	h.jc.Options.Correction = true
	h.jc.Options.Tokenizer = true

	out := h.run()
	if !out.Success() || out.ExitCode != 0 {
		t.Fatalf("run failed: %v (exit %d)", out.Err, out.ExitCode)
	}
	want := []types.StageName{types.StageOCR, types.StageCorrection, types.StageTokenizer}
	if !sameStages(h.engine.stages(), want) || !sameStages(out.StagesRun, want) {
		t.Errorf("stages = %v, want %v", h.engine.stages(), want)
	}
	if len(out.Published) != 3 {
		t.Errorf("published = %v, want one file per stage", out.Published)
	}

	msg, pct := h.sink.last()
	if msg != MessageDone || pct != 100 || out.Percent != 100 {
		t.Errorf("final status = %q %d", msg, pct)
	}
	if h.sink.percents[0] != 0 || h.sink.messages[0] != MessageStart {
		t.Errorf("first status = %q %d", h.sink.messages[0], h.sink.percents[0])
	}
	assertIncreasing(t, h.sink.percents)

	if h.scratchExists() {
		t.Error("work area should be removed after a successful run")
	}
	for _, call := range h.engine.calls {
		if call.WorkDir != h.jc.WorkDir {
			t.Errorf("%s ran in %s", call.Stage, call.WorkDir)
		}
	}
}

func TestRunOCRFailure(t *testing.T) {
	h := newHarness(t, "nld")
	h.jc.Options.Correction = true
	h.engine.fail = map[types.StageName]int{types.StageOCR: 1}
	h.engine.stderr = "tesseract: cannot open page.tif"

	out := h.run()
	if out.ExitCode != constants.ExitFailure {
		t.Fatalf("exit = %d, want 1", out.ExitCode)
	}
	if utils.GetErrorType(out.Err) != utils.ErrorTypeStageFailed {
		t.Fatalf("err = %v, want stage failure", out.Err)
	}
	if stage := utils.WrapError(out.Err, "", "run").ContextString(utils.ContextStage); stage != "ocr" {
		t.Errorf("failed stage = %q", stage)
	}
	if len(h.engine.calls) != 1 {
		t.Errorf("stages after failure were invoked: %v", h.engine.stages())
	}
	if h.scratchExists() {
		t.Error("work area should be removed when not debugging")
	}

	logs := h.log.String()
	if !strings.Contains(logs, "tesseract: cannot open page.tif") || !strings.Contains(logs, "[ocr] fake standard error output") {
		t.Errorf("captured OCR logs missing from diagnostics:\n%s", logs)
	}

	msg, pct := h.sink.last()
	if !strings.HasPrefix(msg, "ERROR") || pct != constants.ProgressOCR {
		t.Errorf("failure status = %q %d", msg, pct)
	}
}

func TestRunFailureKeepsWorkAreaInDebug(t *testing.T) {
	h := newHarness(t, "nld")
	h.jc.Debug = true
	h.engine.fail = map[types.StageName]int{types.StageOCR: 2}

	out := h.run()
	if out.ExitCode != constants.ExitFailure {
		t.Fatalf("exit = %d", out.ExitCode)
	}
	if !h.scratchExists() {
		t.Error("debug run should keep the work area")
	}
	if !strings.Contains(h.log.String(), "/usr/local/bin/nextflow") {
		t.Error("debug run should log environment diagnostics")
	}
}

func TestRunUnclassifiableInput(t *testing.T) {
	h := newHarness(t, "nld")
	h.jc.Inputs = []job.InputFile{{Name: "a.docx", Template: "docx"}, {Name: "b", Template: ""}}

	out := h.run()
	if out.ExitCode != constants.ExitUnclassifiable {
		t.Errorf("exit = %d, want %d", out.ExitCode, constants.ExitUnclassifiable)
	}
	if len(h.engine.calls) != 0 {
		t.Errorf("no stage should run, got %v", h.engine.stages())
	}
	if _, pct := h.sink.last(); pct != 0 {
		t.Errorf("failure percent = %d, want 0", pct)
	}
}

func TestRunMissingResources(t *testing.T) {
	tests := []struct {
		name  string
		files []string
	}{
		{"missing directory", []string{}},
		{"missing confusion table", []string{"nld.dict", "nld.chars"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "nld", tt.files...)
			h.jc.Options.Correction = true

			out := h.run()
			if out.ExitCode != constants.ExitMissingResources {
				t.Errorf("exit = %d, want %d", out.ExitCode, constants.ExitMissingResources)
			}
			if et := utils.GetErrorType(out.Err); et != utils.ErrorTypeResourceDirMissing && et != utils.ErrorTypeResourceFileMissing {
				t.Errorf("err = %v", out.Err)
			}
			if len(h.engine.calls) != 0 {
				t.Errorf("no stage should run, got %v", h.engine.stages())
			}
		})
	}
}

func TestRunNERForcesEnrichment(t *testing.T) {
	h := newHarness(t, "nld")
	h.jc.Inputs = []job.InputFile{{Name: "doc.folia.xml", Template: "foliaocr"}}
	h.jc.Options.Analyses.NER = true

	out := h.run()
	if !out.Success() {
		t.Fatalf("run failed: %v", out.Err)
	}
	if !sameStages(out.StagesRun, []types.StageName{types.StageEnrichment}) {
		t.Fatalf("stages = %v", out.StagesRun)
	}
	args := h.engine.calls[0].Args
	if !hasArg(args, "--skip=lmpac") {
		t.Errorf("skip directive missing: %v", args)
	}
	if argValue(args, "--inputdir") != h.jc.InputDir || argValue(args, "--inputclass") != "OCR" {
		t.Errorf("enrichment should read the raw OCR input: %v", args)
	}
}

func TestRunFrakturGerman(t *testing.T) {
	h := newHarness(t, "deu_frak", "deu.dict", "deu.chars", "deu.confusion")
	h.jc.Options.Correction = true

	out := h.run()
	if !out.Success() {
		t.Fatalf("run failed: %v", out.Err)
	}
	if lang := argValue(h.engine.calls[0].Args, "--language"); lang != "deu_frak" {
		t.Errorf("OCR language = %q", lang)
	}
	lexicon := argValue(h.engine.calls[1].Args, "--lexicon")
	target, err := os.Readlink(lexicon)
	if err != nil || !strings.Contains(target, filepath.Join("int", "deu")) {
		t.Errorf("lexicon %s -> %s (%v)", lexicon, target, err)
	}
}

func TestRunNormalizesOutputNames(t *testing.T) {
	h := newHarness(t, "nld")
	h.jc.Options.Correction = true
	h.jc.Options.Enrichment = true
	h.engine.outputs = map[types.StageName]string{
		types.StageOCR:        "doc.ocr.folia.xml",
		types.StageCorrection: "doc.ocr.ticcl.folia.xml",
		types.StageEnrichment: "doc.ocr.ticcl.frogged.folia.xml",
	}

	out := h.run()
	if !out.Success() {
		t.Fatalf("run failed: %v", out.Err)
	}
	if len(out.Renames) != 2 {
		t.Errorf("renames = %+v", out.Renames)
	}
	for _, name := range []string{"doc.ocr.folia.xml", "doc.ticcl.folia.xml", "doc.frogged.folia.xml"} {
		if !utils.Exists(filepath.Join(h.jc.OutputDir, name)) {
			t.Errorf("%s missing from output", name)
		}
	}
}

func TestRunNonDutchEnrichmentWarns(t *testing.T) {
	h := newHarness(t, "eng", "eng.dict", "eng.chars", "eng.confusion")
	h.jc.Options.Enrichment = true
	h.jc.Options.Tokenizer = true

	out := h.run()
	if !out.Success() {
		t.Fatalf("run failed: %v", out.Err)
	}
	if !sameStages(out.StagesRun, []types.StageName{types.StageOCR, types.StageTokenizer}) {
		t.Errorf("stages = %v", out.StagesRun)
	}
	if !strings.Contains(h.log.String(), "enrichment is only available for nld") {
		t.Error("expected a warning about the unsupported language")
	}
}
