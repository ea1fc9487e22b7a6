// Package pipeline decides which stages a job needs and drives them in order.
package pipeline

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nodewee/doc-pipeline/pkg/constants"
	"github.com/nodewee/doc-pipeline/pkg/interfaces"
	"github.com/nodewee/doc-pipeline/pkg/job"
	"github.com/nodewee/doc-pipeline/pkg/types"
	"github.com/nodewee/doc-pipeline/pkg/utils"
)

// Workflow script names, without extension
const (
	WorkflowOCR        = "ocr"
	WorkflowCorrection = "ticcl"
	WorkflowTokenizer  = "tokenize"
	WorkflowEnrichment = "frog"
)

// Status messages written before each stage
const (
	MessageStart      = "Starting..."
	MessageOCR        = "Running OCR Pipeline"
	MessageCorrection = "Running TICCL Pipeline"
	MessageTokenizer  = "Running Tokeniser (ucto)"
	MessageEnrichment = "Running Frog Pipeline (linguistic enrichment)"
	MessageFinalize   = "Finalizing output"
	MessageDone       = "All done!"
)

// Stage is one planned engine invocation
type Stage struct {
	Name        types.StageName
	Workflow    string
	InputDir    string
	OutputDir   string
	InputFormat types.DocumentFormat
	Message     string
	Percent     int
	Args        []string
}

// Invocation returns the engine call for the stage
func (s Stage) Invocation(workDir string) interfaces.StageInvocation {
	return interfaces.StageInvocation{
		Stage:    s.Name,
		Workflow: s.Workflow,
		Args:     append([]string(nil), s.Args...),
		WorkDir:  workDir,
	}
}

// Plan is the ordered list of stages for one run
type Plan struct {
	InputType types.InputType
	Stages    []Stage
	// Warnings are noteworthy option combinations the plan had to resolve
	Warnings []string
}

// StageNames returns the planned stage names in order
func (p *Plan) StageNames() []types.StageName {
	names := make([]types.StageName, 0, len(p.Stages))
	for _, s := range p.Stages {
		names = append(names, s.Name)
	}
	return names
}

// Validate checks that no two stages share an output directory and that
// progress only moves forward.
func (p *Plan) Validate() error {
	seen := make(map[string]types.StageName)
	last := constants.ProgressStart
	for _, s := range p.Stages {
		if prev, ok := seen[s.OutputDir]; ok {
			return utils.NewValidationError(
				fmt.Sprintf("stages %s and %s share output directory %s", prev, s.Name, s.OutputDir), nil)
		}
		seen[s.OutputDir] = s.Name
		if s.Percent <= last {
			return utils.NewValidationError(
				fmt.Sprintf("stage %s does not advance progress (%d after %d)", s.Name, s.Percent, last), nil)
		}
		last = s.Percent
	}
	if last >= constants.ProgressFinalize {
		return utils.NewValidationError("stage progress overlaps finalization", nil)
	}
	return nil
}

// BuildPlan derives the stage sequence from the job options, the classified
// input type and the resolved correction resources. It has no side effects.
func BuildPlan(jc *job.Context, inputType types.InputType, res *interfaces.ResourceSet) (*Plan, error) {
	if jc == nil {
		return nil, utils.NewValidationError("job context is required", nil)
	}
	plan := &Plan{InputType: inputType}
	opts := jc.Options

	nextDir := jc.InputDir
	nextFormat := inputType.DirectFormat()

	if inputType.NeedsOCR() {
		out := filepath.Join(jc.WorkDir, constants.OCROutputDir)
		plan.Stages = append(plan.Stages, Stage{
			Name:        types.StageOCR,
			Workflow:    WorkflowOCR,
			InputDir:    jc.InputDir,
			OutputDir:   out,
			InputFormat: types.DocumentFormat(inputType),
			Message:     MessageOCR,
			Percent:     constants.ProgressOCR,
			Args: []string{
				"--inputdir", jc.InputDir,
				"--outputdir", out,
				"--inputtype", string(inputType),
				"--language", jc.Language,
			},
		})
		nextDir, nextFormat = out, types.FormatFoLiA
	}

	var textClass []string
	if opts.Correction {
		if res == nil {
			return nil, utils.NewValidationError("correction requires resolved language resources", nil)
		}
		out := filepath.Join(jc.WorkDir, constants.CorrectionOutputDir)
		plan.Stages = append(plan.Stages, Stage{
			Name:        types.StageCorrection,
			Workflow:    WorkflowCorrection,
			InputDir:    nextDir,
			OutputDir:   out,
			InputFormat: nextFormat,
			Message:     MessageCorrection,
			Percent:     constants.ProgressCorrection,
			Args: []string{
				"--inputdir", nextDir,
				"--inputtype", string(nextFormat),
				"--outputdir", out,
				"--lexicon", res.Lexicon,
				"--alphabet", res.Alphabet,
				"--charconfus", res.Confusion,
				"--clip", strconv.Itoa(opts.Rank),
				"--distance", strconv.Itoa(opts.Distance),
				"--pdfhandling", string(PDFHandlingFor(opts)),
			},
		})
		nextDir, nextFormat = out, types.FormatFoLiA
	} else {
		textClass = []string{"--inputclass", "OCR", "--outputclass", "current"}
	}

	enrich, warning := EnrichmentEligible(jc)
	if warning != "" {
		plan.Warnings = append(plan.Warnings, warning)
	}

	switch {
	case enrich:
		out := filepath.Join(jc.WorkDir, constants.EnrichmentOutputDir)
		args := append([]string(nil), textClass...)
		if skip := SkipDirective(opts.Analyses); skip != "" {
			args = append(args, skip)
		}
		args = append(args,
			"--inputdir", nextDir,
			"--inputformat", string(nextFormat),
			"--extension", constants.FoLiAExtension,
			"--outputdir", out,
		)
		plan.Stages = append(plan.Stages, Stage{
			Name:        types.StageEnrichment,
			Workflow:    WorkflowEnrichment,
			InputDir:    nextDir,
			OutputDir:   out,
			InputFormat: nextFormat,
			Message:     MessageEnrichment,
			Percent:     constants.ProgressFinalStage,
			Args:        args,
		})
		if opts.Tokenizer {
			plan.Warnings = append(plan.Warnings, "tokenizer skipped, enrichment already tokenizes")
		}
	case opts.Tokenizer:
		out := filepath.Join(jc.WorkDir, constants.TokenizerOutputDir)
		args := append([]string(nil), textClass...)
		args = append(args,
			"--language", jc.Language,
			"--inputformat", string(nextFormat),
			"--inputdir", nextDir,
			"--extension", constants.FoLiAExtension,
			"--outputdir", out,
		)
		plan.Stages = append(plan.Stages, Stage{
			Name:        types.StageTokenizer,
			Workflow:    WorkflowTokenizer,
			InputDir:    nextDir,
			OutputDir:   out,
			InputFormat: nextFormat,
			Message:     MessageTokenizer,
			Percent:     constants.ProgressFinalStage,
			Args:        args,
		})
	}

	return plan, nil
}

// PDFHandlingFor returns the correction stage's PDF mode for the options
func PDFHandlingFor(opts job.Options) types.PDFHandling {
	if opts.Reassemble {
		return types.PDFReassemble
	}
	return types.PDFSingle
}

// EnrichmentEligible reports whether enrichment runs for the job. Selecting
// any sub-analysis enables it even when the top-level option is off. Only
// the enrichment language is supported; asking for another language yields a
// warning instead.
func EnrichmentEligible(jc *job.Context) (bool, string) {
	requested := jc.Options.Enrichment || jc.Options.Analyses.Any()
	if !requested {
		return false, ""
	}
	if jc.Language != constants.EnrichmentLanguage {
		if jc.Options.Enrichment {
			return false, fmt.Sprintf("enrichment is only available for %s, not %s; skipped",
				constants.EnrichmentLanguage, jc.Language)
		}
		return false, ""
	}
	return true, ""
}

// SkipDirective returns the --skip argument for the sub-analyses that were
// not selected, or "" when everything runs. Part-of-speech tagging is never
// skipped.
func SkipDirective(a job.Analyses) string {
	var b strings.Builder
	if !a.Lemma {
		b.WriteString("l")
	}
	if !a.Parser {
		b.WriteString("mp")
	}
	if !a.Morph {
		b.WriteString("a")
	}
	if !a.NER {
		b.WriteString("n")
	}
	if !a.Chunker {
		b.WriteString("c")
	}
	if b.Len() == 0 {
		return ""
	}
	return "--skip=" + b.String()
}
