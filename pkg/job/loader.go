package job

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nodewee/doc-pipeline/pkg/utils"
)

// Flag is a job option that hosts send as yes/no, true/false or 1/0
type Flag bool

// UnmarshalYAML accepts any of the boolean spellings used by job hosts
func (f *Flag) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar flag value", value.Line)
	}
	switch strings.ToLower(strings.TrimSpace(value.Value)) {
	case "yes", "y", "true", "on", "1":
		*f = true
	case "no", "n", "false", "off", "0", "":
		*f = false
	default:
		return fmt.Errorf("line %d: invalid flag value %q", value.Line, value.Value)
	}
	return nil
}

type inputEntry struct {
	Filename      string `yaml:"filename"`
	InputTemplate string `yaml:"inputtemplate"`
}

// paramsFile mirrors the parameter ids of the job host
type paramsFile struct {
	Lang       string       `yaml:"lang"`
	Ticcl      Flag         `yaml:"ticcl"`
	Frog       Flag         `yaml:"frog"`
	Ucto       Flag         `yaml:"ucto"`
	Reassemble Flag         `yaml:"reassemble"`
	Rank       *int         `yaml:"rank"`
	Distance   *int         `yaml:"distance"`
	POS        Flag         `yaml:"pos"`
	Lemma      Flag         `yaml:"lemma"`
	Morph      Flag         `yaml:"morph"`
	NER        Flag         `yaml:"ner"`
	Parser     Flag         `yaml:"parser"`
	Chunker    Flag         `yaml:"chunker"`
	Debug      Flag         `yaml:"debug"`
	Inputs     []inputEntry `yaml:"inputs"`
}

// Dirs are the directories the host assigns to a run
type Dirs struct {
	InputDir  string
	OutputDir string
	WorkDir   string
	DataRoot  string
}

// Load reads a job parameter file and resolves it against dirs
func Load(path string, dirs Dirs) (*Context, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeIO, "failed to read job parameters")
	}
	return Parse(data, dirs)
}

// Parse builds a job context from job parameter YAML
func Parse(data []byte, dirs Dirs) (*Context, error) {
	var pf paramsFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeValidation, "failed to parse job parameters")
	}

	opts := DefaultOptions()
	opts.Correction = bool(pf.Ticcl)
	opts.Enrichment = bool(pf.Frog)
	opts.Tokenizer = bool(pf.Ucto)
	opts.Reassemble = bool(pf.Reassemble)
	if pf.Rank != nil {
		opts.Rank = *pf.Rank
	}
	if pf.Distance != nil {
		opts.Distance = *pf.Distance
	}
	opts.Analyses = Analyses{
		POS:     bool(pf.POS),
		Lemma:   bool(pf.Lemma),
		Morph:   bool(pf.Morph),
		NER:     bool(pf.NER),
		Parser:  bool(pf.Parser),
		Chunker: bool(pf.Chunker),
	}

	inputs := make([]InputFile, 0, len(pf.Inputs))
	for _, in := range pf.Inputs {
		inputs = append(inputs, InputFile{Name: in.Filename, Template: in.InputTemplate})
	}

	jc := &Context{
		RunID:    NewRunID(),
		Language: strings.TrimSpace(pf.Lang),
		Options:  opts,
		Inputs:   inputs,
		Debug:    bool(pf.Debug),
	}
	if err := jc.resolveDirs(dirs); err != nil {
		return nil, err
	}
	if err := jc.Validate(); err != nil {
		return nil, err
	}
	return jc, nil
}

func (jc *Context) resolveDirs(dirs Dirs) error {
	resolved := make([]string, 4)
	for i, d := range []string{dirs.InputDir, dirs.OutputDir, dirs.WorkDir, dirs.DataRoot} {
		if d == "" {
			continue
		}
		abs, err := utils.GetAbsolutePath(d)
		if err != nil {
			return utils.WrapError(err, utils.ErrorTypeValidation, "invalid directory")
		}
		resolved[i] = abs
	}
	jc.InputDir, jc.OutputDir, jc.WorkDir, jc.DataRoot = resolved[0], resolved[1], resolved[2], resolved[3]
	return nil
}

// Validate checks that the context is complete enough to start a run
func (jc *Context) Validate() error {
	var problems []string
	if jc.Language == "" {
		problems = append(problems, "language (lang) is required")
	}
	if jc.Options.Rank < 1 {
		problems = append(problems, fmt.Sprintf("rank must be positive, got %d", jc.Options.Rank))
	}
	if jc.Options.Distance < 1 {
		problems = append(problems, fmt.Sprintf("distance must be positive, got %d", jc.Options.Distance))
	}
	if jc.InputDir == "" {
		problems = append(problems, "input directory is required")
	}
	if jc.OutputDir == "" {
		problems = append(problems, "output directory is required")
	}
	if jc.WorkDir == "" {
		problems = append(problems, "working directory is required")
	}
	if jc.DataRoot == "" {
		problems = append(problems, "data root is required")
	}
	if len(problems) > 0 {
		return utils.NewValidationError("invalid job parameters",
			fmt.Errorf("%s", strings.Join(problems, "; ")))
	}
	return nil
}
