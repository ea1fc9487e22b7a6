package job

import (
	"github.com/google/uuid"

	"github.com/nodewee/doc-pipeline/pkg/constants"
)

// InputFile is one uploaded document together with the template tag the host
// attached to it
type InputFile struct {
	Name     string
	Template string
}

// Analyses toggles the individual enrichment sub-analyses
type Analyses struct {
	POS     bool
	Lemma   bool
	Morph   bool
	NER     bool
	Parser  bool
	Chunker bool
}

// Any reports whether at least one sub-analysis was selected
func (a Analyses) Any() bool {
	return a.POS || a.Lemma || a.Morph || a.NER || a.Parser || a.Chunker
}

// Options holds the user-selected pipeline options
type Options struct {
	Correction bool
	Enrichment bool
	Tokenizer  bool
	Reassemble bool
	Rank       int
	Distance   int
	Analyses   Analyses
}

// Context is the resolved job: options plus the directories the run works in.
// It is built once before the pipeline starts and only read afterwards.
type Context struct {
	RunID     string
	Language  string
	Options   Options
	Inputs    []InputFile
	InputDir  string
	OutputDir string
	WorkDir   string
	DataRoot  string
	Debug     bool
}

// DefaultOptions returns the options used when the job leaves a value unset
func DefaultOptions() Options {
	return Options{
		Rank:     constants.DefaultCorrectRank,
		Distance: constants.DefaultMaxDistance,
	}
}

// NewRunID returns a fresh identifier for one pipeline run
func NewRunID() string {
	return uuid.NewString()
}
