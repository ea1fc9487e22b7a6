package constants

// Application constants
const (
	AppName = "doc-pipeline"
	// Note: AppVersion is managed via build-time ldflags injection in main.go
)

// File processing constants
const (
	DefaultFilePermission = 0644
	DefaultDirPermission  = 0755
)

// Process exit codes reported to the host job system
const (
	ExitSuccess          = 0
	ExitFailure          = 1 // stage failures and usage errors alike
	ExitMissingResources = 4
	ExitUnclassifiable   = 5
)

// Working directory layout. Every stage writes to its own directory so that
// no stage output is ever overwritten by a later stage.
const (
	OCROutputDir        = "ocr_output"
	CorrectionOutputDir = "ticcl_out"
	TokenizerOutputDir  = "tok_output"
	EnrichmentOutputDir = "frog_output"

	// ScratchDirName is the engine's transient work area inside the working directory
	ScratchDirName = "work"

	// TraceFileName is written by the engine when invoked with -with-trace
	TraceFileName = "trace.txt"

	// Log file name patterns, formatted with the stage name
	StdoutLogPattern = "%s.nextflow.out.log"
	StderrLogPattern = "%s.nextflow.err.log"
)

// Correction resources linked into the working directory
const (
	LexiconFileName   = "lexicon.lst"
	AlphabetFileName  = "alphabet.lst"
	ConfusionFileName = "confusion.lst"

	// ResourceSubdir is the per-language resource location under the data root
	ResourceSubdir = "data/int"

	LexiconSuffix   = ".dict"
	AlphabetSuffix  = ".chars"
	ConfusionSuffix = ".confusion"
)

// Language handling
const (
	// EnrichmentLanguage is the only language the enrichment engine supports
	EnrichmentLanguage = "nld"

	FrakturGerman  = "deu_frak"
	StandardGerman = "deu"
)

// Output publication
const (
	PublishExtension   = "xml"
	FoLiAExtension     = "folia.xml"
	RetainedSuffixes   = 3
	NormalizePattern   = "*.folia.xml"
	DefaultRemoteRepo  = "LanguageMachines/PICCL"
	WorkflowScriptExt  = ".nf"
	DefaultEnginePath  = "nextflow"
	DefaultCorrectRank = 10
	DefaultMaxDistance = 2
)

// Progress percentages reported on the status channel
const (
	ProgressStart      = 0
	ProgressOCR        = 5
	ProgressCorrection = 50
	ProgressFinalStage = 75
	ProgressFinalize   = 95
	ProgressDone       = 100
)

// StageTags are the name fragments appended by each stage to output files
var StageTags = []string{"ocr", "ticcl", "tok", "frogged", "folia"}
