package types

// InputType identifies the kind of documents a job was submitted with.
// The string value is the input template tag attached by the host, which is
// also what the OCR workflow expects for --inputtype.
type InputType string

const (
	InputTypeImageSet  InputType = "images"
	InputTypePDFImages InputType = "pdfimages"
	InputTypePDFText   InputType = "pdftext"
	InputTypeTIF       InputType = "tif"
	InputTypeJPG       InputType = "jpg"
	InputTypePNG       InputType = "png"
	InputTypeGIF       InputType = "gif"
	InputTypeFoLiAOCR  InputType = "foliaocr" // FoLiA XML that already carries OCR text
	InputTypeTextOCR   InputType = "textocr"  // plain text that already is OCR output
)

// AllInputTypes lists every recognised input type in a stable order.
var AllInputTypes = []InputType{
	InputTypeImageSet,
	InputTypePDFImages,
	InputTypePDFText,
	InputTypeTIF,
	InputTypeJPG,
	InputTypePNG,
	InputTypeGIF,
	InputTypeFoLiAOCR,
	InputTypeTextOCR,
}

// ParseInputType returns the input type for a template tag.
func ParseInputType(tag string) (InputType, bool) {
	for _, t := range AllInputTypes {
		if string(t) == tag {
			return t, true
		}
	}
	return "", false
}

// NeedsOCR reports whether documents of this type must pass through the OCR stage.
func (t InputType) NeedsOCR() bool {
	switch t {
	case InputTypeFoLiAOCR, InputTypeTextOCR, InputTypePDFText:
		return false
	default:
		return true
	}
}

// DocumentFormat is the format tag handed to a workflow for its input directory.
type DocumentFormat string

const (
	FormatFoLiA DocumentFormat = "folia"
	FormatText  DocumentFormat = "text"
	FormatPDF   DocumentFormat = "pdf"
)

// DirectFormat returns the format of the original input files for types that
// bypass OCR. Types that need OCR produce FoLiA.
func (t InputType) DirectFormat() DocumentFormat {
	switch t {
	case InputTypeTextOCR:
		return FormatText
	case InputTypePDFText:
		return FormatPDF
	default:
		return FormatFoLiA
	}
}

// StageName names a pipeline stage.
type StageName string

const (
	StageOCR        StageName = "ocr"
	StageCorrection StageName = "ticcl"
	StageTokenizer  StageName = "ucto"
	StageEnrichment StageName = "frog"
)

// ResourceKind identifies a per-language correction resource.
type ResourceKind string

const (
	ResourceLexicon   ResourceKind = "lexicon"
	ResourceAlphabet  ResourceKind = "alphabet"
	ResourceConfusion ResourceKind = "confusion"
	ResourceUnknown   ResourceKind = "unknown"
)

// PDFHandling selects how the correction stage treats multi-page PDFs.
type PDFHandling string

const (
	PDFReassemble PDFHandling = "reassemble"
	PDFSingle     PDFHandling = "single"
)
