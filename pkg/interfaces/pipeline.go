package interfaces

// ResourceSet references the correction resources for one language by path
type ResourceSet struct {
	Language  string
	Lexicon   string
	Alphabet  string
	Confusion string
	// LexiconOverridden is true when the job supplied its own lexicon
	LexiconOverridden bool
}

// ResourceLocator resolves correction resources for a language
type ResourceLocator interface {
	Resolve(lang string) (*ResourceSet, error)
}

// OutputPublisher exposes stage outputs in the job's output area
type OutputPublisher interface {
	// Publish links every file with the given extension from dir into the output area
	Publish(dir, extension string) ([]string, error)
	// Normalize shortens concatenated stage suffixes in published file names
	Normalize() ([]Rename, error)
}

// Rename records one file name change made by the normalization pass
type Rename struct {
	From string
	To   string
}
