// Package resources resolves the per-language lexicon, alphabet and
// character-confusion files needed by the correction stage. Files are
// referenced by symlink from the working directory, never copied.
package resources

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nodewee/doc-pipeline/pkg/constants"
	"github.com/nodewee/doc-pipeline/pkg/interfaces"
	"github.com/nodewee/doc-pipeline/pkg/logger"
	"github.com/nodewee/doc-pipeline/pkg/types"
	"github.com/nodewee/doc-pipeline/pkg/utils"
)

// linkNames maps each resource kind to its link name in the working directory
var linkNames = map[types.ResourceKind]string{
	types.ResourceLexicon:   constants.LexiconFileName,
	types.ResourceAlphabet:  constants.AlphabetFileName,
	types.ResourceConfusion: constants.ConfusionFileName,
}

// requiredKinds is the resolution and reporting order
var requiredKinds = []types.ResourceKind{
	types.ResourceLexicon,
	types.ResourceAlphabet,
	types.ResourceConfusion,
}

// ClassifyResource maps a resource file name to its kind by extension
func ClassifyResource(name string) types.ResourceKind {
	switch strings.ToLower(filepath.Ext(name)) {
	case constants.LexiconSuffix:
		return types.ResourceLexicon
	case constants.AlphabetSuffix:
		return types.ResourceAlphabet
	case constants.ConfusionSuffix:
		return types.ResourceConfusion
	default:
		return types.ResourceUnknown
	}
}

// LookupLanguage returns the language whose resources serve lang. Fraktur
// German shares the standard German resources.
func LookupLanguage(lang string) string {
	if lang == constants.FrakturGerman {
		return constants.StandardGerman
	}
	return lang
}

// Locator resolves resources under a data root
type Locator struct {
	dataRoot string
	inputDir string
	workDir  string
	logger   *logger.Logger
}

var _ interfaces.ResourceLocator = (*Locator)(nil)

// NewLocator creates a locator. Links are created in workDir; a job-supplied
// lexicon is looked for in inputDir.
func NewLocator(dataRoot, inputDir, workDir string, log *logger.Logger) *Locator {
	return &Locator{
		dataRoot: dataRoot,
		inputDir: inputDir,
		workDir:  workDir,
		logger:   log,
	}
}

// LanguageDir returns the resource directory consulted for lang
func (l *Locator) LanguageDir(lang string) string {
	return filepath.Join(l.dataRoot, filepath.FromSlash(constants.ResourceSubdir), LookupLanguage(lang))
}

// Resolve links the lexicon, alphabet and confusion table for lang into the
// working directory and returns their paths.
func (l *Locator) Resolve(lang string) (*interfaces.ResourceSet, error) {
	lookup := LookupLanguage(lang)
	if lookup != lang {
		l.logger.Info("Using %s resources for language %s", lookup, lang)
	}

	dir := l.LanguageDir(lang)
	if !utils.IsDir(dir) {
		return nil, utils.NewResourceDirMissingError(lookup, l.dataRoot)
	}

	set := &interfaces.ResourceSet{Language: lookup}
	pending := map[types.ResourceKind]bool{
		types.ResourceAlphabet:  true,
		types.ResourceConfusion: true,
	}

	override := filepath.Join(l.inputDir, constants.LexiconFileName)
	if utils.Exists(override) {
		if err := utils.ReplaceSymlink(override, l.linkPath(types.ResourceLexicon)); err != nil {
			return nil, utils.WrapError(err, utils.ErrorTypeIO, "failed to link job lexicon")
		}
		set.LexiconOverridden = true
		l.logger.Info("Using lexicon supplied with the job: %s", override)
	} else {
		pending[types.ResourceLexicon] = true
	}

	// Links left by an earlier attempt must not satisfy this one.
	for kind := range pending {
		if err := os.Remove(l.linkPath(kind)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, utils.WrapError(err, utils.ErrorTypeIO, "failed to remove stale resource link")
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeIO, "failed to read resource directory")
	}

	found := make(map[types.ResourceKind]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		kind := ClassifyResource(entry.Name())
		if kind == types.ResourceUnknown {
			l.logger.Debug("Ignoring unrecognised resource file: %s", entry.Name())
			continue
		}
		if !pending[kind] {
			continue
		}
		if prev, dup := found[kind]; dup {
			l.logger.Warn("Multiple %s files for %s: %s replaces %s", kind, lookup, entry.Name(), filepath.Base(prev))
		}
		found[kind] = filepath.Join(dir, entry.Name())
	}

	for kind, path := range found {
		if err := utils.ReplaceSymlink(path, l.linkPath(kind)); err != nil {
			return nil, utils.WrapError(err, utils.ErrorTypeIO, fmt.Sprintf("failed to link %s", kind))
		}
		l.logger.Debug("Linked %s: %s", kind, path)
	}

	for _, kind := range requiredKinds {
		link := l.linkPath(kind)
		if _, err := os.Stat(link); err != nil {
			return nil, utils.NewResourceFileMissingError(kind, lookup, l.dataRoot)
		}
		switch kind {
		case types.ResourceLexicon:
			set.Lexicon = link
		case types.ResourceAlphabet:
			set.Alphabet = link
		case types.ResourceConfusion:
			set.Confusion = link
		}
	}

	return set, nil
}

func (l *Locator) linkPath(kind types.ResourceKind) string {
	return filepath.Join(l.workDir, linkNames[kind])
}
