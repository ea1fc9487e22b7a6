// Package publish exposes stage outputs in the job's output area and tidies
// the file names the workflows produce.
package publish

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nodewee/doc-pipeline/pkg/constants"
	"github.com/nodewee/doc-pipeline/pkg/interfaces"
	"github.com/nodewee/doc-pipeline/pkg/logger"
	"github.com/nodewee/doc-pipeline/pkg/utils"
)

// Publisher links stage outputs into one output directory
type Publisher struct {
	outputDir string
	logger    *logger.Logger
}

var _ interfaces.OutputPublisher = (*Publisher)(nil)

// NewPublisher creates a publisher for outputDir
func NewPublisher(outputDir string, log *logger.Logger) *Publisher {
	return &Publisher{
		outputDir: utils.NormalizePath(outputDir),
		logger:    log,
	}
}

// Publish symlinks every *.<extension> file in dir into the output directory
// and returns the created link paths. A missing dir publishes nothing.
func (p *Publisher) Publish(dir, extension string) ([]string, error) {
	if !utils.IsDir(dir) {
		p.logger.Warn("Nothing to publish, %s does not exist", dir)
		return nil, nil
	}
	if err := utils.EnsureDir(p.outputDir); err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeIO, "failed to create output directory")
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*."+strings.TrimPrefix(extension, ".")))
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeValidation, "invalid publish pattern")
	}
	sort.Strings(matches)

	published := make([]string, 0, len(matches))
	for _, src := range matches {
		link := filepath.Join(p.outputDir, filepath.Base(src))
		if err := utils.ReplaceSymlink(src, link); err != nil {
			return published, utils.WrapError(err, utils.ErrorTypeIO, "failed to publish output").
				WithContext(utils.ContextPath, src)
		}
		p.logger.Debug("Published %s", link)
		published = append(published, link)
	}
	p.logger.Info("Published %d file(s) from %s", len(published), dir)
	return published, nil
}

// Normalize renames published FoLiA files whose names carry a chain of stage
// suffixes. A rename that would overwrite an existing entry is skipped and
// logged, so unlike a plain rename not every chained name is shortened: the
// earlier stage's file under the short name is kept.
func (p *Publisher) Normalize() ([]interfaces.Rename, error) {
	matches, err := filepath.Glob(filepath.Join(p.outputDir, constants.NormalizePattern))
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeValidation, "invalid normalize pattern")
	}
	sort.Strings(matches)

	var renames []interfaces.Rename
	for _, path := range matches {
		name := filepath.Base(path)
		newName := NormalizeName(name)
		if newName == name {
			continue
		}

		target := filepath.Join(p.outputDir, newName)
		if _, err := os.Lstat(target); err == nil {
			p.logger.Warn("Not renaming %s, %s already exists", name, newName)
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return renames, utils.WrapError(err, utils.ErrorTypeIO, "failed to inspect output").
				WithContext(utils.ContextPath, target)
		}

		if err := os.Rename(path, target); err != nil {
			return renames, utils.WrapError(err, utils.ErrorTypeIO, fmt.Sprintf("failed to rename %s", name))
		}
		p.logger.Debug("Renamed %s -> %s", name, newName)
		renames = append(renames, interfaces.Rename{From: name, To: newName})
	}
	return renames, nil
}

// NormalizeName shortens a concatenated output name such as
// "doc.ocr.ticcl.frogged.folia.xml" to "doc.frogged.folia.xml". The leading
// field and the last three fields are kept; between them only fields that are
// not stage tags survive. Applying it twice gives the same result as once.
func NormalizeName(name string) string {
	fields := strings.Split(name, ".")
	if len(fields)-1 <= constants.RetainedSuffixes {
		return name
	}

	tail := len(fields) - constants.RetainedSuffixes
	kept := []string{fields[0]}
	for _, field := range fields[1:tail] {
		if !isStageTag(field) {
			kept = append(kept, field)
		}
	}
	kept = append(kept, fields[tail:]...)
	return strings.Join(kept, ".")
}

func isStageTag(field string) bool {
	for _, tag := range constants.StageTags {
		if field == tag {
			return true
		}
	}
	return false
}
