// Package preflight verifies the environment a run depends on before any
// stage is planned.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nodewee/doc-pipeline/pkg/constants"
	"github.com/nodewee/doc-pipeline/pkg/resources"
)

// Status indicates whether a single check passed
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
)

// Item is one check result with an optional hint
type Item struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

// Report aggregates all checks
type Report struct {
	GeneratedAt time.Time `json:"generatedAt"`
	HasFailures bool      `json:"hasFailures"`
	Items       []Item    `json:"items"`
}

// Settings names what to check. Empty fields are skipped.
type Settings struct {
	EnginePath  string
	WorkflowDir string
	DataRoot    string
	Language    string
	InputDir    string
	OutputDir   string
}

// Workflows lists the workflow scripts a local workflow directory must hold
var Workflows = []string{"ocr", "ticcl", "tokenize", "frog"}

// maxParallelChecks bounds concurrent filesystem probes
const maxParallelChecks = 4

// Checker validates external tools and required filesystem paths
type Checker struct {
	lookPath   func(string) (string, error)
	stat       func(string) (os.FileInfo, error)
	createTemp func(string, string) (*os.File, error)
	remove     func(string) error
}

// NewChecker builds a checker using real OS dependencies
func NewChecker() *Checker {
	return &Checker{
		lookPath:   exec.LookPath,
		stat:       os.Stat,
		createTemp: os.CreateTemp,
		remove:     os.Remove,
	}
}

// Run executes all applicable checks concurrently. Items keep a fixed order
// regardless of completion order. The error is non-nil only when ctx ends
// before the checks finish.
func (c *Checker) Run(ctx context.Context, s Settings) (*Report, error) {
	checks := []func() Item{
		func() Item { return c.checkEngine(s) },
	}
	if s.DataRoot != "" {
		checks = append(checks, func() Item { return c.checkDir("data_root", "Data root", s.DataRoot) })
		if s.Language != "" {
			langDir := filepath.Join(s.DataRoot, constants.ResourceSubdir, resources.LookupLanguage(s.Language))
			checks = append(checks, func() Item {
				return c.checkDir("language_resources", "Language resources ("+s.Language+")", langDir)
			})
		}
	}
	if s.InputDir != "" {
		checks = append(checks, func() Item { return c.checkDir("input_dir", "Input directory", s.InputDir) })
	}
	if s.OutputDir != "" {
		checks = append(checks, func() Item { return c.checkWritable("output_dir", "Output directory", s.OutputDir) })
	}

	items := make([]Item, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelChecks)
	for i, check := range checks {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			items[i] = check()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("preflight interrupted: %w", err)
	}

	report := &Report{GeneratedAt: time.Now().UTC(), Items: items}
	for _, item := range items {
		if item.Status == StatusFail {
			report.HasFailures = true
			break
		}
	}
	return report, nil
}

// checkEngine verifies the local workflow scripts or, without a workflow
// directory, the launcher used to fetch them.
func (c *Checker) checkEngine(s Settings) Item {
	item := Item{ID: "engine", Name: "Workflow engine"}

	if s.WorkflowDir != "" {
		var missing []string
		for _, wf := range Workflows {
			path := filepath.Join(s.WorkflowDir, wf+constants.WorkflowScriptExt)
			info, err := c.stat(path)
			if err != nil || info.IsDir() || info.Mode()&0o111 == 0 {
				missing = append(missing, wf+constants.WorkflowScriptExt)
			}
		}
		if len(missing) > 0 {
			item.Status = StatusFail
			item.Message = fmt.Sprintf("Missing or not executable in %s: %s", s.WorkflowDir, strings.Join(missing, ", "))
			item.Hint = "Point workflow_dir at a PICCL checkout or unset it to run the remote workflows."
			return item
		}
		item.Status = StatusPass
		item.Message = fmt.Sprintf("Workflows found in %s", s.WorkflowDir)
		return item
	}

	name := s.EnginePath
	if name == "" {
		name = constants.DefaultEnginePath
	}
	path, err := c.lookPath(name)
	if err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Engine not found: %s", name)
		item.Hint = "Install nextflow and ensure it is on PATH, or set nextflow_path."
		return item
	}
	item.Status = StatusWarn
	item.Message = fmt.Sprintf("Found at %s; workflows will be fetched remotely", path)
	return item
}

func (c *Checker) checkDir(id, name, path string) Item {
	item := Item{ID: id, Name: name}
	info, err := c.stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Does not exist: %s", path)
	case err != nil:
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Cannot access: %s", path)
		item.Hint = "Check permissions for the directory."
	case !info.IsDir():
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Not a directory: %s", path)
	default:
		item.Status = StatusPass
		item.Message = path
	}
	return item
}

// checkWritable verifies that a file can be created in path. A directory that
// does not exist yet passes with a warning since runs create it.
func (c *Checker) checkWritable(id, name, path string) Item {
	item := c.checkDir(id, name, path)
	if item.Status != StatusPass {
		if _, err := c.stat(path); errors.Is(err, os.ErrNotExist) {
			item.Status = StatusWarn
			item.Message = fmt.Sprintf("Will be created: %s", path)
		}
		return item
	}

	f, err := c.createTemp(path, ".preflight-*")
	if err != nil {
		item.Status = StatusFail
		item.Message = fmt.Sprintf("Not writable: %s", path)
		item.Hint = "Check permissions for the directory."
		return item
	}
	tmp := f.Name()
	_ = f.Close()
	_ = c.remove(tmp)
	return item
}
