// Package status reports run progress to the surrounding job system.
package status

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/nodewee/doc-pipeline/pkg/constants"
	"github.com/nodewee/doc-pipeline/pkg/interfaces"
	"github.com/nodewee/doc-pipeline/pkg/logger"
	"github.com/nodewee/doc-pipeline/pkg/utils"
)

// FileSink appends one "<unix-ts>\t<percent>\t<message>" line per update
type FileSink struct {
	path string
	now  func() time.Time
	mu   sync.Mutex
}

var _ interfaces.StatusSink = (*FileSink)(nil)

// NewFileSink creates a sink appending to path
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path, now: time.Now}
}

// Path returns the status file location
func (s *FileSink) Path() string {
	return s.path
}

// Write appends a status record
func (s *FileSink) Write(message string, percent int) error {
	if percent < 0 || percent > 100 {
		return utils.NewValidationError(fmt.Sprintf("percent out of range: %d", percent), nil)
	}
	message = strings.ReplaceAll(message, "\n", " ")

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, constants.DefaultFilePermission)
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeIO, "failed to open status file").
			WithContext(utils.ContextPath, s.path)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d\t%d\t%s\n", s.now().Unix(), percent, message); err != nil {
		return utils.WrapError(err, utils.ErrorTypeIO, "failed to write status file")
	}
	return nil
}

// LogSink reports progress through the logger when no status file is given
type LogSink struct {
	logger *logger.Logger
}

var _ interfaces.StatusSink = (*LogSink)(nil)

// NewLogSink creates a sink writing to log
func NewLogSink(log *logger.Logger) *LogSink {
	return &LogSink{logger: log}
}

// Write logs the update
func (s *LogSink) Write(message string, percent int) error {
	s.logger.ProgressAlways("📊", "[%3d%%] %s", percent, message)
	return nil
}
