package status

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nodewee/doc-pipeline/pkg/logger"
)

func TestFileSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "status")
	sink := NewFileSink(path)
	sink.now = func() time.Time { return time.Unix(1700000000, 0) }

	if err := sink.Write("Starting...", 0); err != nil {
		t.Fatal(err)
	}
	if err := sink.Write("Running OCR\nworkflow", 5); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "1700000000\t0\tStarting...\n1700000000\t5\tRunning OCR workflow\n"
	if string(data) != want {
		t.Errorf("status file = %q, want %q", data, want)
	}
}

func TestFileSinkRejectsBadPercent(t *testing.T) {
	sink := NewFileSink(filepath.Join(t.TempDir(), "status"))
	for _, p := range []int{-1, 101} {
		if err := sink.Write("x", p); err == nil {
			t.Errorf("Write(%d) should fail", p)
		}
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(logger.NewLoggerWithWriter("info", false, &buf))
	if err := sink.Write("All done!", 100); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "[100%] All done!") {
		t.Errorf("log output = %q", buf.String())
	}
}
