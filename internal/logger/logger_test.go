package logger

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"
)

func resetLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	resetLogger(t)

	SetVerbose(false)
	if IsVerbose() {
		t.Error("expected verbose to be false")
	}

	SetVerbose(true)
	if !IsVerbose() {
		t.Error("expected verbose to be true after SetVerbose(true)")
	}
}

func TestLevels_WhenVerbose(t *testing.T) {
	tests := []struct {
		name string
		log  func()
		want string
	}{
		{"debug", func() { Debug("crawl %s", "started") }, "[DEBUG] crawl started\n"},
		{"info", func() { Info("classified %d documents", 42) }, "[INFO] classified 42 documents\n"},
		{"warn", func() { Warn("dropped dangling url") }, "[WARN] dropped dangling url\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := resetLogger(t)
			SetVerbose(true)

			tt.log()

			if got := buf.String(); got != tt.want {
				t.Errorf("unexpected output: %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLevels_WhenNotVerbose(t *testing.T) {
	buf := resetLogger(t)
	SetVerbose(false)

	Debug("hidden")
	Info("hidden")
	Warn("hidden")
	Section("hidden")
	L().Info("hidden", zap.String("k", "v"))

	if buf.Len() > 0 {
		t.Errorf("expected no output when verbose is disabled, got %q", buf.String())
	}
}

func TestSection(t *testing.T) {
	buf := resetLogger(t)
	SetVerbose(true)

	Section("Export")

	if got := buf.String(); got != "\n=== Export ===\n" {
		t.Errorf("unexpected section output: %q", got)
	}
}

func TestStructuredFields(t *testing.T) {
	buf := resetLogger(t)
	SetVerbose(true)

	L().Debug("poll", zap.String("job", "abc"), zap.Int("completed", 3))

	got := buf.String()
	if !strings.HasPrefix(got, "[DEBUG] poll ") {
		t.Errorf("unexpected prefix: %q", got)
	}
	if !strings.Contains(got, `"job": "abc"`) || !strings.Contains(got, `"completed": 3`) {
		t.Errorf("missing fields: %q", got)
	}
}

func TestConcurrentAccess(t *testing.T) {
	resetLogger(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			SetVerbose(true)
			Debug("concurrent %d", i)
			IsVerbose()
			SetVerbose(false)
		}(i)
	}
	wg.Wait()
	Sync()
}
