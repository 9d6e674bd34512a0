package report

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
)

// captureStdout runs fn with os.Stdout swapped for a pipe, matching the
// capture technique internal/engine's tests use for FFI output, and
// returns whatever fn wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = orig
	var buf bytes.Buffer
	io.Copy(&buf, r)

	return buf.String()
}

func TestErrorfPrintsAtErrorLevelAndRecordsHadError(t *testing.T) {
	r := New(LevelError)
	out := captureStdout(t, func() { r.Errorf(3, "bad thing: %d", 42) })

	if !strings.Contains(out, "bad thing: 42") {
		t.Fatalf("expected output to contain the error message, got %q", out)
	}
	if !r.HadError() {
		t.Fatalf("expected HadError() to be true after Errorf")
	}
}

func TestErrorfCountsEvenWhenSilenced(t *testing.T) {
	r := New(LevelSilent)
	out := captureStdout(t, func() { r.Errorf(1, "silent error") })

	if out != "" {
		t.Fatalf("expected no output at LevelSilent, got %q", out)
	}
	if !r.HadError() {
		t.Fatalf("expected HadError() to be true even when nothing is printed")
	}
}

func TestWarnfRespectsLevel(t *testing.T) {
	below := New(LevelError)
	out := captureStdout(t, func() { below.Warnf(5, "shadowed precedence") })
	if out != "" {
		t.Fatalf("expected no warning below LevelWarn, got %q", out)
	}

	atLevel := New(LevelWarn)
	out = captureStdout(t, func() { atLevel.Warnf(5, "shadowed precedence") })
	if !strings.Contains(out, "shadowed precedence") {
		t.Fatalf("expected warning text at LevelWarn, got %q", out)
	}
}

func TestInfofRespectsLevel(t *testing.T) {
	below := New(LevelWarn)
	out := captureStdout(t, func() { below.Infof("registered new operator") })
	if out != "" {
		t.Fatalf("expected no info output below LevelVerbose, got %q", out)
	}

	atLevel := New(LevelVerbose)
	out = captureStdout(t, func() { atLevel.Infof("registered new operator") })
	if !strings.Contains(out, "registered new operator") {
		t.Fatalf("expected info text at LevelVerbose, got %q", out)
	}
}

func TestHadErrorFalseBeforeAnyError(t *testing.T) {
	r := New(LevelVerbose)
	if r.HadError() {
		t.Fatalf("expected HadError() to be false with no Errorf calls")
	}
}
