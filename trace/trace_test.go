package trace

import (
	"bufio"
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"
)

type fakeSystem struct {
	mu      sync.Mutex
	entries []string
	err     error
}

func (f *fakeSystem) Debug(msg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, msg)
	return f.err
}

// untouchable fails the test if anything is written to it.
type untouchable struct {
	t *testing.T
}

func (u untouchable) Write(p []byte) (int, error) {
	u.t.Fatalf("unexpected write %q", p)
	return 0, nil
}

func (u untouchable) Debug(msg string) error {
	u.t.Fatalf("unexpected system log entry %q", msg)
	return nil
}

type brokenWriter struct{}

func (brokenWriter) Write(p []byte) (int, error) {
	return 0, errors.New("file already closed")
}

func TestTracefDisabledIsNoop(t *testing.T) {
	u := untouchable{t: t}
	tr := New(Options{Out: u, System: u})
	if tr.Enabled() {
		t.Fatalf("tracer with no sinks reports enabled")
	}
	tr.Tracef("RPC", "value %d", 1)
	tr.DumpStack()

	var nilTracer *Tracer
	nilTracer.Tracef("RPC", "value %d", 1)
	nilTracer.DumpStack()
	if err := nilTracer.Close(); err != nil {
		t.Fatalf("close nil tracer: %v", err)
	}
}

func TestTracefFansOutOneLinePerSink(t *testing.T) {
	var out, file bytes.Buffer
	sys := &fakeSystem{}
	tr := New(Options{Stdout: true, Syslog: true, File: &file, Out: &out, System: sys})

	tr.Tracef("RPC", "client fd: %d disconnected", 5)

	if got := out.String(); got != "RPC: client fd: 5 disconnected\n" {
		t.Fatalf("stdout: %q", got)
	}
	if got := file.String(); got != "RPC: client fd: 5 disconnected\n" {
		t.Fatalf("file: %q", got)
	}
	if len(sys.entries) != 1 || sys.entries[0] != "RPC: client fd: 5 disconnected" {
		t.Fatalf("system log: %q", sys.entries)
	}
}

func TestTracefFileFailureDoesNotSuppressOtherSinks(t *testing.T) {
	var out bytes.Buffer
	sys := &fakeSystem{}
	tr := New(Options{Stdout: true, Syslog: true, File: brokenWriter{}, Out: &out, System: sys})

	tr.Tracef("RPC", "first")
	tr.Tracef("RPC", "second")

	if got := out.String(); got != "RPC: first\nRPC: second\n" {
		t.Fatalf("stdout: %q", got)
	}
	if len(sys.entries) != 2 {
		t.Fatalf("system log: %q", sys.entries)
	}
}

func TestTracefSystemFailureDoesNotSuppressOtherSinks(t *testing.T) {
	var out, file bytes.Buffer
	sys := &fakeSystem{err: errors.New("syslog down")}
	tr := New(Options{Stdout: true, Syslog: true, File: &file, Out: &out, System: sys})

	tr.Tracef("RPC", "line")

	if out.String() != "RPC: line\n" || file.String() != "RPC: line\n" {
		t.Fatalf("stdout=%q file=%q", out.String(), file.String())
	}
}

func TestTracefFileOnly(t *testing.T) {
	var file bytes.Buffer
	tr := New(Options{File: &file})
	if !tr.Enabled() {
		t.Fatalf("file-only tracer reports disabled")
	}
	tr.Tracef("RPC", "%s=%v", "ok", true)
	if file.String() != "RPC: ok=true\n" {
		t.Fatalf("file: %q", file.String())
	}
}

func TestTracefFlushesBufferedFile(t *testing.T) {
	var file bytes.Buffer
	bw := bufio.NewWriterSize(&file, 4096)
	tr := New(Options{File: bw})

	tr.Tracef("RPC", "flushed")
	if file.String() != "RPC: flushed\n" {
		t.Fatalf("file not flushed: %q", file.String())
	}
}

func TestTracefBoundsLineLength(t *testing.T) {
	var out bytes.Buffer
	tr := New(Options{Stdout: true, Out: &out})

	tr.Tracef("RPC", "%s", strings.Repeat("x", 4*MaxLineLen))
	got := strings.TrimSuffix(out.String(), "\n")
	if len(got) != MaxLineLen {
		t.Fatalf("line length: got=%d want=%d", len(got), MaxLineLen)
	}
	if !strings.HasPrefix(got, "RPC: xxx") {
		t.Fatalf("line prefix: %q", got[:16])
	}
}

func TestTracefTruncatesOnRuneBoundary(t *testing.T) {
	var out bytes.Buffer
	tr := New(Options{Stdout: true, Out: &out})

	// "é" is two bytes, so the limit falls inside one of them
	tr.Tracef("RPC", "%s", strings.Repeat("é", MaxLineLen))
	got := strings.TrimSuffix(out.String(), "\n")
	if len(got) > MaxLineLen {
		t.Fatalf("line too long: %d", len(got))
	}
	if !utf8.ValidString(got) {
		t.Fatalf("truncation split a rune")
	}
}

func TestTracefConcurrentLinesStayWhole(t *testing.T) {
	var out bytes.Buffer
	tr := New(Options{Stdout: true, Out: &out})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				tr.Tracef("RPC", "worker %d line %d", i, j)
			}
		}(i)
	}
	wg.Wait()

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) != 400 {
		t.Fatalf("lines: got=%d want=400", len(lines))
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "RPC: worker ") {
			t.Fatalf("interleaved line %q", l)
		}
	}
}

func TestDumpStack(t *testing.T) {
	var out bytes.Buffer
	tr := New(Options{Stdout: true, Out: &out})

	tr.DumpStack()

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected header and frames, got %q", lines)
	}
	if !strings.HasPrefix(lines[0], "BACKTRACE: captured ") {
		t.Fatalf("header: %q", lines[0])
	}
	var sawCaller bool
	for _, l := range lines[1:] {
		if !strings.HasPrefix(l, "BACKTRACE:\t: ") {
			t.Fatalf("frame line: %q", l)
		}
		if strings.Contains(l, "TestDumpStack") {
			sawCaller = true
		}
	}
	if !sawCaller {
		t.Fatalf("caller frame missing: %q", lines)
	}
}

func TestNewSyslogOpenFailureLeavesOtherSinks(t *testing.T) {
	var out bytes.Buffer
	// a nil System forces the platform sink; whether or not a daemon is
	// reachable, stdout must keep working
	tr := New(Options{Stdout: true, Syslog: true, Out: &out})
	defer tr.Close()

	tr.Tracef("RPC", "still here")
	if out.String() != "RPC: still here\n" {
		t.Fatalf("stdout: %q", out.String())
	}
}
