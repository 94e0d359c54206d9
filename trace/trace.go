// Package trace fans diagnostic lines out to standard output, the system
// log and a log file.
//
// A Tracer is built once at startup from Options and passed to whatever
// needs to emit diagnostics. It is immutable afterwards and safe for
// concurrent use: every sink serialises its own writes, and a failing
// sink never stops delivery to the others.
package trace

import (
	"io"
	"os"
	"sync"

	"github.com/zhihanii/zlog"
)

// Options selects the sinks a Tracer writes to.
type Options struct {
	// Stdout enables the standard output sink.
	Stdout bool
	// Syslog enables the system log sink.
	Syslog bool
	// File is written to when non-nil. The Tracer does not close it.
	File io.Writer

	// Ident tags system log entries. Defaults to the program name.
	Ident string
	// Out replaces os.Stdout for the standard output sink.
	Out io.Writer
	// System replaces the platform system log sink.
	System Sink
}

type flusher interface {
	Flush() error
}

// lineWriter serialises writes of whole lines to w.
type lineWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lineWriter) writeLine(line []byte) (err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err = l.w.Write(line); err != nil {
		return err
	}
	if _, err = l.w.Write(newline); err != nil {
		return err
	}
	if f, ok := l.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}

var newline = []byte{'\n'}

// Tracer is the configured set of trace sinks. A nil *Tracer discards
// everything.
type Tracer struct {
	stdout *lineWriter
	system *systemWriter
	file   *lineWriter

	// closer is set when the Tracer opened the file itself.
	closer io.Closer
	// ownSystem is set when the Tracer opened the system log itself.
	ownSystem bool
}

// New builds a Tracer from opts. A system log that cannot be opened is
// reported and left disabled.
func New(opts Options) *Tracer {
	var t = new(Tracer)
	if opts.Stdout {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		t.stdout = &lineWriter{w: out}
	}
	if opts.Syslog {
		sink := opts.System
		if sink == nil {
			var err error
			sink, err = openSystemSink(opts.Ident)
			if err != nil {
				zlog.Errorf("trace: open system log failed: %v", err)
				sink = nil
			}
			t.ownSystem = sink != nil
		}
		if sink != nil {
			t.system = &systemWriter{sink: sink}
		}
	}
	if opts.File != nil {
		t.file = &lineWriter{w: opts.File}
	}
	return t
}

// Enabled reports whether any sink is enabled.
func (t *Tracer) Enabled() bool {
	return t != nil && (t.stdout != nil || t.system != nil || t.file != nil)
}

// Tracef formats one line as "prefix: message" and writes it to every
// enabled sink. Lines longer than MaxLineLen are truncated. It does
// nothing when no sink is enabled.
func (t *Tracer) Tracef(prefix, format string, args ...any) {
	if !t.Enabled() {
		return
	}
	line := formatLine(prefix, format, args...)
	defer line.free()

	if t.stdout != nil {
		if err := t.stdout.writeLine(line.b); err != nil {
			zlog.Errorf("trace: stdout sink: %v", err)
		}
	}
	if t.system != nil {
		if err := t.system.writeLine(line.b); err != nil {
			zlog.Errorf("trace: system log sink: %v", err)
		}
	}
	if t.file != nil {
		if err := t.file.writeLine(line.b); err != nil {
			zlog.Errorf("trace: file sink: %v", err)
		}
	}
}

// Close releases the log file when the Tracer opened it and the system
// log connection when it opened one.
func (t *Tracer) Close() error {
	if t == nil {
		return nil
	}
	var err error
	if t.system != nil && t.ownSystem {
		err = t.system.close()
	}
	if t.closer != nil {
		if cerr := t.closer.Close(); cerr != nil {
			err = cerr
		}
	}
	return err
}
