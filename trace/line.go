package trace

import (
	"fmt"
	"unicode/utf8"

	"github.com/bytedance/gopkg/lang/mcache"
)

// MaxLineLen bounds a formatted line, prefix included, newline excluded.
const MaxLineLen = 1023

// line is a formatted trace line backed by a pooled buffer.
type line struct {
	b []byte
}

func (l line) free() {
	mcache.Free(l.b)
}

// formatLine renders "prefix: message" into a buffer that never grows
// past MaxLineLen.
func formatLine(prefix, format string, args ...any) line {
	var w = boundedBuffer{b: mcache.Malloc(0, MaxLineLen)}
	w.WriteString(prefix)
	w.WriteString(": ")
	fmt.Fprintf(&w, format, args...)
	return line{b: w.b}
}

// boundedBuffer appends into the capacity it was given and drops the rest.
// A cut never splits a UTF-8 sequence.
type boundedBuffer struct {
	b    []byte
	full bool
}

func (w *boundedBuffer) Write(p []byte) (int, error) {
	if w.full {
		return len(p), nil
	}
	room := MaxLineLen - len(w.b)
	if len(p) <= room {
		w.b = append(w.b, p...)
		return len(p), nil
	}
	cut := room
	for cut > 0 && !utf8.RuneStart(p[cut]) {
		cut--
	}
	w.b = append(w.b, p[:cut]...)
	w.full = true
	return len(p), nil
}

func (w *boundedBuffer) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}
