package trace

import (
	"fmt"
	"runtime"
)

const (
	maxStackDepth = 100

	backtracePrefix      = "BACKTRACE"
	backtraceFramePrefix = "BACKTRACE:\t"
)

// DumpStack writes the caller's stack, one frame per line, up to
// maxStackDepth frames. It never panics.
func (t *Tracer) DumpStack() {
	if !t.Enabled() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			t.Tracef(backtracePrefix, "stack symbolization failed: %v", r)
		}
	}()

	var pcs [maxStackDepth]uintptr
	// skip runtime.Callers and DumpStack
	n := runtime.Callers(2, pcs[:])
	if n == 0 {
		t.Tracef(backtracePrefix, "stack capture unavailable")
		return
	}
	t.Tracef(backtracePrefix, "captured %d addresses", n)

	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		t.Tracef(backtraceFramePrefix, "%s", describeFrame(frame))
		if !more {
			break
		}
	}
}

func describeFrame(f runtime.Frame) string {
	function := f.Function
	if function == "" {
		function = "?"
	}
	if f.File == "" {
		return fmt.Sprintf("%s [%#x]", function, f.PC)
	}
	return fmt.Sprintf("%s %s:%d [%#x]", function, f.File, f.Line, f.PC)
}
