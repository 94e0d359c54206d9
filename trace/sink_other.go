//go:build windows || plan9

package trace

func openSystemSink(ident string) (Sink, error) {
	return nil, errSystemLogUnsupported
}
