//go:build !windows && !plan9

package trace

import (
	"log/syslog"
	"os"
	"path/filepath"
)

// openSystemSink connects to the local syslog daemon. On darwin the
// daemon forwards entries to the unified log.
func openSystemSink(ident string) (Sink, error) {
	if ident == "" {
		ident = filepath.Base(os.Args[0])
	}
	return syslog.New(syslog.LOG_DEBUG|syslog.LOG_USER, ident)
}
