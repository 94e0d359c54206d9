package trace

import (
	"errors"
	"io"
	"sync"
)

// Sink is the platform system log. Debug writes one entry at debug
// priority.
type Sink interface {
	Debug(msg string) error
}

var errSystemLogUnsupported = errors.New("system log not supported on this platform")

// systemWriter serialises entries to a Sink.
type systemWriter struct {
	mu   sync.Mutex
	sink Sink
}

func (s *systemWriter) writeLine(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sink.Debug(string(line))
}

func (s *systemWriter) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.sink.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
