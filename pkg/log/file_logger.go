package log

import (
	"fmt"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger appends bench events to a CBOR file. Log never fails the
// registry call that produced the event: the first encoding error is kept
// and reported by Err, Sync and Close.
// It is safe for concurrent use from multiple goroutines.
type FileLogger struct {
	file    *os.File
	encoder *cbor.Encoder
	mu      sync.Mutex
	written int
	err     error
	closed  bool
}

// NewFileLogger opens path for appending, creating it with permissions
// 0644 if needed. Appending lets several bench runs share one log; their
// events are told apart by SessionID.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{
		file:    f,
		encoder: NewEncoder(f),
	}, nil
}

// Path returns the path of the underlying file.
func (l *FileLogger) Path() string {
	return l.file.Name()
}

// Log appends an event to the log file.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	if err := l.encoder.Encode(event); err != nil {
		if l.err == nil {
			l.err = fmt.Errorf("event %d (%s on handle %d): %w", l.written+1, event.Operation, event.Handle, err)
		}
		return
	}
	l.written++
}

// Written returns the number of events successfully encoded.
func (l *FileLogger) Written() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.written
}

// Err returns the first encoding error, if any.
func (l *FileLogger) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Sync commits the events written so far to stable storage. The bench
// calls it after every script so an aborted run keeps completed scripts.
func (l *FileLogger) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}
	if err := l.file.Sync(); err != nil {
		return err
	}
	return l.err
}

// Close closes the log file and returns the first encoding error if no
// close error occurred. It is safe to call Close multiple times; later
// Log calls are silently ignored.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	if err := l.file.Close(); err != nil {
		return err
	}
	return l.err
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
