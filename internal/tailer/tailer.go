// Package tailer reads VRChat log files line by line through nxadm/tail.
//
// Files are read once from the start to EOF; the reader never follows a
// growing file.
package tailer

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/nxadm/tail"

	"github.com/scienceassembly/yaiba-go/internal/segment"
)

// FileReader is a synchronous line reader over a log file.
// After the file is exhausted every ReadLine returns io.EOF.
type FileReader struct {
	t   *tail.Tail
	ctx context.Context

	mu     sync.Mutex
	closed bool
}

// Config holds configuration for reading a file.
type Config struct {
	// Poll uses polling instead of inotify (more compatible but less efficient).
	Poll bool

	// MustExist requires the file to exist before starting.
	MustExist bool
}

// DefaultConfig returns the default configuration for VRChat logs.
func DefaultConfig() Config {
	return Config{
		Poll:      false,
		MustExist: true,
	}
}

// Open starts reading path from its first line.
// The provided context aborts pending reads.
func Open(ctx context.Context, path string, cfg Config) (*FileReader, error) {
	t, err := tail.TailFile(path, tail.Config{
		Follow:    false,
		ReOpen:    false,
		Poll:      cfg.Poll,
		MustExist: cfg.MustExist,
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekStart},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening tail: %w", err)
	}

	return &FileReader{t: t, ctx: ctx}, nil
}

// ReadLine returns the next line without its line terminator.
// Invalid UTF-8 is replaced with U+FFFD.
func (r *FileReader) ReadLine() (string, error) {
	select {
	case <-r.ctx.Done():
		return "", r.ctx.Err()
	case line, ok := <-r.t.Lines:
		if !ok {
			return "", io.EOF
		}
		if line.Err != nil {
			return "", fmt.Errorf("tail: %w", line.Err)
		}
		return segment.CleanLine(line.Text), nil
	}
}

// Close stops reading and releases the file.
// Safe to call multiple times.
func (r *FileReader) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	err := r.t.Stop()
	r.t.Cleanup()
	return err
}
