package audit

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/audit"
	"gopkg.in/natefinch/lumberjack.v2"
)

// FileConfig sets where the audit log lives and how it rotates
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
}

// FileSink appends one line per event, in the log.txt format.
type FileSink struct {
	mu sync.Mutex
	w  io.WriteCloser
}

// NewFileSink opens a size-rotated audit log.
func NewFileSink(cfg FileConfig) *FileSink {
	return NewWriterSink(&lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  false,
	})
}

// NewWriterSink writes audit lines to w.
func NewWriterSink(w io.WriteCloser) *FileSink {
	return &FileSink{w: w}
}

func (s *FileSink) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintln(s.w, event.String()); err != nil {
		return fmt.Errorf("write audit line: %w", err)
	}
	return nil
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Close()
}
