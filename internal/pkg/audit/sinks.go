package audit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/domain/audit"
	"github.com/EhsanSarboukh/Lesson-Invites-Project/internal/pkg/sse"
	"go.uber.org/multierr"
)

// Multi appends every event to each sink and reports all failures together.
type Multi []audit.Sink

func (m Multi) Append(ctx context.Context, event audit.Event) error {
	var errs error
	for _, sink := range m {
		errs = multierr.Append(errs, sink.Append(ctx, event))
	}
	return errs
}

// Nop discards events.
type Nop struct{}

func (Nop) Append(context.Context, audit.Event) error { return nil }

// LogSink writes events to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Append(ctx context.Context, event audit.Event) error {
	attrs := []slog.Attr{
		slog.String("audit_id", event.ID),
		slog.String("kind", string(event.Kind)),
		slog.Int64("invite_id", event.InviteID),
		slog.Int64("student_id", event.StudentID),
		slog.Time("scheduled_at", event.ScheduledAt),
	}
	if event.Kind == audit.KindAutoRejected {
		attrs = append(attrs, slog.Any("rejected_ids", event.RejectedIDs))
	} else {
		attrs = append(attrs, slog.Int64("teacher_id", event.TeacherID))
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "invite lifecycle event", attrs...)
	return nil
}

// HubSink pushes events to live subscribers of the affected student.
type HubSink struct {
	hub *sse.Hub
}

func NewHubSink(hub *sse.Hub) *HubSink {
	return &HubSink{hub: hub}
}

// StreamPayload is the data of one SSE message.
type StreamPayload struct {
	ID          string  `json:"id"`
	Kind        string  `json:"kind"`
	InviteID    int64   `json:"inviteId"`
	TeacherID   int64   `json:"teacherId,omitempty"`
	StudentID   int64   `json:"studentId"`
	ScheduledAt string  `json:"scheduledAt"`
	OccurredAt  string  `json:"occurredAt"`
	RejectedIDs []int64 `json:"rejectedIds,omitempty"`
}

const streamTimeLayout = "2006-01-02T15:04:05.000Z07:00"

func (s *HubSink) Append(_ context.Context, event audit.Event) error {
	s.hub.Publish(event.StudentID, sse.Event{
		StudentID: event.StudentID,
		Event:     string(event.Kind),
		Data: StreamPayload{
			ID:          event.ID,
			Kind:        string(event.Kind),
			InviteID:    event.InviteID,
			TeacherID:   event.TeacherID,
			StudentID:   event.StudentID,
			ScheduledAt: event.ScheduledAt.UTC().Format(streamTimeLayout),
			OccurredAt:  event.OccurredAt.UTC().Format(streamTimeLayout),
			RejectedIDs: event.RejectedIDs,
		},
	})
	return nil
}

// MemorySink keeps events in order. Used by tests and diagnostics.
type MemorySink struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// FailWith makes every later Append record nothing and return err.
func (s *MemorySink) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *MemorySink) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

// Events returns a copy of everything appended so far.
func (s *MemorySink) Events() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]audit.Event, len(s.events))
	copy(out, s.events)
	return out
}

// Kinds returns the kinds of the appended events in order.
func (s *MemorySink) Kinds() []audit.Kind {
	events := s.Events()
	kinds := make([]audit.Kind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	return kinds
}
