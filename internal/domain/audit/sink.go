package audit

import "context"

// Sink receives audit events. Failures are reported but never undo the operation that produced the event.
type Sink interface {
	Append(ctx context.Context, event Event) error
}
