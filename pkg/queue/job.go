package queue

import "context"

// Job is a unit of queued work, such as a scheduled scan run.
type Job interface {
	// Name returns a human readable identifier used in logs.
	Name() string

	// Type returns the message type this job consumes.
	Type() string

	// Handle processes one message payload.
	Handle(ctx context.Context, payload interface{}) error
}
