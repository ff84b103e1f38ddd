package host

import "context"

// Sink is an output destination for diagnostic text, such as a log or a
// user-facing notification.
type Sink interface {
	Emit(ctx context.Context, message string) error
}

type SinkFunction func(ctx context.Context, message string) error

func (f SinkFunction) Emit(ctx context.Context, message string) error {
	return f(ctx, message)
}

var Discard Sink = SinkFunction(func(context.Context, string) error { return nil })
