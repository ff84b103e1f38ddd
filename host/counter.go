package host

import "context"

// Counter is the opaque stateful object handed out by a counter binding.
// IncrementAndGet adds one and returns the new value.
type Counter interface {
	IncrementAndGet(ctx context.Context) (int, error)
}

type CounterFactory func(ctx context.Context, initial int) (Counter, error)

type CounterFunction func(ctx context.Context) (int, error)

func (f CounterFunction) IncrementAndGet(ctx context.Context) (int, error) {
	return f(ctx)
}
