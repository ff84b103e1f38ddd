package host

import (
	"context"
	"strconv"

	"github.com/pkg/errors"
)

// RunCounterDemo creates one counter through binding and increments it calls
// times, emitting every value to sink.
func RunCounterDemo(ctx context.Context, binding *CounterBinding, initial int, calls int, sink Sink) ([]int, error) {
	counter, err := binding.CreateObject(ctx, initial)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create counter")
	}

	values := make([]int, 0, calls)
	for i := 0; i < calls; i++ {
		value, err := counter.IncrementAndGet(ctx)
		if err != nil {
			return values, errors.Wrapf(err, "increment %d failed", i+1)
		}
		values = append(values, value)

		if err := sink.Emit(ctx, strconv.Itoa(value)); err != nil {
			return values, errors.Wrap(err, "failed to emit counter value")
		}
	}

	return values, nil
}
