package es

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
)

const tracerName = "wee-host-events"

type Reducer[T any] interface {
	Reduce(state *T, evt *RecordedEvent) error
}

type ReducerFunction[T any, E any] func(state *T, evt *E) error

func (f ReducerFunction[T, E]) Reduce(state *T, evt *RecordedEvent) error {
	var event E
	if err := UnmarshalFromData(evt.Data, &event); err != nil {
		return err
	}

	return f(state, &event)
}

type Reducers[T any] map[EventType]Reducer[T]

type Renderer[T any] struct {
	Reducers Reducers[T]
}

// Render folds the aggregate's events into a fresh T. Events without a reducer
// are skipped.
func (r *Renderer[T]) Render(ctx context.Context, aggregate Aggregate) (T, error) {
	var state T

	_, span := otel.Tracer(tracerName).Start(ctx, fmt.Sprintf("render %s", NameOf(state)))
	defer span.End()

	for i := range aggregate.Events {
		event := &aggregate.Events[i]

		reducer := r.Reducers[event.EventType]
		if reducer == nil {
			continue
		}

		if err := reducer.Reduce(&state, event); err != nil {
			return state, errors.Wrap(err, fmt.Sprintf("failed to process update with %s", event.EventType))
		}
	}

	return state, nil
}
