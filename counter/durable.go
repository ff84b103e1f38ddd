package counter

import (
	"context"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/weegigs/wee-host-go/es"
	"github.com/weegigs/wee-host-go/host"
)

const (
	AggregateType = "counter"
	tracerName    = "wee-host-counter"
)

var _ host.Counter = (*Durable)(nil)

var keys = es.NewRevisionGenerator()

// Durable is an event sourced counter. Concurrent increments are serialised
// through the store's expected revision check.
type Durable struct {
	id       es.AggregateId
	store    es.EventStore
	renderer *es.Renderer[Counter]
	attempts uint
}

type DurableOption func(counter *Durable)

func WithAttempts(attempts uint) DurableOption {
	return func(counter *Durable) {
		counter.attempts = attempts
	}
}

func WithKey(key string) DurableOption {
	return func(counter *Durable) {
		counter.id.Key = key
	}
}

func NewDurable(ctx context.Context, store es.EventStore, initial int, options ...DurableOption) (*Durable, error) {
	counter := &Durable{
		id:       es.AggregateId{Type: AggregateType, Key: keys.NewRevision(time.Now()).String()},
		store:    store,
		renderer: Renderer(),
		attempts: 10,
	}

	for _, option := range options {
		option(counter)
	}

	_, err := store.Publish(ctx, counter.id, es.Options(es.WithExpectedRevision(es.InitialRevision)), Created{Initial: initial})
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("failed to create counter %s", counter.id))
	}

	return counter, nil
}

func (c *Durable) Id() es.AggregateId {
	return c.id
}

func (c *Durable) Load(ctx context.Context) (Counter, es.Revision, error) {
	aggregate, err := c.store.Load(ctx, c.id)
	if err != nil {
		return Counter{}, "", err
	}

	state, err := c.renderer.Render(ctx, aggregate)
	if err != nil {
		return Counter{}, "", err
	}

	return state, aggregate.Revision, nil
}

func (c *Durable) IncrementAndGet(ctx context.Context) (int, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "increment counter")
	defer span.End()

	var value int
	err := retry.Do(
		func() error {
			state, revision, err := c.Load(ctx)
			if err != nil {
				return err
			}

			_, err = c.store.Publish(ctx, c.id, es.Options(es.WithExpectedRevision(revision)), Incremented{Amount: 1})
			if err != nil {
				return err
			}

			value = state.Value() + 1
			return nil
		},
		retry.RetryIf(func(err error) bool { return err == es.RevisionConflict }),
		retry.Attempts(c.attempts),
		retry.Delay(5*time.Millisecond),
		retry.MaxDelay(100*time.Millisecond),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		span.RecordError(err)
		return 0, errors.Wrap(err, fmt.Sprintf("failed to increment counter %s", c.id))
	}

	return value, nil
}
