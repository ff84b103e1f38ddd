package es

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type TestEvent struct{}

type TestNamedEvent struct{}

func (TestNamedEvent) TypeName() string {
	return "test:named"
}

type TestTypedEvent struct{}

func (TestTypedEvent) EventType() EventType {
	return "test:typed"
}

type tally struct {
	Total int
}

type added struct {
	Amount int `json:"amount"`
}

func TestNames(t *testing.T) {
	t.Run("resolves explicit name", func(t *testing.T) {
		assert.Equal(t, "test:named", NameOf(TestNamedEvent{}))
	})

	t.Run("resolves implicit name", func(t *testing.T) {
		assert.Equal(t, "es:test-event", NameOf(TestEvent{}))
		assert.Equal(t, "es:test-event", NameOf(&TestEvent{}))
	})

	t.Run("prefers the event type", func(t *testing.T) {
		assert.Equal(t, EventType("test:typed"), EventTypeOf(TestTypedEvent{}))
	})
}

func TestAggregateIds(t *testing.T) {
	id := AggregateId{Type: "counter", Key: "a.b"}

	decoded, err := id.Encode().Decode()
	assert.Nil(t, err)
	assert.Equal(t, id, decoded)

	_, err = EncodedAggregateId("nodelimiter").Decode()
	assert.NotNil(t, err)
}

func TestCovertsToISODatetime(t *testing.T) {
	timestamp := string(InitialRevision.Timestamp())
	assert.Equal(t, time.Unix(0, 0).UTC().Format(RFC3339Milli), timestamp)

	now := time.Now()
	revision := NewRevisionGenerator().NewRevision(now)

	assert.Equal(t, now.UTC().Format(RFC3339Milli), string(revision.Timestamp()))
}

func TestRenderer(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryEventStore()
	id := AggregateId{Type: "tally", Key: "render"}

	var add ReducerFunction[tally, added] = func(state *tally, evt *added) error {
		state.Total += evt.Amount
		return nil
	}
	renderer := Renderer[tally]{Reducers: Reducers[tally]{EventTypeOf(added{}): add}}

	_, err := store.Publish(ctx, id, Options(), added{Amount: 2}, TestEvent{}, added{Amount: 5})
	if !assert.Nil(t, err) {
		return
	}

	aggregate, err := store.Load(ctx, id)
	if !assert.Nil(t, err) {
		return
	}

	state, err := renderer.Render(ctx, aggregate)
	assert.Nil(t, err)
	assert.Equal(t, 7, state.Total)

	aggregate.Events[0].Data.Encoding = "text/plain"
	_, err = renderer.Render(ctx, aggregate)

	var invalid *InvalidEncodingError
	assert.ErrorAs(t, err, &invalid)
}
