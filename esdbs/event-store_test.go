package esdbs

import (
	"context"
	"fmt"
	"testing"

	"github.com/EventStore/EventStore-Client-Go/esdb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-host-go/es"
)

type testEvent struct {
	Value string `json:"value"`
}

func createEvents(count int) []es.DomainEvent {
	events := make([]es.DomainEvent, count)
	for i := range events {
		events[i] = testEvent{Value: fmt.Sprintf("test %d", i)}
	}
	return events
}

func TestRevisions(t *testing.T) {
	assert.Equal(t, es.Revision("00000000000000000000000001"), revisionOf(0))
	assert.Equal(t, es.Revision("0000000000000000000000000a"), revisionOf(9))

	expected, err := expectedRevision(revisionOf(9))
	require.NoError(t, err)
	assert.Equal(t, esdb.Revision(9), expected)

	_, err = expectedRevision("not-a-revision")
	assert.Error(t, err)
}

func TestEventStore(t *testing.T) {
	if testing.Short() {
		t.Skip("requires docker")
	}

	ctx := context.Background()
	store, cleanup, err := NewESDBTestStore(ctx, PageSize(5))
	require.NoError(t, err)
	defer cleanup()

	t.Run("esdb event store validation", func(t *testing.T) {
		suite := es.NewEventStoreValidationSuite(ctx, store)
		suite.Run(t)
	})

	t.Run("should batch publish", func(t *testing.T) {
		id := es.AggregateId{Type: "test", Key: "should-batch-publish"}

		revision, err := store.Publish(ctx, id, es.PublishOptions{}, createEvents(12)...)
		require.NoError(t, err)

		aggregate, err := store.Load(ctx, id)
		require.NoError(t, err)

		assert.Len(t, aggregate.Events, 12)
		assert.Equal(t, es.Revision("0000000000000000000000000c"), aggregate.Revision)
		assert.Equal(t, revision, aggregate.Revision)
	})
}
