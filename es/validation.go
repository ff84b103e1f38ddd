package es

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/jaswdr/faker"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
)

var entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)

// NewEventStoreValidationSuite returns the behaviour every EventStore
// implementation is expected to share.
func NewEventStoreValidationSuite(ctx context.Context, store EventStore) *EventStoreValidationSuite {
	return &EventStoreValidationSuite{
		store: store,
		ctx:   ctx,
		faker: faker.New(),
	}
}

type EventStoreValidationSuite struct {
	store EventStore
	ctx   context.Context
	faker faker.Faker
}

type StoreValidationEvent struct {
	TestStringValue string `json:"test_string_value"`
	TestIntValue    int    `json:"test_int_value"`
}

func (s *EventStoreValidationSuite) Run(t *testing.T) {
	t.Run("loads an initial revision", s.LoadInitial)
	t.Run("loads a revision with events", s.LoadsRevisionWithEvents)
	t.Run("publishes single event", s.PublishesSingleEvent)
	t.Run("publishes multiple events in a single transaction", s.PublishesMultipleEvents)
	t.Run("rejects an empty publish", s.RejectsEmptyPublish)
	t.Run("returns a revision conflict with an initial revision", s.RevisionConflictOnInitialRevision)
	t.Run("returns a revision conflict on subsequent revision", s.RevisionConflictOnSubsequentRevision)
	t.Run("accepts the expected revision", s.AcceptsExpectedRevision)
	t.Run("supports causation id", s.Causation)
}

func (s *EventStoreValidationSuite) MakeTestAggregateId() AggregateId {
	return AggregateId{
		Type: "go-test",
		Key:  ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String(),
	}
}

func (s *EventStoreValidationSuite) MakeTestEvent() StoreValidationEvent {
	return StoreValidationEvent{
		TestStringValue: s.faker.Lorem().Sentence(10),
		TestIntValue:    s.faker.Int(),
	}
}

func (s *EventStoreValidationSuite) MakeTestEvents(count int) []DomainEvent {
	events := make([]DomainEvent, count)
	for i := 0; i < count; i++ {
		events[i] = s.MakeTestEvent()
	}

	return events
}

func (s *EventStoreValidationSuite) LoadInitial(t *testing.T) {
	aggregateId := s.MakeTestAggregateId()
	aggregate, err := s.store.Load(s.ctx, aggregateId)
	if !assert.Nil(t, err) {
		return
	}

	assert.Empty(t, aggregate.Events)
	assert.Equal(t, InitialRevision, aggregate.Revision)
	assert.EqualValues(t, aggregateId, aggregate.Id)
}

func (s *EventStoreValidationSuite) PublishesSingleEvent(t *testing.T) {
	aggregateId := s.MakeTestAggregateId()
	revision, err := s.store.Publish(s.ctx, aggregateId, Options(), s.MakeTestEvent())

	assert.Nil(t, err)
	assert.NotEqual(t, InitialRevision, revision)
}

func (s *EventStoreValidationSuite) PublishesMultipleEvents(t *testing.T) {
	events := s.MakeTestEvents(17)

	aggregateId := s.MakeTestAggregateId()
	revision, err := s.store.Publish(s.ctx, aggregateId, Options(), events...)
	if !assert.Nil(t, err) {
		return
	}

	aggregate, err := s.store.Load(s.ctx, aggregateId)
	if !assert.Nil(t, err) {
		return
	}

	assert.Len(t, aggregate.Events, 17)
	assert.Equal(t, revision, aggregate.Revision)
}

func (s *EventStoreValidationSuite) RejectsEmptyPublish(t *testing.T) {
	_, err := s.store.Publish(s.ctx, s.MakeTestAggregateId(), Options())
	assert.NotNil(t, err)
}

func (s *EventStoreValidationSuite) LoadsRevisionWithEvents(t *testing.T) {
	aggregateId := s.MakeTestAggregateId()
	event := s.MakeTestEvent()

	_, err := s.store.Publish(s.ctx, aggregateId, Options(), event)
	if !assert.Nil(t, err) {
		return
	}

	aggregate, err := s.store.Load(s.ctx, aggregateId)
	if !assert.Nil(t, err) {
		return
	}

	if !assert.Len(t, aggregate.Events, 1) {
		return
	}
	assert.EqualValues(t, aggregateId, aggregate.Id)

	var decoded StoreValidationEvent
	if assert.Nil(t, UnmarshalFromData(aggregate.Events[0].Data, &decoded)) {
		assert.Equal(t, event, decoded)
	}
}

func (s *EventStoreValidationSuite) Last(id AggregateId) (*RecordedEvent, error) {
	loaded, err := s.store.Load(s.ctx, id)
	if err != nil {
		return nil, err
	}

	length := len(loaded.Events)
	if length == 0 {
		return nil, errors.New("no events found")
	}

	return &loaded.Events[length-1], nil
}

func (s *EventStoreValidationSuite) RevisionConflictOnInitialRevision(t *testing.T) {
	event := s.MakeTestEvent()

	aggregateId := s.MakeTestAggregateId()
	_, err := s.store.Publish(s.ctx, aggregateId, Options(), event)
	if !assert.Nil(t, err) {
		return
	}

	_, err = s.store.Publish(s.ctx, aggregateId, Options(WithExpectedRevision(InitialRevision)), event)
	assert.Equal(t, RevisionConflict, err)
}

func (s *EventStoreValidationSuite) RevisionConflictOnSubsequentRevision(t *testing.T) {
	aggregateId := s.MakeTestAggregateId()
	event := s.MakeTestEvent()

	_, err := s.store.Publish(s.ctx, aggregateId, Options(), event)
	if !assert.Nil(t, err) {
		return
	}

	first, err := s.store.Load(s.ctx, aggregateId)
	if !assert.Nil(t, err) {
		return
	}

	_, err = s.store.Publish(s.ctx, aggregateId, Options(), event)
	if !assert.Nil(t, err) {
		return
	}

	_, err = s.store.Publish(s.ctx, aggregateId, Options(WithExpectedRevision(first.Revision)), event)
	assert.Equal(t, RevisionConflict, err)
}

func (s *EventStoreValidationSuite) AcceptsExpectedRevision(t *testing.T) {
	aggregateId := s.MakeTestAggregateId()

	first, err := s.store.Publish(s.ctx, aggregateId, Options(WithExpectedRevision(InitialRevision)), s.MakeTestEvent())
	if !assert.Nil(t, err) {
		return
	}

	second, err := s.store.Publish(s.ctx, aggregateId, Options(WithExpectedRevision(first)), s.MakeTestEvent())
	if !assert.Nil(t, err) {
		return
	}

	assert.Greater(t, second.String(), first.String())
}

func (s *EventStoreValidationSuite) Causation(t *testing.T) {
	aggregateId := s.MakeTestAggregateId()
	_, err := s.store.Publish(s.ctx, aggregateId, Options(), s.MakeTestEvent())
	if !assert.Nil(t, err) {
		return
	}

	first, err := s.Last(aggregateId)
	if !assert.Nil(t, err) {
		return
	}

	correlationId := CorrelationID("event/" + first.EventID.String())

	_, err = s.store.Publish(s.ctx, aggregateId, Options(WithCausationId(correlationId, first.EventID)), s.MakeTestEvent())
	if !assert.Nil(t, err) {
		return
	}

	second, err := s.Last(aggregateId)
	if !assert.Nil(t, err) {
		return
	}

	assert.Equal(t, correlationId, second.Metadata.CorrelationId)
	assert.Equal(t, first.EventID, second.Metadata.CausationId)
}
