package es

import (
	"context"
	"sync"
	"time"
)

type MemoryEventStoreOption func(store *MemoryEventStore)

// WithClock replaces time.Now as the source of revision timestamps.
func WithClock(clock func() time.Time) MemoryEventStoreOption {
	return func(store *MemoryEventStore) {
		store.clock = clock
	}
}

func NewMemoryEventStore(options ...MemoryEventStoreOption) *MemoryEventStore {
	store := &MemoryEventStore{
		aggregates: map[EncodedAggregateId][]RecordedEvent{},
		revision:   NewRevisionGenerator(),
	}

	for _, option := range options {
		option(store)
	}

	if store.clock == nil {
		store.clock = time.Now
	}

	return store
}

type MemoryEventStore struct {
	lk         sync.RWMutex
	aggregates map[EncodedAggregateId][]RecordedEvent
	revision   *RevisionGenerator
	clock      func() time.Time
}

func (s *MemoryEventStore) Load(ctx context.Context, id AggregateId) (Aggregate, error) {
	if err := ctx.Err(); err != nil {
		return Aggregate{}, err
	}

	s.lk.RLock()
	defer s.lk.RUnlock()

	stored := s.aggregates[id.Encode()]
	events := make([]RecordedEvent, len(stored))
	copy(events, stored)

	return Aggregate{
		Id:       id,
		Events:   events,
		Revision: RevisionOf(events),
	}, nil
}

func (s *MemoryEventStore) Publish(ctx context.Context, aggregateId AggregateId, options PublishOptions, events ...DomainEvent) (Revision, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if len(events) == 0 {
		return "", ErrNoEvents
	}

	s.lk.Lock()
	defer s.lk.Unlock()

	key := aggregateId.Encode()
	current := RevisionOf(s.aggregates[key])

	if expected := options.ExpectedRevision; expected != "" && expected != current {
		return "", RevisionConflict
	}

	now := s.clock()
	timestamp := TimestampFromTime(now)

	recorded := make([]RecordedEvent, len(events))
	for index, event := range events {
		data, err := MarshalToData(event)
		if err != nil {
			return "", err
		}

		revision := s.revision.NewRevision(now)
		recorded[index] = RecordedEvent{
			AggregateId: aggregateId,
			Revision:    revision,
			EventID:     EventID(revision),
			EventType:   EventTypeOf(event),
			Timestamp:   timestamp,
			Metadata:    options.RecordedEventMetadata,
			Data:        data,
		}
	}

	s.aggregates[key] = append(s.aggregates[key], recorded...)

	return RevisionOf(recorded), nil
}

// Remove deletes every event of the aggregate and reports how many were removed.
func (s *MemoryEventStore) Remove(ctx context.Context, aggregateId AggregateId) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.lk.Lock()
	defer s.lk.Unlock()

	key := aggregateId.Encode()
	count := len(s.aggregates[key])
	delete(s.aggregates, key)

	return count, nil
}
