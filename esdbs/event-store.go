package esdbs

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/EventStore/EventStore-Client-Go/esdb"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"

	"github.com/weegigs/wee-host-go/es"
)

var _ es.EventStore = (*ESDBEventStore)(nil)

type EventStoreOption func(*ESDBEventStore)

const defaultPageSize = 97

func PageSize(size int) EventStoreOption {
	return func(store *ESDBEventStore) {
		if size <= 0 {
			size = defaultPageSize
		}

		store.pageSize = size
	}
}

func NewEventStore(client *esdb.Client, options ...EventStoreOption) *ESDBEventStore {
	store := &ESDBEventStore{
		db:       client,
		pageSize: defaultPageSize,
	}

	for _, option := range options {
		option(store)
	}

	return store
}

// ESDBEventStore keeps one EventStoreDB stream per aggregate. Stream event
// numbers start at zero, so revisions are the event number plus one,
// hex encoded to the width of the initial revision.
type ESDBEventStore struct {
	db       *esdb.Client
	pageSize int
}

func revisionOf(eventNumber uint64) es.Revision {
	return es.Revision(fmt.Sprintf("%026x", eventNumber+1))
}

func expectedRevision(revision es.Revision) (esdb.ExpectedRevision, error) {
	switch revision {
	case "":
		return esdb.Any{}, nil
	case es.InitialRevision:
		return esdb.NoStream{}, nil
	}

	number, err := strconv.ParseUint(revision.String(), 16, 64)
	if err != nil || number == 0 {
		return nil, errors.Errorf("invalid expected revision %q", revision)
	}

	return esdb.Revision(number - 1), nil
}

func (store *ESDBEventStore) Publish(ctx context.Context, aggregateId es.AggregateId, options es.PublishOptions, events ...es.DomainEvent) (es.Revision, error) {
	if len(events) == 0 {
		return "", es.ErrNoEvents
	}

	metadata := map[string]string{}
	if options.RecordedEventMetadata.CorrelationId != "" {
		metadata["$correlationId"] = options.RecordedEventMetadata.CorrelationId.String()
	}
	if options.RecordedEventMetadata.CausationId != "" {
		metadata["$causationId"] = options.RecordedEventMetadata.CausationId.String()
	}

	var md []byte
	if len(metadata) > 0 {
		var err error
		if md, err = json.Marshal(metadata); err != nil {
			return "", errors.Wrap(err, "failed to marshal metadata")
		}
	}

	records := make([]esdb.EventData, len(events))
	for i, event := range events {
		data, err := json.Marshal(event)
		if err != nil {
			return "", errors.Wrap(err, "failed to marshal event")
		}

		records[i] = esdb.EventData{
			ContentType: esdb.JsonContentType,
			EventType:   es.EventTypeOf(event).String(),
			Data:        data,
			Metadata:    md,
		}
	}

	revision, err := expectedRevision(options.ExpectedRevision)
	if err != nil {
		return "", err
	}

	result, err := store.db.AppendToStream(
		ctx,
		aggregateId.Encode().String(),
		esdb.AppendToStreamOptions{ExpectedRevision: revision},
		records...,
	)
	if err != nil {
		if errors.Is(err, esdb.ErrWrongExpectedStreamRevision) {
			return "", es.RevisionConflict
		}

		return "", errors.Wrap(err, "failed to append to stream")
	}

	return revisionOf(result.NextExpectedVersion), nil
}

func (store *ESDBEventStore) Load(ctx context.Context, id es.AggregateId) (es.Aggregate, error) {
	var events []es.RecordedEvent

	var position esdb.StreamPosition = esdb.Start{}
	for {
		page, last, err := store.read(ctx, id, position)
		if err != nil {
			return es.Aggregate{}, err
		}

		events = append(events, page...)
		if len(page) < store.pageSize {
			break
		}

		position = esdb.Revision(last + 1)
	}

	return es.Aggregate{
		Id:       id,
		Events:   events,
		Revision: es.RevisionOf(events),
	}, nil
}

func (store *ESDBEventStore) read(ctx context.Context, id es.AggregateId, from esdb.StreamPosition) ([]es.RecordedEvent, uint64, error) {
	stream, err := store.db.ReadStream(ctx, id.Encode().String(), esdb.ReadStreamOptions{From: from}, uint64(store.pageSize))
	if err != nil {
		if errors.Is(err, esdb.ErrStreamNotFound) || errors.Is(err, io.EOF) {
			return nil, 0, nil
		}

		return nil, 0, errors.Wrap(err, "failed to read stream")
	}
	defer stream.Close()

	var events []es.RecordedEvent
	var last uint64

	for {
		event, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if errors.Is(err, esdb.ErrStreamNotFound) {
			return nil, 0, nil
		}
		if err != nil {
			return nil, 0, errors.Wrap(err, "failed to read event")
		}

		recorded, err := record(id, event.OriginalEvent())
		if err != nil {
			return nil, 0, err
		}

		events = append(events, recorded)
		last = event.OriginalEvent().EventNumber
	}

	return events, last, nil
}

func record(id es.AggregateId, e *esdb.RecordedEvent) (es.RecordedEvent, error) {
	var metadata map[string]string
	if len(e.UserMetadata) > 0 {
		if err := json.Unmarshal(e.UserMetadata, &metadata); err != nil {
			return es.RecordedEvent{}, errors.Wrap(err, "failed to unmarshal metadata")
		}
	}

	return es.RecordedEvent{
		AggregateId: id,
		EventID:     es.EventID(e.EventID.String()),
		Revision:    revisionOf(e.EventNumber),
		Timestamp:   es.TimestampFromTime(e.CreatedDate),
		EventType:   es.EventType(e.EventType),
		Data: es.Data{
			Encoding: e.ContentType,
			Data:     e.Data,
		},
		Metadata: es.RecordedEventMetadata{
			CorrelationId: es.CorrelationID(metadata["$correlationId"]),
			CausationId:   es.EventID(metadata["$causationId"]),
		},
	}, nil
}
