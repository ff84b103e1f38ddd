package dynamo

import (
	"context"
	"errors"
	"time"

	"github.com/avast/retry-go"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/goccy/go-json"
	pkgerrors "github.com/pkg/errors"

	"github.com/weegigs/wee-host-go/es"
)

type EventsTableName string

func (name EventsTableName) String() string {
	return string(name)
}

type DynamoEventStore struct {
	db       *dynamodb.Client
	table    string
	revision *es.RevisionGenerator
}

func NewEventStore(db *dynamodb.Client, table EventsTableName) *DynamoEventStore {
	return &DynamoEventStore{db: db, table: table.String(), revision: es.NewRevisionGenerator()}
}

func (ds *DynamoEventStore) Load(ctx context.Context, id es.AggregateId) (es.Aggregate, error) {
	events, err := ds.read(ctx, id)
	if err != nil {
		return es.Aggregate{}, err
	}

	return es.Aggregate{
		Id:       id,
		Revision: es.RevisionOf(events),
		Events:   events,
	}, nil
}

func (ds *DynamoEventStore) Publish(ctx context.Context, aggregateId es.AggregateId, options es.PublishOptions, events ...es.DomainEvent) (es.Revision, error) {
	return ds.publish(ctx, aggregateId, options, events)
}

func (ds *DynamoEventStore) Remove(ctx context.Context, aggregateId es.AggregateId) (int, error) {
	return ds.remove(ctx, aggregateId)
}

// internal

const (
	changeSetPrefix = "change-set#"
	latestSortKey   = "latest-revision"
)

type changeSet struct {
	PartitionKey string       `dynamodbav:"pk"`
	SortKey      string       `dynamodbav:"sk"`
	Events       string       `dynamodbav:"events"`
	Revision     es.Revision  `dynamodbav:"revision"`
	Timestamp    es.Timestamp `dynamodbav:"timestamp"`
}

type latestRecord struct {
	PartitionKey string       `dynamodbav:"pk"`
	SortKey      string       `dynamodbav:"sk"`
	Revision     es.Revision  `dynamodbav:"revision"`
	Timestamp    es.Timestamp `dynamodbav:"timestamp"`
}

func (cs *changeSet) recordedEvents() ([]es.RecordedEvent, error) {
	var events []es.RecordedEvent
	if err := json.Unmarshal([]byte(cs.Events), &events); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to unmarshal events")
	}

	return events, nil
}

func partitionKey(id es.AggregateId) string {
	return id.Encode().String()
}

func sortKey(revision es.Revision) string {
	return changeSetPrefix + revision.String()
}

func latestFor(record *changeSet) *latestRecord {
	return &latestRecord{
		PartitionKey: record.PartitionKey,
		SortKey:      latestSortKey,
		Revision:     record.Revision,
		Timestamp:    record.Timestamp,
	}
}

func (ds *DynamoEventStore) read(ctx context.Context, id es.AggregateId) ([]es.RecordedEvent, error) {
	query := expression.Key("pk").Equal(expression.Value(partitionKey(id))).And(
		expression.Key("sk").BeginsWith(changeSetPrefix),
	)

	projection := expression.NamesList(expression.Name("events"))

	expr, err := expression.NewBuilder().WithKeyCondition(query).WithProjection(projection).Build()
	if err != nil {
		return nil, err
	}

	var events []es.RecordedEvent
	var start map[string]types.AttributeValue
	for {
		out, err := ds.db.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(ds.table),
			ExclusiveStartKey:         start,
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			KeyConditionExpression:    expr.KeyCondition(),
			ProjectionExpression:      expr.Projection(),
		})
		if err != nil {
			return nil, err
		}

		var items []changeSet
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, err
		}

		for _, record := range items {
			recorded, err := record.recordedEvents()
			if err != nil {
				return nil, err
			}
			events = append(events, recorded...)
		}

		start = out.LastEvaluatedKey
		if start == nil {
			break
		}
	}

	return events, nil
}

func latestCondition(revision es.Revision, expectedRevision es.Revision) expression.ConditionBuilder {
	if len(expectedRevision) == 0 {
		return expression.Name("revision").LessThan(expression.Value(revision)).Or(
			expression.AttributeNotExists(expression.Name("revision")),
		)
	}

	if expectedRevision == es.InitialRevision {
		return expression.AttributeNotExists(expression.Name("revision"))
	}

	return expression.Name("revision").Equal(expression.Value(expectedRevision))
}

func isRevisionConflict(err error) bool {
	return err == es.RevisionConflict
}

func maybeRevisionConflict(err error) error {
	var cancelled *types.TransactionCanceledException
	if errors.As(err, &cancelled) {
		for _, reason := range cancelled.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return es.RevisionConflict
			}
		}
	}

	var failed *smithy.OperationError
	if errors.As(err, &failed) {
		return pkgerrors.Wrapf(err, "%s %s failed", failed.Service(), failed.Operation())
	}

	return err
}

func (ds *DynamoEventStore) makeChangeSet(aggregateId es.AggregateId, options es.PublishOptions, events []es.DomainEvent) (*changeSet, error) {
	now := time.Now()
	timestamp := es.TimestampFromTime(now)

	recorded := make([]es.RecordedEvent, len(events))
	for index, event := range events {
		data, err := es.MarshalToData(event)
		if err != nil {
			return nil, err
		}

		revision := ds.revision.NewRevision(now)
		recorded[index] = es.RecordedEvent{
			EventID:     es.EventID(revision),
			EventType:   es.EventTypeOf(event),
			AggregateId: aggregateId,
			Data:        data,
			Revision:    revision,
			Timestamp:   timestamp,
			Metadata:    options.RecordedEventMetadata,
		}
	}

	encoded, err := json.Marshal(recorded)
	if err != nil {
		return nil, err
	}

	last := es.RevisionOf(recorded)

	return &changeSet{
		PartitionKey: partitionKey(aggregateId),
		SortKey:      sortKey(last),
		Events:       string(encoded),
		Timestamp:    timestamp,
		Revision:     last,
	}, nil
}

func (ds *DynamoEventStore) publish(ctx context.Context, aggregateId es.AggregateId, options es.PublishOptions, events []es.DomainEvent) (es.Revision, error) {
	if len(events) == 0 {
		return "", es.ErrNoEvents
	}

	var revision es.Revision

	err := retry.Do(
		func() error {
			changes, err := ds.makeChangeSet(aggregateId, options, events)
			if err != nil {
				return err
			}
			revision = changes.Revision

			latest, err := attributevalue.MarshalMap(latestFor(changes))
			if err != nil {
				return err
			}

			record, err := attributevalue.MarshalMap(changes)
			if err != nil {
				return err
			}

			condition, err := expression.NewBuilder().WithCondition(
				latestCondition(changes.Revision, options.ExpectedRevision),
			).Build()
			if err != nil {
				return err
			}

			_, err = ds.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
				TransactItems: []types.TransactWriteItem{
					{
						Put: &types.Put{
							Item:                                latest,
							TableName:                           aws.String(ds.table),
							ConditionExpression:                 condition.Condition(),
							ExpressionAttributeNames:            condition.Names(),
							ExpressionAttributeValues:           condition.Values(),
							ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureNone,
						},
					},
					{
						Put: &types.Put{
							Item:      record,
							TableName: aws.String(ds.table),
						},
					},
				},
			})
			return maybeRevisionConflict(err)
		},
		// a conflict without an expected revision only means another writer
		// raced us to the latest record
		retry.RetryIf(func(err error) bool {
			return isRevisionConflict(err) && len(options.ExpectedRevision) == 0
		}),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)

	if err != nil {
		return "", err
	}

	return revision, nil
}

func (ds *DynamoEventStore) remove(ctx context.Context, id es.AggregateId) (int, error) {
	type record struct {
		PartitionKey string `dynamodbav:"pk"`
		SortKey      string `dynamodbav:"sk"`
	}

	query := expression.Key("pk").Equal(expression.Value(partitionKey(id)))
	projection := expression.NamesList(expression.Name("pk"), expression.Name("sk"))

	expr, err := expression.NewBuilder().WithKeyCondition(query).WithProjection(projection).Build()
	if err != nil {
		return 0, err
	}

	var count int
	var start map[string]types.AttributeValue
	for {
		out, err := ds.db.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(ds.table),
			ExclusiveStartKey:         start,
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			KeyConditionExpression:    expr.KeyCondition(),
			ProjectionExpression:      expr.Projection(),
			Limit:                     aws.Int32(25),
		})
		if err != nil {
			return count, err
		}

		if len(out.Items) > 0 {
			var items []record
			if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
				return count, err
			}

			actions := make([]types.TransactWriteItem, 0, len(items))
			for _, item := range items {
				key, err := attributevalue.MarshalMap(item)
				if err != nil {
					return count, err
				}

				actions = append(actions, types.TransactWriteItem{
					Delete: &types.Delete{Key: key, TableName: aws.String(ds.table)},
				})
			}

			if _, err := ds.db.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: actions}); err != nil {
				return count, err
			}

			count += len(items)
		}

		start = out.LastEvaluatedKey
		if start == nil {
			break
		}
	}

	return count, nil
}
