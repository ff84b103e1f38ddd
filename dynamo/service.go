package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/wire"
	"go.opentelemetry.io/contrib/instrumentation/github.com/aws/aws-sdk-go-v2/otelaws"

	"github.com/weegigs/wee-host-go/es"
	"github.com/weegigs/wee-host-go/support"
)

var Live = wire.NewSet(
	support.AWSConfig,
	Client,
	LiveEventsTableName,
	NewEventStore,
	wire.Bind(new(es.EventStore), new(*DynamoEventStore)),
)

var Local = wire.NewSet(
	LiveEventsTableName,
	LocalDynamoStore,
	wire.Bind(new(es.EventStore), new(*DynamoEventStore)),
)

var Test = wire.NewSet(
	TestStore,
	wire.Bind(new(es.EventStore), new(*DynamoEventStore)),
)

func LiveEventsTableName(cfg support.Config) EventsTableName {
	return EventsTableName(cfg.Table)
}

func TestStore(ctx context.Context) (*DynamoEventStore, func(), error) {
	return DynamoTestStore(ctx)
}

func Client(cfg aws.Config) *dynamodb.Client {
	otelaws.AppendMiddlewares(&cfg.APIOptions)
	return dynamodb.NewFromConfig(cfg)
}
