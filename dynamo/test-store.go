package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const testTable = EventsTableName("test-events")

// DynamoTestStore starts amazon/dynamodb-local in a container and returns a
// store backed by a fresh table together with its teardown.
func DynamoTestStore(ctx context.Context) (*DynamoEventStore, func(), error) {
	db, err := testcontainers.GenericContainer(
		ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:        "amazon/dynamodb-local",
				ExposedPorts: []string{"8000/tcp"},
				WaitingFor:   wait.ForListeningPort("8000"),
			},
			Started: true,
		},
	)
	if err != nil {
		return nil, nil, err
	}

	teardown := func() {
		if err := db.Terminate(ctx); err != nil {
			panic(err)
		}
	}

	host, err := db.Host(ctx)
	if err != nil {
		teardown()
		return nil, nil, err
	}

	port, err := db.MappedPort(ctx, "8000")
	if err != nil {
		teardown()
		return nil, nil, err
	}

	cfg, err := localConfig(ctx, fmt.Sprintf("http://%s:%s", host, port.Port()))
	if err != nil {
		teardown()
		return nil, nil, err
	}

	client := dynamodb.NewFromConfig(cfg)
	if err := createTable(ctx, client, testTable.String()); err != nil {
		teardown()
		return nil, nil, err
	}

	return NewEventStore(client, testTable), teardown, nil
}
