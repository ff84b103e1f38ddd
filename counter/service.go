package counter

import (
	"context"

	"github.com/google/wire"

	"github.com/weegigs/wee-host-go/es"
	"github.com/weegigs/wee-host-go/host"
)

func NativeFactory() host.CounterFactory {
	return func(ctx context.Context, initial int) (host.Counter, error) {
		return NewNative(initial), nil
	}
}

func DurableFactory(store es.EventStore) host.CounterFactory {
	return func(ctx context.Context, initial int) (host.Counter, error) {
		return NewDurable(ctx, store, initial)
	}
}

func MemoryStore() *es.MemoryEventStore {
	return es.NewMemoryEventStore()
}

var InProcess = wire.NewSet(NativeFactory)

var EventSourced = wire.NewSet(DurableFactory)

var InMemory = wire.NewSet(
	MemoryStore,
	wire.Bind(new(es.EventStore), new(*es.MemoryEventStore)),
	DurableFactory,
)
