package esdbs

import (
	"github.com/EventStore/EventStore-Client-Go/esdb"
	"github.com/google/wire"

	"github.com/weegigs/wee-host-go/es"
	"github.com/weegigs/wee-host-go/support"
)

func LiveConnectionString(cfg support.Config) ConnectionString {
	return ConnectionString(cfg.ESDB)
}

func LiveEventStore(client *esdb.Client) *ESDBEventStore {
	return NewEventStore(client)
}

var Live = wire.NewSet(
	LiveConnectionString,
	Client,
	LiveEventStore,
	wire.Bind(new(es.EventStore), new(*ESDBEventStore)),
)
