//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/weegigs/wee-host-go/support"
)

func inProcess(ctx context.Context, cfg support.Config) (*Application, func(), error) {
	panic(wire.Build(InProcess))
}

func inMemory(ctx context.Context, cfg support.Config) (*Application, func(), error) {
	panic(wire.Build(InMemory))
}

func live(ctx context.Context, cfg support.Config) (*Application, func(), error) {
	panic(wire.Build(Live))
}

func local(ctx context.Context, cfg support.Config) (*Application, func(), error) {
	panic(wire.Build(Local))
}

func eventStoreDB(ctx context.Context, cfg support.Config) (*Application, func(), error) {
	panic(wire.Build(EventStoreDB))
}
