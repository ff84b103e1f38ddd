//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/weegigs/wee-host-go/connectors/hostlambda"
	"github.com/weegigs/wee-host-go/support"
)

func live(ctx context.Context, cfg support.Config) (hostlambda.GatewayHandler, func(), error) {
	panic(wire.Build(Live))
}
