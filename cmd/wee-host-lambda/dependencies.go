package main

import (
	"github.com/google/wire"

	"github.com/weegigs/wee-host-go/connectors/hostlambda"
	"github.com/weegigs/wee-host-go/sinks"
	"github.com/weegigs/wee-host-go/support"
)

func NewSinks(log *sinks.Log, toast *sinks.Toast) hostlambda.Sinks {
	return hostlambda.Sinks{Log: log, Toast: toast}
}

var Live = wire.NewSet(support.NewLogger, sinks.Console, NewSinks, hostlambda.Live)
