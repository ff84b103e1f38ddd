package main

import (
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/weegigs/wee-host-go/counter"
	"github.com/weegigs/wee-host-go/dynamo"
	"github.com/weegigs/wee-host-go/esdbs"
	"github.com/weegigs/wee-host-go/host"
	"github.com/weegigs/wee-host-go/sinks"
	"github.com/weegigs/wee-host-go/support"
)

type Application struct {
	Config   support.Config
	Log      *zerolog.Logger
	Bindings *host.Bindings
	Counters *host.CounterBinding
	LogSink  *sinks.Log
	Toast    *sinks.Toast
	Errors   *sinks.Error
	Versions host.Versions
}

func NewApplication(
	cfg support.Config,
	log *zerolog.Logger,
	bindings *host.Bindings,
	counters *host.CounterBinding,
	logSink *sinks.Log,
	toast *sinks.Toast,
	errors *sinks.Error,
	versions host.Versions,
) *Application {
	return &Application{
		Config:   cfg,
		Log:      log,
		Bindings: bindings,
		Counters: counters,
		LogSink:  logSink,
		Toast:    toast,
		Errors:   errors,
		Versions: versions,
	}
}

func NewBindings(counters *host.CounterBinding) *host.Bindings {
	return host.NewBindings(counters)
}

var application = wire.NewSet(
	support.NewLogger,
	sinks.Console,
	host.NewCounterBinding,
	host.RuntimeVersions,
	NewBindings,
	NewApplication,
)

var InProcess = wire.NewSet(application, counter.InProcess)

var InMemory = wire.NewSet(application, counter.InMemory)

var Live = wire.NewSet(application, counter.EventSourced, dynamo.Live)

var Local = wire.NewSet(application, counter.EventSourced, dynamo.Local)

var EventStoreDB = wire.NewSet(application, counter.EventSourced, esdbs.Live)
