package script

import (
	"context"
	_ "embed"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dop251/goja"
	"github.com/dop251/goja_nodejs/console"
	"github.com/dop251/goja_nodejs/eventloop"
	"github.com/dop251/goja_nodejs/require"
	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/weegigs/wee-host-go/host"
)

//go:embed demo.js
var Demo string

const DemoName = "demo.js"

var ErrClosed = errors.New("runtime closed")

type Option func(runtime *Runtime)

func Versions(versions host.Versions) Option {
	return func(runtime *Runtime) {
		runtime.versions = versions
	}
}

func Logger(log *zerolog.Logger) Option {
	return func(runtime *Runtime) {
		runtime.log = log
	}
}

// Env populates process.env.
func Env(env map[string]string) Option {
	return func(runtime *Runtime) {
		runtime.env = env
	}
}

// Alias makes process.binding(alias) resolve to the binding registered as name.
func Alias(alias string, name string) Option {
	return func(runtime *Runtime) {
		runtime.aliases[alias] = name
	}
}

// HTTPClient replaces the client used by fetch.
func HTTPClient(client *http.Client) Option {
	return func(runtime *Runtime) {
		runtime.client = client
	}
}

// FetchLimit bounds how much of a fetched body is read.
func FetchLimit(bytes int64) Option {
	return func(runtime *Runtime) {
		runtime.fetchLimit = bytes
	}
}

// Runtime is a JavaScript environment exposing host bindings and sinks to
// scripts. The VM belongs to an event loop running in the background; every
// entry into it is a job on that loop.
type Runtime struct {
	loop *eventloop.EventLoop
	vm   *goja.Runtime

	// ctx is only read and written on the loop.
	ctx      context.Context
	lifetime context.Context
	cancel   context.CancelFunc

	bindings *host.Bindings
	logSink  host.Sink
	toast    host.Sink
	errors   host.Sink

	versions   host.Versions
	env        map[string]string
	aliases    map[string]string
	log        *zerolog.Logger
	client     *http.Client
	fetchLimit int64
	fetches    int32

	lk        sync.Mutex
	listening *server

	control sync.Mutex
	closed  bool
}

func New(bindings *host.Bindings, logSink host.Sink, toastSink host.Sink, errorSink host.Sink, options ...Option) (*Runtime, error) {
	lifetime, cancel := context.WithCancel(context.Background())

	runtime := &Runtime{
		ctx:        lifetime,
		lifetime:   lifetime,
		cancel:     cancel,
		bindings:   bindings,
		logSink:    logSink,
		toast:      toastSink,
		errors:     errorSink,
		aliases:    map[string]string{"java": host.CounterBindingName},
		fetchLimit: 4 << 20,
	}

	for _, option := range options {
		option(runtime)
	}

	if runtime.log == nil {
		runtime.log = &log.Logger
	}
	if runtime.versions == nil {
		runtime.versions = host.RuntimeVersions()
	}
	if runtime.client == nil {
		runtime.client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	registry := require.NewRegistry(require.WithLoader(noSources))
	registry.RegisterNativeModule(console.ModuleName, console.RequireWithPrinter(printer{runtime.log}))
	registry.RegisterNativeModule("http", runtime.httpModule)

	runtime.loop = eventloop.NewEventLoop(eventloop.WithRegistry(registry))

	var err error
	runtime.loop.Run(func(vm *goja.Runtime) {
		runtime.vm = vm
		err = runtime.install()
	})
	if err != nil {
		cancel()
		return nil, err
	}

	runtime.loop.Start()

	return runtime, nil
}

// noSources keeps require from reading modules off disk.
func noSources(path string) ([]byte, error) {
	return nil, require.ModuleFileDoesNotExistError
}

// Run evaluates source on the loop and returns once it has completed.
// Timers and pending fetches it starts keep running; see Wait. Cancelling
// ctx interrupts the script.
func (r *Runtime) Run(ctx context.Context, name string, source string) error {
	finished := make(chan error, 1)

	scheduled := r.loop.RunOnLoop(func(vm *goja.Runtime) {
		done := make(chan struct{})
		stopped := make(chan struct{})
		go func() {
			defer close(stopped)
			select {
			case <-ctx.Done():
				vm.Interrupt(ctx.Err())
			case <-done:
			}
		}()

		r.within(ctx, func() {
			_, err := vm.RunScript(name, source)
			close(done)
			<-stopped
			vm.ClearInterrupt()
			finished <- err
		})
	})
	if !scheduled {
		return &Error{Script: name, Err: ErrClosed}
	}

	if err := <-finished; err != nil {
		return &Error{Script: name, Err: err}
	}

	return nil
}

// Wait blocks until no timers or fetches are outstanding.
func (r *Runtime) Wait(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		idle, err := r.idle()
		if err != nil || idle {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *Runtime) idle() (bool, error) {
	r.control.Lock()
	defer r.control.Unlock()

	if r.closed {
		return false, ErrClosed
	}

	pending := r.loop.Stop()
	r.loop.Start()

	return pending == 0 && atomic.LoadInt32(&r.fetches) == 0, nil
}

// Close interrupts any running script, cancels timers and outstanding
// fetches and stops the loop.
func (r *Runtime) Close() error {
	r.control.Lock()
	defer r.control.Unlock()

	if r.closed {
		return nil
	}
	r.closed = true

	r.cancel()
	r.vm.Interrupt(ErrClosed)
	r.loop.Terminate()

	return nil
}

// within runs fn with ctx as the context seen by bindings and sinks. It must
// be called on the loop.
func (r *Runtime) within(ctx context.Context, fn func()) {
	r.ctx = ctx
	defer func() { r.ctx = r.lifetime }()

	fn()
}

func (r *Runtime) install() error {
	process := r.vm.NewObject()
	if err := process.Set("versions", r.stringObject(r.versions)); err != nil {
		return err
	}
	if err := process.Set("env", r.stringObject(r.env)); err != nil {
		return err
	}
	if err := process.Set("binding", r.binding); err != nil {
		return err
	}

	globals := map[string]any{
		"process": process,
		"fetch":   r.fetch,
		"$log":    r.emitter("log", r.logSink, r.text),
		"$toast":  r.emitter("toast", r.toast, r.text),
		"$error":  r.emitter("error", r.errors, r.describe),
	}

	for name, value := range globals {
		if err := r.vm.Set(name, value); err != nil {
			return err
		}
	}

	return nil
}

func (r *Runtime) stringObject(values map[string]string) *goja.Object {
	object := r.vm.NewObject()
	for key, value := range values {
		_ = object.Set(key, value)
	}

	return object
}

func (r *Runtime) emitter(name string, sink host.Sink, format func(goja.Value) string) func(call goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		if err := sink.Emit(r.ctx, format(call.Argument(0))); err != nil {
			r.log.Warn().Err(err).Str("sink", name).Msg("failed to emit message")
		}

		return goja.Undefined()
	}
}

func (r *Runtime) text(value goja.Value) string {
	return value.String()
}

// describe renders objects as JSON. Errors and primitives use their string
// form.
func (r *Runtime) describe(value goja.Value) string {
	object, ok := value.(*goja.Object)
	if !ok || object.ClassName() == "Error" {
		return value.String()
	}
	if _, callable := goja.AssertFunction(object); callable {
		return value.String()
	}

	encoded, err := json.Marshal(object)
	if err != nil {
		return value.String()
	}

	return string(encoded)
}

func (r *Runtime) binding(call goja.FunctionCall) goja.Value {
	name := call.Argument(0).String()
	if alias, ok := r.aliases[name]; ok {
		name = alias
	}

	binding, err := r.bindings.Lookup(name)
	if err != nil {
		panic(r.vm.NewGoError(err))
	}

	switch b := binding.(type) {
	case *host.CounterBinding:
		return r.counterBinding(b)
	default:
		panic(r.vm.NewTypeError("binding %s cannot be exposed to scripts", name))
	}
}

func (r *Runtime) counterBinding(binding *host.CounterBinding) goja.Value {
	object := r.vm.NewObject()

	_ = object.Set("createObject", func(call goja.FunctionCall) goja.Value {
		counter, err := binding.CreateObject(r.ctx, int(call.Argument(0).ToInteger()))
		if err != nil {
			panic(r.vm.NewGoError(err))
		}

		increment := func(goja.FunctionCall) goja.Value {
			value, err := counter.IncrementAndGet(r.ctx)
			if err != nil {
				panic(r.vm.NewGoError(err))
			}

			return r.vm.ToValue(value)
		}

		instance := r.vm.NewObject()
		_ = instance.Set("plusOne", increment)
		_ = instance.Set("incrementAndGet", increment)

		return instance
	})

	return object
}

// printer sends console output to the runtime's logger.
type printer struct {
	log *zerolog.Logger
}

func (p printer) Log(message string) {
	p.log.Info().Str("source", "console").Msg(message)
}

func (p printer) Warn(message string) {
	p.log.Warn().Str("source", "console").Msg(message)
}

func (p printer) Error(message string) {
	p.log.Error().Str("source", "console").Msg(message)
}
