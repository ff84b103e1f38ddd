package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-host-go/host"
	"github.com/weegigs/wee-host-go/script"
	"github.com/weegigs/wee-host-go/support"
)

type test = func(t *testing.T)

func config(store string) support.Config {
	return support.Config{
		Port:      3000,
		Initial:   10,
		Calls:     3,
		Store:     store,
		Telemetry: support.TelemetryNone,
		LogLevel:  "error",
		LogFormat: "json",
	}
}

func runsDemoWith(store string) test {
	return func(t *testing.T) {
		ctx := context.Background()

		app, cleanup, err := build(ctx, config(store))
		require.NoError(t, err)
		defer cleanup()

		values, err := demo(ctx, app)
		require.NoError(t, err)
		assert.Equal(t, []int{11, 12, 13}, values)
	}
}

type recordingSink struct {
	lk       sync.Mutex
	messages []string
}

func (s *recordingSink) Emit(ctx context.Context, message string) error {
	s.lk.Lock()
	defer s.lk.Unlock()

	s.messages = append(s.messages, message)
	return nil
}

func (s *recordingSink) Messages() []string {
	s.lk.Lock()
	defer s.lk.Unlock()

	return append([]string(nil), s.messages...)
}

func servesWithoutTouchingTheCounter(store string) test {
	return func(t *testing.T) {
		ctx := context.Background()

		app, cleanup, err := build(ctx, config(store))
		require.NoError(t, err)
		defer cleanup()

		values := &recordingSink{}
		runtime, err := script.New(
			app.Bindings,
			values,
			&recordingSink{},
			app.Errors,
			script.Versions(app.Versions),
			script.Logger(app.Log),
			script.Env(environment(app.Config.Port)),
		)
		require.NoError(t, err)
		defer runtime.Close()

		require.NoError(t, runtime.Run(ctx, script.DemoName, script.Demo))

		_, handler, ok := runtime.Listener()
		require.True(t, ok)
		for i := 0; i < 10; i++ {
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusOK, recorder.Code)
		}

		require.NoError(t, runtime.Run(ctx, "next.js", `$log(counter.plusOne())`))

		messages := values.Messages()
		require.Len(t, messages, 3+10+1)
		assert.Equal(t, []string{"11", "12", "13"}, messages[:3])
		assert.Equal(t, "14", messages[len(messages)-1])
	}
}

func registersTheCounterBinding(t *testing.T) {
	app, cleanup, err := build(context.Background(), config(support.StoreNative))
	require.NoError(t, err)
	defer cleanup()

	binding, err := host.LookupAs[*host.CounterBinding](app.Bindings, host.CounterBindingName)
	require.NoError(t, err)
	assert.Same(t, app.Counters, binding)
}

func TestApplication(t *testing.T) {
	t.Run("runs the demo with a native counter", runsDemoWith(support.StoreNative))
	t.Run("runs the demo with an event sourced counter", runsDemoWith(support.StoreMemory))
	t.Run("serves without touching a native counter", servesWithoutTouchingTheCounter(support.StoreNative))
	t.Run("serves without touching an event sourced counter", servesWithoutTouchingTheCounter(support.StoreMemory))
	t.Run("registers the counter binding", registersTheCounterBinding)
}

func TestVersionsCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"versions"})
	defer rootCmd.SetArgs(nil)

	require.NoError(t, rootCmd.Execute())

	var versions host.Versions
	require.NoError(t, json.Unmarshal(out.Bytes(), &versions))
	assert.Equal(t, host.RuntimeVersions(), versions)
}

func TestEnvironment(t *testing.T) {
	t.Setenv("WEE_HOST_TEST", "present")

	env := environment(3001)
	assert.Equal(t, "3001", env["PORT"])
	assert.Equal(t, "present", env["WEE_HOST_TEST"])
}
