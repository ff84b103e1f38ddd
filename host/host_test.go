package host

import (
	"context"
	"errors"
	"runtime/debug"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type otherBinding struct{}

func (otherBinding) BindingName() string {
	return "other"
}

func sequence() CounterFactory {
	return func(ctx context.Context, start int) (Counter, error) {
		current := start
		return CounterFunction(func(ctx context.Context) (int, error) {
			current++
			return current, nil
		}), nil
	}
}

type recordingSink struct {
	messages []string
}

func (s *recordingSink) Emit(ctx context.Context, message string) error {
	s.messages = append(s.messages, message)
	return nil
}

func looksUpBindings(t *testing.T) {
	counter := NewCounterBinding(sequence())
	bindings := NewBindings(counter, otherBinding{})

	found, err := LookupAs[*CounterBinding](bindings, CounterBindingName)
	require.NoError(t, err)
	assert.Same(t, counter, found)

	assert.Equal(t, []string{"counter", "other"}, bindings.Names())
}

func reportsMissingBindings(t *testing.T) {
	_, err := NewBindings().Lookup("java")

	var missing *BindingNotFoundError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "java", missing.Name)
	assert.Equal(t, "no such binding: java", err.Error())
}

func reportsMistypedBindings(t *testing.T) {
	bindings := NewBindings(otherBinding{})

	_, err := LookupAs[*CounterBinding](bindings, "other")

	var mistyped *BindingTypeError
	assert.ErrorAs(t, err, &mistyped)
}

func TestBindings(t *testing.T) {
	t.Run("looks up bindings by name", looksUpBindings)
	t.Run("reports missing bindings", reportsMissingBindings)
	t.Run("reports mistyped bindings", reportsMistypedBindings)
}

func TestUserAgentMessage(t *testing.T) {
	assert.Equal(t, " \nUser-Agent: test-agent\n", UserAgentMessage("test-agent", true))
	assert.Equal(t, " \nUser-Agent: undefined\n", UserAgentMessage("", false))
	assert.Equal(t, " \nUser-Agent: \n", UserAgentMessage("", true))
}

func TestVersions(t *testing.T) {
	t.Run("derives keys from module paths", func(t *testing.T) {
		assert.Equal(t, "go_json", VersionKey("github.com/goccy/go-json"))
		assert.Equal(t, "ulid", VersionKey("github.com/oklog/ulid/v2"))
		assert.Equal(t, "zerolog", VersionKey("github.com/rs/zerolog"))
	})

	t.Run("collects build information", func(t *testing.T) {
		info := &debug.BuildInfo{
			Main: debug.Module{Path: "github.com/weegigs/wee-host-go", Version: "v0.1.0"},
			Deps: []*debug.Module{
				{Path: "github.com/rs/zerolog", Version: "v1.26.1"},
				{Path: "github.com/oklog/ulid/v2", Version: "v2.0.2"},
				{Path: "github.com/go-chi/chi/v5", Version: "v5.0.7", Replace: &debug.Module{Path: "../chi", Version: "v5.0.8"}},
			},
		}

		expected := Versions{
			"go":      "go1.21.0",
			"host":    "v0.1.0",
			"zerolog": "v1.26.1",
			"ulid":    "v2.0.2",
			"chi":     "v5.0.8",
		}

		if diff := cmp.Diff(expected, versionsFrom("go1.21.0", info)); diff != "" {
			t.Errorf("unexpected versions (-want +got):\n%s", diff)
		}
	})

	t.Run("hands out copies", func(t *testing.T) {
		first := RuntimeVersions()
		first["go"] = "tampered"

		assert.NotEqual(t, "tampered", RuntimeVersions()["go"])
	})
}

func TestRunCounterDemo(t *testing.T) {
	t.Run("emits ascending values", func(t *testing.T) {
		sink := &recordingSink{}

		values, err := RunCounterDemo(context.Background(), NewCounterBinding(sequence()), 10, 3, sink)
		require.NoError(t, err)

		assert.Equal(t, []int{11, 12, 13}, values)
		assert.Equal(t, []string{"11", "12", "13"}, sink.messages)
	})

	t.Run("stops on counter failure", func(t *testing.T) {
		failure := errors.New("boom")
		binding := NewCounterBinding(func(ctx context.Context, initial int) (Counter, error) {
			return CounterFunction(func(ctx context.Context) (int, error) { return 0, failure }), nil
		})

		values, err := RunCounterDemo(context.Background(), binding, 10, 3, Discard)
		assert.ErrorIs(t, err, failure)
		assert.Empty(t, values)
	})
}
