package sinks

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const message = " \nUser-Agent: test-agent\n"

func TestLog(t *testing.T) {
	var out bytes.Buffer
	logger := zerolog.New(&out)

	require.NoError(t, NewLog(&logger).Emit(context.Background(), message))

	assert.Contains(t, out.String(), `"message":" \nUser-Agent: test-agent\n"`)
	assert.Contains(t, out.String(), `"sink":"log"`)
}

func TestError(t *testing.T) {
	var out bytes.Buffer
	logger := zerolog.New(&out)

	require.NoError(t, NewError(&logger).Emit(context.Background(), `{"code":7}`))

	assert.Contains(t, out.String(), `"level":"error"`)
	assert.Contains(t, out.String(), `"sink":"error"`)
	assert.Contains(t, out.String(), `"message":"{\"code\":7}"`)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("display unavailable")
}

func TestToast(t *testing.T) {
	at := time.Date(2022, 2, 3, 4, 5, 6, 0, time.UTC)

	t.Run("displays and retains messages", func(t *testing.T) {
		var display bytes.Buffer
		toast := NewToast(&display, WithClock(func() time.Time { return at }))

		require.NoError(t, toast.Emit(context.Background(), message))

		recent := toast.Recent()
		require.Len(t, recent, 1)
		assert.Equal(t, message, recent[0].Message)
		assert.Equal(t, at, recent[0].At)
		assert.Contains(t, display.String(), message)
		assert.Contains(t, display.String(), recent[0].ID.String())
	})

	t.Run("bounds the history", func(t *testing.T) {
		toast := NewToast(nil, Retain(2))

		for _, m := range []string{"one", "two", "three"} {
			require.NoError(t, toast.Emit(context.Background(), m))
		}

		recent := toast.Recent()
		require.Len(t, recent, 2)
		assert.Equal(t, "two", recent[0].Message)
		assert.Equal(t, "three", recent[1].Message)
	})

	t.Run("reports display failures", func(t *testing.T) {
		toast := NewToast(failingWriter{})

		assert.Error(t, toast.Emit(context.Background(), message))
		assert.Len(t, toast.Recent(), 1)
	})
}
