package hosthttp

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-host-go/host"
)

var versions = host.Versions{"go": "go1.21.0", "host": "v0.1.0", "zerolog": "v1.26.1"}

type recordingSink struct {
	lk       sync.Mutex
	messages []string
	err      error
}

func (s *recordingSink) Emit(ctx context.Context, message string) error {
	s.lk.Lock()
	defer s.lk.Unlock()

	s.messages = append(s.messages, message)
	return s.err
}

func (s *recordingSink) Messages() []string {
	s.lk.Lock()
	defer s.lk.Unlock()

	return append([]string(nil), s.messages...)
}

func newService() (http.Handler, *recordingSink, *recordingSink) {
	logSink := &recordingSink{}
	toastSink := &recordingSink{}
	logger := zerolog.Nop()

	return NewHandler(logSink, toastSink, Versions(versions), Logger(&logger)), logSink, toastSink
}

func decode(t *testing.T, body io.Reader) host.Versions {
	var decoded host.Versions
	require.NoError(t, json.NewDecoder(body).Decode(&decoded))
	return decoded
}

func respondsWithVersions(t *testing.T) {
	handler, _, _ := newService()
	server := httptest.NewServer(handler)
	defer server.Close()

	request, err := http.NewRequest(http.MethodGet, server.URL, nil)
	require.NoError(t, err)
	request.Header.Set("User-Agent", "test-agent")

	response, err := server.Client().Do(request)
	require.NoError(t, err)
	defer response.Body.Close()

	assert.Equal(t, http.StatusOK, response.StatusCode)
	assert.Contains(t, response.Header.Get("Content-Type"), "application/json")
	assert.Equal(t, versions, decode(t, response.Body))
}

func emitsToBothSinks(t *testing.T) {
	handler, logSink, toastSink := newService()

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("User-Agent", "test-agent")
	handler.ServeHTTP(httptest.NewRecorder(), request)

	expected := []string{" \nUser-Agent: test-agent\n"}
	assert.Equal(t, expected, logSink.Messages())
	assert.Equal(t, expected, toastSink.Messages())
}

func usesPlaceholderWithoutUserAgent(t *testing.T) {
	handler, logSink, toastSink := newService()

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Del("User-Agent")

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, []string{" \nUser-Agent: undefined\n"}, logSink.Messages())
	assert.Equal(t, []string{" \nUser-Agent: undefined\n"}, toastSink.Messages())
}

func usesTheFirstUserAgent(t *testing.T) {
	handler, logSink, toastSink := newService()

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Add("User-Agent", "first-agent")
	request.Header.Add("User-Agent", "second-agent")
	handler.ServeHTTP(httptest.NewRecorder(), request)

	expected := []string{" \nUser-Agent: first-agent\n"}
	assert.Equal(t, expected, toastSink.Messages())
	assert.Equal(t, expected, logSink.Messages())
}

func answersAnyRoute(t *testing.T) {
	handler, logSink, _ := newService()

	for _, r := range []struct{ method, path string }{
		{http.MethodGet, "/"},
		{http.MethodPost, "/some/where"},
		{http.MethodDelete, "/counter"},
	} {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(r.method, r.path, nil))

		assert.Equal(t, http.StatusOK, recorder.Code, "%s %s", r.method, r.path)
		assert.Equal(t, versions, decode(t, recorder.Body))
	}

	assert.Len(t, logSink.Messages(), 3)
}

func ignoresSinkFailures(t *testing.T) {
	logSink := &recordingSink{}
	toastSink := &recordingSink{err: errors.New("display unavailable")}
	logger := zerolog.Nop()
	handler := NewHandler(logSink, toastSink, Versions(versions), Logger(&logger))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Len(t, logSink.Messages(), 1)
}

func TestHandler(t *testing.T) {
	t.Run("responds with versions", respondsWithVersions)
	t.Run("emits the user agent to both sinks", emitsToBothSinks)
	t.Run("uses a placeholder without a user agent", usesPlaceholderWithoutUserAgent)
	t.Run("uses the first user agent", usesTheFirstUserAgent)
	t.Run("answers any route", answersAnyRoute)
	t.Run("ignores sink failures", ignoresSinkFailures)
}

func TestServe(t *testing.T) {
	handler, _, _ := newService()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", handler)
	}()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
}
