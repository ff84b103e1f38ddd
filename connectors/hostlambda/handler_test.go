package hostlambda

import (
	"context"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weegigs/wee-host-go/host"
)

type recordingSink struct {
	messages []string
}

func (s *recordingSink) Emit(ctx context.Context, message string) error {
	s.messages = append(s.messages, message)
	return nil
}

func TestGatewayHandler(t *testing.T) {
	versions := host.Versions{"go": "go1.21.0", "host": "v0.1.0"}

	invoke := func(t *testing.T, headers map[string]string) (events.APIGatewayV2HTTPResponse, *recordingSink, *recordingSink) {
		logSink, toastSink := &recordingSink{}, &recordingSink{}
		logger := zerolog.Nop()

		handler, err := NewHandler(Sinks{Log: logSink, Toast: toastSink}, versions, &logger)
		require.NoError(t, err)

		response, err := handler(context.Background(), events.APIGatewayV2HTTPRequest{Headers: headers})
		require.NoError(t, err)

		return response, logSink, toastSink
	}

	t.Run("responds with versions", func(t *testing.T) {
		response, _, _ := invoke(t, map[string]string{"user-agent": "test-agent"})

		assert.Equal(t, 200, response.StatusCode)
		assert.Equal(t, "application/json", response.Headers["Content-Type"])

		var decoded host.Versions
		require.NoError(t, json.Unmarshal([]byte(response.Body), &decoded))
		assert.Equal(t, versions, decoded)
	})

	t.Run("emits the user agent regardless of header case", func(t *testing.T) {
		_, logSink, toastSink := invoke(t, map[string]string{"User-Agent": "test-agent"})

		assert.Equal(t, []string{" \nUser-Agent: test-agent\n"}, logSink.messages)
		assert.Equal(t, []string{" \nUser-Agent: test-agent\n"}, toastSink.messages)
	})

	t.Run("uses a placeholder without a user agent", func(t *testing.T) {
		_, logSink, _ := invoke(t, nil)

		assert.Equal(t, []string{" \nUser-Agent: undefined\n"}, logSink.messages)
	})
}
