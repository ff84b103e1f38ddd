package hostlambda

import (
	"context"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/goccy/go-json"
	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/weegigs/wee-host-go/host"
)

type GatewayHandler = func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

type Sinks struct {
	Log   host.Sink
	Toast host.Sink
}

// NewHandler mirrors the HTTP echo for API Gateway v2 requests.
func NewHandler(sinks Sinks, versions host.Versions, log *zerolog.Logger) (GatewayHandler, error) {
	body, err := json.Marshal(versions)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		userAgent, present := header(event.Headers, "User-Agent")
		message := host.UserAgentMessage(userAgent, present)

		if err := sinks.Toast.Emit(ctx, message); err != nil {
			log.Warn().Err(err).Str("sink", "toast").Msg("failed to emit message")
		}
		if err := sinks.Log.Emit(ctx, message); err != nil {
			log.Warn().Err(err).Str("sink", "log").Msg("failed to emit message")
		}

		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusOK,
			Headers:    map[string]string{"Content-Type": "application/json"},
			Body:       string(body),
		}, nil
	}, nil
}

// API Gateway lower-cases header names for HTTP APIs but not for every
// integration, so lookups ignore case.
func header(headers map[string]string, name string) (string, bool) {
	if value, ok := headers[strings.ToLower(name)]; ok {
		return value, true
	}

	for key, value := range headers {
		if strings.EqualFold(key, name) {
			return value, true
		}
	}

	return "", false
}

var Live = wire.NewSet(NewHandler, host.RuntimeVersions)
