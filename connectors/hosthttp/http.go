package hosthttp

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/weegigs/wee-host-go/host"
)

type HandlerOption func(service *httpService)

func Logger(log *zerolog.Logger) HandlerOption {
	return func(service *httpService) {
		service.log = log
	}
}

func Versions(versions host.Versions) HandlerOption {
	return func(service *httpService) {
		service.versions = versions
	}
}

// NewHandler answers every request, whatever its method or path, by sending
// the caller's user agent to toastSink and logSink and replying with the
// version metadata as JSON.
func NewHandler(logSink host.Sink, toastSink host.Sink, options ...HandlerOption) http.Handler {
	service := &httpService{logSink: logSink, toastSink: toastSink}
	for _, option := range options {
		option(service)
	}
	if service.log == nil {
		service.log = &log.Logger
	}
	if service.versions == nil {
		service.versions = host.RuntimeVersions()
	}

	r := chi.NewRouter()

	r.Use(withLogging)
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.HandleFunc("/*", service.echo())
	r.NotFound(service.echo())
	r.MethodNotAllowed(service.echo())

	return WithTelemetry(r, "wee-host-http")
}

type httpService struct {
	log       *zerolog.Logger
	logSink   host.Sink
	toastSink host.Sink
	versions  host.Versions
}

func (service *httpService) echo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		values := r.Header.Values("User-Agent")

		var userAgent string
		if len(values) > 0 {
			userAgent = values[0]
		}
		message := host.UserAgentMessage(userAgent, len(values) > 0)

		service.emit(r.Context(), "toast", service.toastSink, message)
		service.emit(r.Context(), "log", service.logSink, message)

		render.Respond(w, r, service.versions)
	}
}

func (service *httpService) emit(ctx context.Context, name string, sink host.Sink, message string) {
	if err := sink.Emit(ctx, message); err != nil {
		service.log.Warn().Err(err).Str("sink", name).Msg("failed to emit message")
	}
}

type ServeOption func(options *serveOptions)

type serveOptions struct {
	grace time.Duration
}

// GracePeriod sets how long in-flight requests may run after ctx is
// cancelled. The default is five seconds.
func GracePeriod(grace time.Duration) ServeOption {
	return func(options *serveOptions) {
		if grace > 0 {
			options.grace = grace
		}
	}
}

// Serve runs handler on addr until ctx is cancelled, then shuts down
// gracefully.
func Serve(ctx context.Context, addr string, handler http.Handler, options ...ServeOption) error {
	settings := serveOptions{grace: 5 * time.Second}
	for _, option := range options {
		option(&settings)
	}

	server := &http.Server{Addr: addr, Handler: handler}

	failed := make(chan error, 1)
	go func() {
		failed <- server.ListenAndServe()
	}()

	select {
	case err := <-failed:
		return err
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), settings.grace)
	defer cancel()

	if err := server.Shutdown(shutdown); err != nil {
		return err
	}

	if err := <-failed; !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
