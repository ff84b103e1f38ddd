package script

import (
	"net/http"
	"strings"

	"github.com/dop251/goja"
)

type server struct {
	runtime *Runtime
	handler goja.Callable
	port    int
}

// Listener reports the port passed to server.listen and a handler that
// dispatches requests to that server's request listener. ok is false until a
// script has called listen. When several servers listen, the last one wins.
func (r *Runtime) Listener() (port int, handler http.Handler, ok bool) {
	r.lk.Lock()
	defer r.lk.Unlock()

	if r.listening == nil {
		return 0, nil, false
	}

	return r.listening.port, r.listening, true
}

func (r *Runtime) listen(s *server, port int) {
	r.lk.Lock()
	defer r.lk.Unlock()

	s.port = port
	r.listening = s
}

func (r *Runtime) httpModule(vm *goja.Runtime, module *goja.Object) {
	exports := module.Get("exports").(*goja.Object)

	_ = exports.Set("createServer", func(call goja.FunctionCall) goja.Value {
		handler, ok := goja.AssertFunction(call.Argument(0))
		if !ok {
			panic(vm.NewTypeError("createServer expects a request listener"))
		}

		s := &server{runtime: r, handler: handler}

		object := vm.NewObject()
		_ = object.Set("listen", func(call goja.FunctionCall) goja.Value {
			r.listen(s, int(call.Argument(0).ToInteger()))

			if len(call.Arguments) > 1 {
				if callback, ok := goja.AssertFunction(call.Arguments[len(call.Arguments)-1]); ok {
					if _, err := callback(object); err != nil {
						panic(err)
					}
				}
			}

			return object
		})

		return object
	})
}

type response struct {
	status  int
	headers http.Header
	body    strings.Builder
	ended   bool
	done    chan struct{}
	err     error
}

func (out *response) finish(err error) {
	if out.ended {
		return
	}
	out.ended = true
	out.err = err
	close(out.done)
}

// ServeHTTP runs the request listener on the loop and waits for the script to
// end the response.
func (s *server) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r := s.runtime
	out := &response{status: http.StatusOK, headers: http.Header{}, done: make(chan struct{})}

	scheduled := r.loop.RunOnLoop(func(vm *goja.Runtime) {
		r.within(req.Context(), func() {
			if _, err := s.handler(goja.Undefined(), r.requestObject(req), r.responseObject(out)); err != nil {
				out.finish(err)
			}
		})
	})
	if !scheduled {
		http.Error(w, ErrClosed.Error(), http.StatusServiceUnavailable)
		return
	}

	select {
	case <-out.done:
	case <-req.Context().Done():
		return
	}

	if out.err != nil {
		r.log.Error().Err(out.err).Str("path", req.URL.Path).Msg("request listener failed")
		http.Error(w, "request listener failed", http.StatusInternalServerError)
		return
	}

	for name, values := range out.headers {
		w.Header()[name] = values
	}
	w.WriteHeader(out.status)
	_, _ = w.Write([]byte(out.body.String()))
}

func (r *Runtime) requestObject(req *http.Request) *goja.Object {
	headers := r.vm.NewObject()
	_ = headers.Set("host", req.Host)
	for name, values := range req.Header {
		if len(values) > 0 {
			_ = headers.Set(strings.ToLower(name), values[0])
		}
	}

	request := r.vm.NewObject()
	_ = request.Set("method", req.Method)
	_ = request.Set("url", req.URL.RequestURI())
	_ = request.Set("headers", headers)

	return request
}

func (r *Runtime) responseObject(out *response) *goja.Object {
	object := r.vm.NewObject()

	_ = object.Set("statusCode", out.status)
	_ = object.Set("setHeader", func(call goja.FunctionCall) goja.Value {
		out.headers.Set(call.Argument(0).String(), call.Argument(1).String())
		return goja.Undefined()
	})
	_ = object.Set("writeHead", func(call goja.FunctionCall) goja.Value {
		_ = object.Set("statusCode", call.Argument(0).ToInteger())
		if headers, ok := call.Argument(1).(*goja.Object); ok {
			for _, name := range headers.Keys() {
				out.headers.Set(name, headers.Get(name).String())
			}
		}
		return object
	})
	_ = object.Set("end", func(call goja.FunctionCall) goja.Value {
		if out.ended {
			return goja.Undefined()
		}
		if status := object.Get("statusCode"); status != nil {
			out.status = int(status.ToInteger())
		}
		if body := call.Argument(0); !goja.IsUndefined(body) && !goja.IsNull(body) {
			out.body.WriteString(body.String())
		}
		out.finish(nil)
		return goja.Undefined()
	})

	return object
}
