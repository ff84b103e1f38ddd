package script

import (
	"io"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/dop251/goja"
	"github.com/pkg/errors"
)

type fetched struct {
	status  int
	url     string
	headers http.Header
	body    []byte
}

// fetch is a promise returning subset of the WHATWG fetch API. The request
// runs off the loop; settling the promise is a loop job.
func (r *Runtime) fetch(call goja.FunctionCall) goja.Value {
	promise, resolve, reject := r.vm.NewPromise()

	request, err := r.fetchRequest(call)
	if err != nil {
		_ = reject(r.vm.NewGoError(err))
		return r.vm.ToValue(promise)
	}

	atomic.AddInt32(&r.fetches, 1)
	go func() {
		result, err := r.roundTrip(request)

		scheduled := r.loop.RunOnLoop(func(vm *goja.Runtime) {
			defer atomic.AddInt32(&r.fetches, -1)

			if err != nil {
				_ = reject(vm.NewGoError(err))
				return
			}
			_ = resolve(r.fetchResponse(result))
		})
		if !scheduled {
			atomic.AddInt32(&r.fetches, -1)
		}
	}()

	return r.vm.ToValue(promise)
}

func (r *Runtime) fetchRequest(call goja.FunctionCall) (*http.Request, error) {
	url := call.Argument(0).String()
	method := http.MethodGet
	headers := http.Header{}
	var body io.Reader

	if init, ok := call.Argument(1).(*goja.Object); ok {
		if value := init.Get("method"); value != nil && !goja.IsUndefined(value) {
			method = strings.ToUpper(value.String())
		}
		if value, ok := init.Get("headers").(*goja.Object); ok {
			for _, name := range value.Keys() {
				headers.Set(name, value.Get(name).String())
			}
		}
		if value := init.Get("body"); value != nil && !goja.IsUndefined(value) && !goja.IsNull(value) {
			body = strings.NewReader(value.String())
		}
	}

	request, err := http.NewRequestWithContext(r.lifetime, method, url, body)
	if err != nil {
		return nil, errors.Wrap(err, "fetch failed")
	}
	request.Header = headers

	return request, nil
}

func (r *Runtime) roundTrip(request *http.Request) (fetched, error) {
	response, err := r.client.Do(request)
	if err != nil {
		return fetched{}, errors.Wrap(err, "fetch failed")
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, r.fetchLimit))
	if err != nil {
		return fetched{}, errors.Wrap(err, "failed to read response body")
	}

	return fetched{
		status:  response.StatusCode,
		url:     response.Request.URL.String(),
		headers: response.Header,
		body:    body,
	}, nil
}

func (r *Runtime) fetchResponse(result fetched) *goja.Object {
	headers := r.vm.NewObject()
	for name, values := range result.headers {
		_ = headers.Set(strings.ToLower(name), strings.Join(values, ", "))
	}

	response := r.vm.NewObject()
	_ = response.Set("status", result.status)
	_ = response.Set("statusText", http.StatusText(result.status))
	_ = response.Set("ok", result.status >= 200 && result.status < 300)
	_ = response.Set("url", result.url)
	_ = response.Set("headers", headers)
	_ = response.Set("text", func(goja.FunctionCall) goja.Value {
		return r.settled(r.vm.ToValue(string(result.body)), nil)
	})
	_ = response.Set("json", func(goja.FunctionCall) goja.Value {
		parse, _ := goja.AssertFunction(r.vm.Get("JSON").ToObject(r.vm).Get("parse"))
		value, err := parse(goja.Undefined(), r.vm.ToValue(string(result.body)))
		return r.settled(value, err)
	})

	return response
}

func (r *Runtime) settled(value goja.Value, err error) goja.Value {
	promise, resolve, reject := r.vm.NewPromise()
	if err != nil {
		var exception *goja.Exception
		if errors.As(err, &exception) {
			_ = reject(exception.Value())
		} else {
			_ = reject(r.vm.NewGoError(err))
		}
	} else {
		_ = resolve(value)
	}

	return r.vm.ToValue(promise)
}
