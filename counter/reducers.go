package counter

import "github.com/weegigs/wee-host-go/es"

func created() es.Reducer[Counter] {
	var reducer es.ReducerFunction[Counter, Created] = func(counter *Counter, evt *Created) error {
		counter.Current = evt.Initial
		return nil
	}

	return reducer
}

func incremented() es.Reducer[Counter] {
	var reducer es.ReducerFunction[Counter, Incremented] = func(counter *Counter, evt *Incremented) error {
		counter.Current = counter.Current + evt.Amount
		return nil
	}

	return reducer
}

func Renderer() *es.Renderer[Counter] {
	return &es.Renderer[Counter]{
		Reducers: es.Reducers[Counter]{
			CreatedEvent:     created(),
			IncrementedEvent: incremented(),
		},
	}
}
