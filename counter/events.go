package counter

import "github.com/weegigs/wee-host-go/es"

const (
	CreatedEvent     = es.EventType("counter:created")
	IncrementedEvent = es.EventType("counter:incremented")
)

type Created struct {
	Initial int `json:"initial"`
}

func (Created) EventType() es.EventType {
	return CreatedEvent
}

type Incremented struct {
	Amount int `json:"amount"`
}

func (Incremented) EventType() es.EventType {
	return IncrementedEvent
}
