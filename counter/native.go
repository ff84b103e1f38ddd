package counter

import (
	"context"
	"sync/atomic"

	"github.com/weegigs/wee-host-go/host"
)

var _ host.Counter = (*Native)(nil)

// Native keeps its value in process memory.
type Native struct {
	current int64
}

func NewNative(initial int) *Native {
	return &Native{current: int64(initial)}
}

func (c *Native) IncrementAndGet(ctx context.Context) (int, error) {
	return int(atomic.AddInt64(&c.current, 1)), nil
}

func (c *Native) Value() int {
	return int(atomic.LoadInt64(&c.current))
}
