package sinks

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/weegigs/wee-host-go/host"
)

var _ host.Sink = (*Toast)(nil)

type Notification struct {
	ID      uuid.UUID `json:"id"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type ToastOption func(toast *Toast)

// Retain bounds how many notifications Recent can return.
func Retain(count int) ToastOption {
	return func(toast *Toast) {
		toast.retain = count
	}
}

func WithClock(clock func() time.Time) ToastOption {
	return func(toast *Toast) {
		toast.clock = clock
	}
}

// Toast is the user-facing notification channel. Every message is shown on
// the display writer and kept in a bounded history.
type Toast struct {
	lk      sync.Mutex
	display io.Writer
	retain  int
	clock   func() time.Time
	recent  []Notification
}

func NewToast(display io.Writer, options ...ToastOption) *Toast {
	toast := &Toast{display: display, retain: 32, clock: time.Now}
	for _, option := range options {
		option(toast)
	}

	return toast
}

func (t *Toast) Emit(ctx context.Context, message string) error {
	notification := Notification{ID: uuid.New(), Message: message, At: t.clock()}

	t.lk.Lock()
	defer t.lk.Unlock()

	if t.retain > 0 {
		t.recent = append(t.recent, notification)
		if overflow := len(t.recent) - t.retain; overflow > 0 {
			t.recent = append([]Notification(nil), t.recent[overflow:]...)
		}
	}

	if t.display == nil {
		return nil
	}

	_, err := fmt.Fprintf(t.display, "[toast %s]%s", notification.ID, message)
	return err
}

// Recent returns the retained notifications, oldest first.
func (t *Toast) Recent() []Notification {
	t.lk.Lock()
	defer t.lk.Unlock()

	return append([]Notification(nil), t.recent...)
}

func ConsoleToast() *Toast {
	return NewToast(os.Stdout)
}
