package chanutil

import (
	"time"

	"github.com/pkg/errors"
)

var ErrFull = errors.New("failed to send: full")

// Non-blocking bounded channel. Producers on any goroutine use Send, the
// consumer drains with TryReceive without ever waiting.
type NBChan[T any] struct {
	ch        chan T
	LogString string
}

func NewNBChan[T any](n int, logS string) *NBChan[T] {
	if n < 1 {
		n = 1
	}
	return &NBChan[T]{
		ch:        make(chan T, n),
		LogString: logS,
	}
}

//----------

// Send now if there is room, or fails (non-blocking) with error.
func (ch *NBChan[T]) Send(v T) error {
	select {
	case ch.ch <- v:
		return nil
	default:
		return errors.Wrap(ErrFull, ch.LogString)
	}
}

// Receives a pending value if there is one.
func (ch *NBChan[T]) TryReceive() (T, bool) {
	select {
	case v := <-ch.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Receives or fails after timeout.
func (ch *NBChan[T]) Receive(timeout time.Duration) (T, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-timer.C:
		var zero T
		return zero, errors.Errorf("%v: receive timeout", ch.LogString)
	case v := <-ch.ch:
		return v, nil
	}
}

func (ch *NBChan[T]) Len() int {
	return len(ch.ch)
}
