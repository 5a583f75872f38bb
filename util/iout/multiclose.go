// Closing of several resources with all their errors collected.
package iout

import (
	"io"
	"sync"
)

// Closes in reverse order of addition, each closer at most once.
type MultiClose struct {
	sync.Mutex
	closers []*closeEntry
}

type closeEntry struct {
	closer io.Closer
	done   bool
}

func NewMultiClose() *MultiClose {
	return &MultiClose{}
}

func (mc *MultiClose) Add(closer io.Closer) {
	mc.Lock()
	defer mc.Unlock()
	mc.closers = append(mc.closers, &closeEntry{closer: closer})
}

// Adapts a close func.
func (mc *MultiClose) AddFunc(fn func() error) {
	mc.Add(closeFunc(fn))
}

//----------

func (mc *MultiClose) CloseAll() error {
	// avoid data race since calling each close will be done unlocked
	mc.Lock()
	var w []io.Closer
	for i := len(mc.closers) - 1; i >= 0; i-- {
		e := mc.closers[i]
		if !e.done {
			e.done = true
			w = append(w, e.closer)
		}
	}
	mc.Unlock()

	errs := make([]error, 0, len(w))
	for _, closer := range w {
		errs = append(errs, closer.Close())
	}
	return joinCloseErrors(errs)
}

// Implements io.Closer.
func (mc *MultiClose) Close() error {
	return mc.CloseAll()
}

//----------

type closeFunc func() error

func (f closeFunc) Close() error { return f() }
