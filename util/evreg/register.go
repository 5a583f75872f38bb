// Fan-out of produced events to callbacks registered per event kind.
package evreg

import (
	"container/list"

	"github.com/jmigpin/xevents/event"
)

// Callbacks registered with this kind receive every event.
const AnyKind = "*"

// The zero register is empty and ready for use. Not safe for concurrent use.
type Register struct {
	KindOf func(event.Event) string
	m      map[string]*list.List
}

//----------

// Remove is done via *Regist.Unregister().
func (reg *Register) Add(kind string, fn func(event.Event)) *Regist {
	return reg.AddCallback(kind, &Callback{fn})
}

func (reg *Register) AddCallback(kind string, cb *Callback) *Regist {
	if reg.m == nil {
		reg.m = map[string]*list.List{}
	}
	l, ok := reg.m[kind]
	if !ok {
		l = list.New()
		reg.m[kind] = l
	}
	l.PushBack(cb)
	return &Regist{reg, kind, cb}
}

func (reg *Register) RemoveCallback(kind string, cb *Callback) {
	l, ok := reg.m[kind]
	if !ok {
		return
	}
	for e := l.Front(); e != nil; e = e.Next() {
		if e.Value.(*Callback) == cb {
			l.Remove(e)
			break
		}
	}
	if l.Len() == 0 {
		delete(reg.m, kind)
	}
}

//----------

// Returns number of callbacks done.
func (reg *Register) RunCallbacks(kind string, ev event.Event) int {
	l, ok := reg.m[kind]
	if !ok {
		return 0
	}
	c := 0
	for e := l.Front(); e != nil; {
		next := e.Next() // callback can unregister itself
		e.Value.(*Callback).F(ev)
		c++
		e = next
	}
	return c
}

// Sink that runs the callbacks of the event kind, then the AnyKind ones.
func (reg *Register) Sink() event.Sink {
	return func(ev event.Event) {
		if reg.KindOf != nil {
			reg.RunCallbacks(reg.KindOf(ev), ev)
		}
		reg.RunCallbacks(AnyKind, ev)
	}
}

//----------

type Callback struct {
	F func(ev event.Event)
}

//----------

type Regist struct {
	evReg *Register
	kind  string
	cb    *Callback
}

func (reg *Regist) Unregister() {
	reg.evReg.RemoveCallback(reg.kind, reg.cb)
}

//----------

// Utility to unregister big number of regists.
type Unregister struct {
	v []*Regist
}

func (unr *Unregister) Add(u ...*Regist) {
	unr.v = append(unr.v, u...)
}
func (unr *Unregister) UnregisterAll() {
	for _, e := range unr.v {
		e.Unregister()
	}
	unr.v = nil
}
