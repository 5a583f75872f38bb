// Bookkeeping of concurrently active touch contacts.
package touch

import "github.com/jmigpin/xevents/event"

// The first contact that starts while no other contact is active becomes
// the "first" touch. Only the first touch drives the synthesized cursor.
type Tracker struct {
	first    uint64
	hasFirst bool
	num      uint32
}

// IsFirstTouch updates the tracker with the touch phase and returns whether
// id is (still) the first touch.
func (t *Tracker) IsFirstTouch(id uint64, phase event.TouchPhase) bool {
	switch phase {
	case event.TouchStarted:
		if t.num == 0 {
			t.first = id
			t.hasFirst = true
		}
		t.num++
	case event.TouchEnded, event.TouchCancelled:
		if t.hasFirst && t.first == id {
			t.hasFirst = false
			t.first = 0
		}
		if t.num > 0 {
			t.num--
		}
	}
	return t.hasFirst && t.first == id
}

func (t *Tracker) First() (uint64, bool) {
	return t.first, t.hasFirst
}

func (t *Tracker) Num() uint32 {
	return t.num
}
