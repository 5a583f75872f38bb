// Keyboard state: modifiers, group, keymap freshness and key repeat
// detection.
package keyboard

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/event"
	"github.com/pkg/errors"
)

// Keycodes lie in the inclusive range [8,255].
const KeycodeOffset = 8

func ValidKeycode(kc uint32) bool {
	return kc >= KeycodeOffset && kc <= 255
}

//----------

type Keymap interface {
	// Logical key and text for a keycode under the given modifiers and group.
	Lookup(kc xproto.Keycode, mods event.KeyModifiers, group int) (event.Key, string)
	KeyRepeats(kc xproto.Keycode) bool
	Reload() error
}

//----------

type State struct {
	km             Keymap
	CoreKeyboardId int32

	mods  event.KeyModifiers
	group int

	held    xproto.Keycode
	hasHeld bool

	stale bool
}

func NewState(km Keymap, coreKeyboardId int32) *State {
	return &State{km: km, CoreKeyboardId: coreKeyboardId}
}

//----------

// Maps a keycode to a key event with the current modifiers and group. The
// keymap is reloaded first if a keymap change was notified; a failed reload
// is fatal.
func (s *State) ProcessKeyEvent(kc uint32, state event.ElementState, repeat bool) event.KeyEvent {
	if s.stale {
		if err := s.km.Reload(); err != nil {
			panic(errors.Wrap(err, "failed to reload keymap"))
		}
		s.stale = false
	}
	ke := event.KeyEvent{
		Keycode: kc,
		State:   state,
		Repeat:  repeat && state == event.Pressed,
	}
	if !ValidKeycode(kc) {
		return ke
	}
	key, text := s.km.Lookup(xproto.Keycode(kc), s.mods, s.group)
	ke.Key = key
	if state == event.Pressed {
		ke.Text = text
	}
	return ke
}

// Key without modifiers, for raw device events.
func (s *State) BaseKey(kc uint32) event.Key {
	if !ValidKeycode(kc) {
		return event.KeyUnidentified
	}
	key, _ := s.km.Lookup(xproto.Keycode(kc), 0, 0)
	return key
}

//----------

// Updates the repeat tracking and returns whether this event is a repeat.
// Only repeatable keys touch the held key slot, so a non-repeatable key
// (ex: a modifier) pressed while a repeatable key is held doesn't break the
// detection. Releasing a key other than the held one keeps the slot.
func (s *State) DetectRepeat(kc uint32, press bool) bool {
	if !ValidKeycode(kc) || !s.km.KeyRepeats(xproto.Keycode(kc)) {
		return false
	}
	k := xproto.Keycode(kc)
	isLatestHeld := s.hasHeld && s.held == k
	if press {
		s.held = k
		s.hasHeld = true
		return isLatestHeld
	}
	if isLatestHeld {
		s.hasHeld = false
		s.held = 0
	}
	return false
}

func (s *State) HeldKey() (xproto.Keycode, bool) {
	return s.held, s.hasHeld
}

func (s *State) ClearHeldKey() {
	s.held = 0
	s.hasHeld = false
}

//----------

// Applies a state notification. Modifier masks use the core protocol bit
// layout (shift, lock, control, mod1..mod5).
func (s *State) UpdateModifiers(base, latched, locked uint16, baseGroup, latchedGroup, lockedGroup int16) {
	eff := (base | latched | locked) & 0xff
	s.mods = event.KeyModifiers(eff)

	g := int(baseGroup) + int(latchedGroup) + int(lockedGroup)
	if g < 0 {
		g = 0
	}
	s.group = g
}

func (s *State) Mods() event.KeyModifiers {
	return s.mods
}

func (s *State) Group() int {
	return s.group
}

//----------

// The keymap is refreshed on the next key event.
func (s *State) KeymapChanged() {
	s.stale = true
}

func (s *State) KeymapStale() bool {
	return s.stale
}
