package event

import "fmt"

type KeyEvent struct {
	Keycode uint32 // physical key (hardware keycode)
	Key     Key    // logical key
	Text    string // text produced, empty for non-text keys and releases
	State   ElementState
	Repeat  bool
}

//----------

// Logical key. KeyCharacter means the key produces text (see KeyEvent.Text).
type Key int

const (
	KeyUnidentified Key = iota
	KeyCharacter

	KeyEscape
	KeyEnter
	KeyTab
	KeyBackspace
	KeyDelete
	KeyInsert
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyLeft
	KeyUp
	KeyRight
	KeyDown

	KeyShift
	KeyControl
	KeyAlt
	KeyAltGr
	KeySuper
	KeyMeta
	KeyCapsLock
	KeyNumLock
	KeyScrollLock

	KeyPrintScreen
	KeyPause
	KeyContextMenu

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	KeyVolumeUp
	KeyVolumeDown
	KeyMute
	KeyDead // dead key (diacritic)
)

func (k Key) String() string {
	if int(k) < len(keyNames) && keyNames[k] != "" {
		return keyNames[k]
	}
	return fmt.Sprintf("key(%d)", int(k))
}

var keyNames = [...]string{
	KeyUnidentified: "unidentified",
	KeyCharacter:    "character",
	KeyEscape:       "escape",
	KeyEnter:        "enter",
	KeyTab:          "tab",
	KeyBackspace:    "backspace",
	KeyDelete:       "delete",
	KeyInsert:       "insert",
	KeyHome:         "home",
	KeyEnd:          "end",
	KeyPageUp:       "pageup",
	KeyPageDown:     "pagedown",
	KeyLeft:         "left",
	KeyUp:           "up",
	KeyRight:        "right",
	KeyDown:         "down",
	KeyShift:        "shift",
	KeyControl:      "control",
	KeyAlt:          "alt",
	KeyAltGr:        "altgr",
	KeySuper:        "super",
	KeyMeta:         "meta",
	KeyCapsLock:     "capslock",
	KeyNumLock:      "numlock",
	KeyScrollLock:   "scrolllock",
	KeyPrintScreen:  "printscreen",
	KeyPause:        "pause",
	KeyContextMenu:  "contextmenu",
	KeyF1:           "f1",
	KeyF2:           "f2",
	KeyF3:           "f3",
	KeyF4:           "f4",
	KeyF5:           "f5",
	KeyF6:           "f6",
	KeyF7:           "f7",
	KeyF8:           "f8",
	KeyF9:           "f9",
	KeyF10:          "f10",
	KeyF11:          "f11",
	KeyF12:          "f12",
	KeyVolumeUp:     "volumeup",
	KeyVolumeDown:   "volumedown",
	KeyMute:         "mute",
	KeyDead:         "dead",
}

//----------

type KeyModifiers uint32

func (km KeyModifiers) HasAny(m KeyModifiers) bool {
	return km&m > 0
}
func (km KeyModifiers) Is(m KeyModifiers) bool {
	return km == m
}
func (km KeyModifiers) IsEmpty() bool {
	return km == 0
}
func (km KeyModifiers) ClearLocks() KeyModifiers {
	return km &^ (ModLock | ModNum)
}

const (
	ModNone  KeyModifiers = 0
	ModShift KeyModifiers = 1 << (iota - 1)
	ModLock               // caps
	ModCtrl
	Mod1 // ~ alt
	Mod2 // ~ num lock
	Mod3
	Mod4 // ~ windows key
	Mod5 // ~ alt gr
)

const (
	ModAlt   = Mod1
	ModNum   = Mod2
	ModSuper = Mod4
	ModAltGr = Mod5
)

//----------

type MouseButton int32

const (
	ButtonNone MouseButton = iota
	ButtonLeft
	ButtonMiddle
	ButtonRight
	ButtonBack
	ButtonForward
	ButtonOther // button number in MouseInput.Other
)

func (b MouseButton) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonMiddle:
		return "middle"
	case ButtonRight:
		return "right"
	case ButtonBack:
		return "back"
	case ButtonForward:
		return "forward"
	case ButtonOther:
		return "other"
	}
	return "none"
}
