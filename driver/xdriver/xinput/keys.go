package xinput

import (
	"unicode/utf8"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/event"
)

// Constants from /usr/include/X11/keysymdef.h
func keysymKey(ks xproto.Keysym) event.Key {
	switch ks {
	case 0:
		return event.KeyUnidentified

	case 0xff1b:
		return event.KeyEscape
	case 0xff0d, 0xff8d: // return, keypad enter
		return event.KeyEnter
	case 0xff09, 0xfe20: // tab, iso left tab
		return event.KeyTab
	case 0xff08:
		return event.KeyBackspace
	case 0xffff, 0xff9f:
		return event.KeyDelete
	case 0xff63, 0xff9e:
		return event.KeyInsert
	case 0xff50, 0xff95:
		return event.KeyHome
	case 0xff57, 0xff9c:
		return event.KeyEnd
	case 0xff55, 0xff9a:
		return event.KeyPageUp
	case 0xff56, 0xff9b:
		return event.KeyPageDown
	case 0xff51, 0xff96:
		return event.KeyLeft
	case 0xff52, 0xff97:
		return event.KeyUp
	case 0xff53, 0xff98:
		return event.KeyRight
	case 0xff54, 0xff99:
		return event.KeyDown

	case 0xffe1, 0xffe2:
		return event.KeyShift
	case 0xffe3, 0xffe4:
		return event.KeyControl
	case 0xffe9, 0xffea:
		return event.KeyAlt
	case 0xfe03, 0xff7e: // iso level3 shift, mode switch
		return event.KeyAltGr
	case 0xffeb, 0xffec:
		return event.KeySuper
	case 0xffe7, 0xffe8:
		return event.KeyMeta
	case 0xffe5:
		return event.KeyCapsLock
	case 0xff7f:
		return event.KeyNumLock
	case 0xff14:
		return event.KeyScrollLock

	case 0xff61:
		return event.KeyPrintScreen
	case 0xff13:
		return event.KeyPause
	case 0xff67:
		return event.KeyContextMenu

	case 0x1008ff13:
		return event.KeyVolumeUp
	case 0x1008ff11:
		return event.KeyVolumeDown
	case 0x1008ff12:
		return event.KeyMute
	}

	if ks >= 0xffbe && ks <= 0xffc9 { // F1..F12
		return event.KeyF1 + event.Key(ks-0xffbe)
	}
	if isDead(ks) {
		return event.KeyDead
	}
	if keysymRune(ks) != 0 {
		return event.KeyCharacter
	}
	return event.KeyUnidentified
}

// Text produced by the keysym, empty for non-text keys.
func keysymText(ks xproto.Keysym) string {
	ru := keysymRune(ks)
	if ru == 0 {
		return ""
	}
	return string(ru)
}

func keysymRune(ks xproto.Keysym) rune {
	switch {
	case ks >= 0x20 && ks <= 0x7e, ks >= 0xa0 && ks <= 0xff: // latin-1
		return rune(ks)
	case ks >= 0x01000100 && ks <= 0x0110ffff: // direct unicode
		ru := rune(ks & 0xffffff)
		if utf8.ValidRune(ru) {
			return ru
		}
		return 0
	case ks >= 0xffb0 && ks <= 0xffb9:
		return '0' + rune(ks-0xffb0)
	}
	switch ks {
	case 0xff80:
		return ' '
	case 0xffaa:
		return '*'
	case 0xffab:
		return '+'
	case 0xffad:
		return '-'
	case 0xffae:
		return '.'
	case 0xffaf:
		return '/'
	case 0xffbd:
		return '='
	case 0x20ac:
		return '€'
	}
	return 0
}

func isDead(ks xproto.Keysym) bool {
	return ks >= 0xfe50 && ks <= 0xfe8f
}

func isKeypad(ks xproto.Keysym) bool {
	return (0xff80 <= ks && ks <= 0xffbd) ||
		(0x11000000 <= ks && ks <= 0x1100ffff)
}
