package xinput

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Portuguese-like layout subset, 6 keysyms per keycode.
func testTable() *table {
	t := &table{
		minKeycode: 8,
		maxKeycode: 0x7f,
		perKeycode: 6,
		numLock:    event.Mod2,
		altGr:      event.Mod5,
	}
	t.keysyms = make([]xproto.Keysym, int(t.maxKeycode-t.minKeycode+1)*t.perKeycode)
	set := func(kc xproto.Keycode, kss ...xproto.Keysym) {
		i := int(kc-t.minKeycode) * t.perKeycode
		copy(t.keysyms[i:], kss)
	}
	set(0x0b, 0x32, 0x22, 0x32, 0x22, 0x40, 0) // 2 " @
	set(0x26, 0x61, 0x41, 0x61, 0x41)          // a A
	set(0x23, 0xfe51, 0xfe50)                  // dead acute, dead grave
	set(0x41, 0x20)                            // space
	set(0x4d, 0xff7f)                          // num lock
	set(0x5b, 0xff9f, 0xffae)                  // keypad delete/decimal
	set(0x40, 0xffe9)                          // alt
	set(0x43, 0xffbe)                          // F1
	set(0x16, 0xff08)                          // backspace
	set(0x1a, 0x65, 0x45, 0x65, 0x45, 0x20ac)  // e E €
	set(0x22, 0x10001b6, 0x10001b5)            // unicode keysyms
	return t
}

func TestKMapLookup(t *testing.T) {
	tb := testTable()
	type pair struct {
		kc    xproto.Keycode
		mods  event.KeyModifiers
		group int

		key  event.Key
		text string
	}
	pairs := []pair{
		{0x0b, 0, 0, event.KeyCharacter, "2"},
		{0x0b, event.ModShift, 0, event.KeyCharacter, "\""},
		{0x0b, event.Mod5, 0, event.KeyCharacter, "@"},
		{0x26, 0, 0, event.KeyCharacter, "a"},
		{0x26, event.ModShift, 0, event.KeyCharacter, "A"},
		{0x26, event.ModLock, 0, event.KeyCharacter, "A"},
		{0x26, event.ModLock | event.ModShift, 0, event.KeyCharacter, "a"},
		{0x23, 0, 0, event.KeyDead, ""},
		{0x41, 0, 0, event.KeyCharacter, " "},
		{0x4d, 0, 0, event.KeyNumLock, ""},
		{0x5b, 0, 0, event.KeyDelete, ""},
		{0x5b, event.Mod2, 0, event.KeyCharacter, "."},
		{0x5b, event.Mod2 | event.ModShift, 0, event.KeyDelete, ""},
		{0x40, 0, 0, event.KeyAlt, ""},
		{0x43, 0, 0, event.KeyF1, ""},
		{0x16, event.ModCtrl, 0, event.KeyBackspace, ""},
		{0x1a, event.Mod5, 0, event.KeyCharacter, "€"},
		{0x1a, 0, 1, event.KeyCharacter, "e"},
		{0x22, 0, 0, event.KeyCharacter, "ƶ"},
		{0x22, event.ModShift, 0, event.KeyCharacter, "Ƶ"},
		{0x05, 0, 0, event.KeyUnidentified, ""}, // below min keycode
	}
	for i, p := range pairs {
		key, text := tb.lookup(p.kc, p.mods, p.group)
		assert.Equal(t, p.key, key, "entry %d (kc=0x%x)", i, p.kc)
		assert.Equal(t, p.text, text, "entry %d (kc=0x%x)", i, p.kc)
	}
}

func TestDetectModGroups(t *testing.T) {
	tb := testTable()
	tb.numLock, tb.altGr = 0, 0
	set := func(kc xproto.Keycode, ks xproto.Keysym) {
		tb.keysyms[int(kc-tb.minKeycode)*tb.perKeycode] = ks
	}
	set(0x5c, 0xfe03) // iso level3 shift

	stride := 2
	keycodes := make([]xproto.Keycode, 8*stride)
	keycodes[4*stride] = 0x5c // level3 in mod2
	keycodes[6*stride] = 0x4d // num lock in mod4
	tb.detectModGroups(keycodes, stride)

	require.Equal(t, event.Mod2, tb.altGr)
	require.Equal(t, event.Mod4, tb.numLock)
}

func TestKeyRepeats(t *testing.T) {
	tb := testTable()
	tb.autoRepeats[0x26/8] = 1 << (0x26 % 8)
	require.False(t, tb.keyRepeats(0x26)) // global auto repeat off

	tb.globalAutoRepeat = true
	require.True(t, tb.keyRepeats(0x26))
	require.False(t, tb.keyRepeats(0x40))
}

func TestKeymapKeycodes(t *testing.T) {
	keys := make([]byte, 32)
	keys[1] = 0b0100_0001 // 8, 14
	keys[31] = 0x80       // 255
	require.Equal(t, []xproto.Keycode{8, 14, 255}, keymapKeycodes(keys))
	require.Nil(t, keymapKeycodes(make([]byte, 32)))
}

func TestKMapKeysym(t *testing.T) {
	km := &KMap{t: testTable()}
	assert.Equal(t, xproto.Keysym(0x61), km.Keysym(0x26, 0, 0))
	assert.Equal(t, xproto.Keysym(0x41), km.Keysym(0x26, event.ModShift, 0))
	assert.Equal(t, xproto.Keysym(0x20ac), km.Keysym(0x1a, event.Mod5, 0))
	assert.Equal(t, xproto.Keysym(0), km.Keysym(0x7, 0, 0))
}
