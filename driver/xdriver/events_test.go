package xdriver

import (
	"testing"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/jmigpin/xevents/devices"
	"github.com/jmigpin/xevents/rawevent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTranslator() *translator {
	return newTranslator(func(win xproto.Window) (int16, int16, bool) {
		if win == 100 {
			return 50, 60, true
		}
		return 0, 0, false
	})
}

func TestTranslateKeyEmitsStateOnChange(t *testing.T) {
	tr := newTestTranslator()
	press := xproto.KeyPressEvent{Detail: 38, Event: 100, State: xproto.KeyButMaskShift, Time: 5}
	u := tr.translate(press)
	require.Len(t, u, 3)
	require.Equal(t, &rawevent.XkbState{DeviceId: 3, BaseMods: xproto.KeyButMaskShift, Time: 5}, u[0])
	require.Equal(t, &rawevent.Key{Press: true, Window: 100, Keycode: 38, Time: 5}, u[1])
	require.Equal(t, &rawevent.XIRawKey{Press: true, DeviceId: 3, SourceId: 3, Detail: 38, Time: 5}, u[2])

	// same state: no XkbState
	release := xproto.KeyReleaseEvent{Detail: 38, Event: 100, State: xproto.KeyButMaskShift, Time: 6}
	u = tr.translate(release)
	require.Len(t, u, 2)
	assert.False(t, u[0].(*rawevent.Key).Press)

	// group bits
	press.State = 1 << 13
	u = tr.translate(press)
	require.Equal(t, int16(1), u[0].(*rawevent.XkbState).BaseGroup)
	require.Zero(t, u[0].(*rawevent.XkbState).BaseMods)
}

func TestTranslateButton(t *testing.T) {
	tr := newTestTranslator()
	u := tr.translate(xproto.ButtonPressEvent{Detail: 4, Event: 100, EventX: 3, EventY: 4})
	require.Len(t, u, 3)
	b := u[1].(*rawevent.XIButton)
	assert.Equal(t, uint32(4), b.Detail)
	assert.Equal(t, rawevent.DeviceId(devices.VirtualCorePointer), b.DeviceId)
	assert.Equal(t, 3.0, b.EventX)
	assert.False(t, b.Emulated())
	assert.IsType(t, &rawevent.XIRawButton{}, u[2])
}

func TestTranslateMotionRawDeltas(t *testing.T) {
	tr := newTestTranslator()
	u := tr.translate(xproto.MotionNotifyEvent{Event: 100, EventX: 1, EventY: 1, RootX: 10, RootY: 10})
	require.Len(t, u, 2) // state + motion, no previous root position
	u = tr.translate(xproto.MotionNotifyEvent{Event: 100, EventX: 4, EventY: 0, RootX: 13, RootY: 9})
	require.Len(t, u, 2)
	raw := u[1].(*rawevent.XIRawMotion)
	var got []float64
	raw.Each(func(axis int, v float64) { got = append(got, v) })
	assert.Equal(t, []float64{3, -1}, got)
}

func TestTranslateConfigureSynthetic(t *testing.T) {
	tr := newTestTranslator()
	u := tr.translate(xproto.ConfigureNotifyEvent{Window: 100, X: 50, Y: 60, Width: 640, Height: 480})
	cn := u[0].(*rawevent.ConfigureNotify)
	assert.True(t, cn.Synthetic)
	assert.Equal(t, uint16(640), cn.Width)

	u = tr.translate(xproto.ConfigureNotifyEvent{Window: 100, X: 2, Y: 20, Width: 640, Height: 480})
	assert.False(t, u[0].(*rawevent.ConfigureNotify).Synthetic)

	// unknown window origin
	u = tr.translate(xproto.ConfigureNotifyEvent{Window: 7, X: 50, Y: 60})
	assert.False(t, u[0].(*rawevent.ConfigureNotify).Synthetic)
}

func TestTranslateFocus(t *testing.T) {
	tr := newTestTranslator()
	u := tr.translate(xproto.FocusInEvent{Event: 100, Detail: xproto.NotifyDetailNonlinear})
	require.Equal(t, []rawevent.Event{&rawevent.XIFocusIn{DeviceId: 3, Window: 100}}, u)
	u = tr.translate(xproto.FocusOutEvent{Event: 100, Detail: xproto.NotifyDetailInferior})
	require.Nil(t, u)

	tr.pointer = func(win xproto.Window) (int16, int16, bool) {
		return 7, 9, win == 100
	}
	u = tr.translate(xproto.FocusInEvent{Event: 100, Detail: xproto.NotifyDetailNonlinear})
	require.Equal(t, []rawevent.Event{&rawevent.XIFocusIn{DeviceId: 3, Window: 100, EventX: 7, EventY: 9}}, u)
	u = tr.translate(xproto.FocusInEvent{Event: 200, Detail: xproto.NotifyDetailNonlinear})
	require.Equal(t, []rawevent.Event{&rawevent.XIFocusIn{DeviceId: 3, Window: 200}}, u)
}

func TestTranslateClientMessage(t *testing.T) {
	tr := newTestTranslator()
	cme := xproto.ClientMessageEvent{
		Format: 32,
		Window: 100,
		Type:   9,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{1, 2, 3, 4, 5}),
	}
	u := tr.translate(cme)
	require.Equal(t, &rawevent.ClientMessage{Window: 100, Type: 9, Format: 32, Data: [5]uint32{1, 2, 3, 4, 5}}, u[0])
}

func TestTranslateMisc(t *testing.T) {
	tr := newTestTranslator()
	u := tr.translate(xproto.MappingNotifyEvent{Request: xproto.MappingKeyboard})
	require.Equal(t, &rawevent.XkbNewKeyboard{DeviceId: 3, KeycodesChanged: true}, u[0])
	require.Nil(t, tr.translate(xproto.MappingNotifyEvent{Request: xproto.MappingPointer}))

	u = tr.translate(randr.ScreenChangeNotifyEvent{Timestamp: 9})
	require.Equal(t, &rawevent.RandrNotify{Time: 9}, u[0])

	require.Nil(t, tr.translate(xproto.GraphicsExposureEvent{}))
}

func TestCoreDevices(t *testing.T) {
	var q CoreDevices
	infos, err := q.QueryDevices(devices.AllDevices)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, devices.VirtualCoreKeyboard, infos[0].Attachment)

	infos, _ = q.QueryDevices(devices.VirtualCoreKeyboard)
	require.Equal(t, devices.MasterKeyboard, infos[0].Use)

	infos, _ = q.QueryDevices(42)
	require.Empty(t, infos)
}
