// Registry of known input devices and their scroll axes calibration.
package devices

import (
	"sort"

	"github.com/jmigpin/xevents/rawevent"
)

type DeviceId = rawevent.DeviceId

// XInput2 well known device ids.
const (
	AllDevices          DeviceId = 0
	AllMasterDevices    DeviceId = 1
	VirtualCorePointer  DeviceId = 2
	VirtualCoreKeyboard DeviceId = 3
)

//----------

type Use int

const (
	MasterPointer Use = iota + 1
	MasterKeyboard
	SlavePointer
	SlaveKeyboard
	FloatingSlave
)

type ScrollOrientation int

const (
	Vertical ScrollOrientation = iota + 1
	Horizontal
)

// As reported by a device hierarchy query.
type Info struct {
	Id         DeviceId
	Attachment DeviceId
	Name       string
	Use        Use
	Scroll     []ScrollClass
	Valuators  []ValuatorClass
}

type ScrollClass struct {
	Number      uint16 // valuator axis index
	Orientation ScrollOrientation
	Increment   float64
}

type ValuatorClass struct {
	Number uint16
	Value  float64
}

// Returns the full device list for AllDevices, or the device (and, for
// masters, its slaves) for a specific id.
type Querier interface {
	QueryDevices(id DeviceId) ([]Info, error)
}

//----------

type Device struct {
	Id         DeviceId
	Name       string
	Attachment DeviceId
	ScrollAxes []ScrollAxis
}

type ScrollAxis struct {
	Axis int
	Info ScrollAxisInfo
}

type ScrollAxisInfo struct {
	Orientation ScrollOrientation
	Increment   float64
	Position    float64
}

func NewDevice(info *Info) *Device {
	d := &Device{
		Id:         info.Id,
		Name:       info.Name,
		Attachment: info.Attachment,
	}
	for _, sc := range info.Scroll {
		inc := sc.Increment
		if inc == 0 {
			inc = 1
		}
		si := ScrollAxisInfo{Orientation: sc.Orientation, Increment: inc}
		d.ScrollAxes = append(d.ScrollAxes, ScrollAxis{int(sc.Number), si})
	}
	d.ResetScrollPosition(info)
	return d
}

func (d *Device) ResetScrollPosition(info *Info) {
	for _, vc := range info.Valuators {
		if sa := d.ScrollAxis(int(vc.Number)); sa != nil {
			sa.Position = vc.Value
		}
	}
}

func (d *Device) ScrollAxis(axis int) *ScrollAxisInfo {
	for i := range d.ScrollAxes {
		if d.ScrollAxes[i].Axis == axis {
			return &d.ScrollAxes[i].Info
		}
	}
	return nil
}

//----------

// Only used from the event processing goroutine.
type Registry struct {
	q Querier
	m map[DeviceId]*Device
}

func NewRegistry(q Querier) *Registry {
	return &Registry{q: q, m: map[DeviceId]*Device{}}
}

// Queries the hierarchy for id and (re)inserts the results. A failed query
// inserts nothing.
func (r *Registry) Init(id DeviceId) {
	infos, err := r.q.QueryDevices(id)
	if err != nil {
		return
	}
	for i := range infos {
		info := &infos[i]
		r.m[info.Id] = NewDevice(info)
	}
}

func (r *Registry) Get(id DeviceId) (*Device, bool) {
	d, ok := r.m[id]
	return d, ok
}

func (r *Registry) Remove(id DeviceId) {
	delete(r.m, id)
}

func (r *Registry) Len() int {
	return len(r.m)
}

func (r *Registry) Ids() []DeviceId {
	u := make([]DeviceId, 0, len(r.m))
	for id := range r.m {
		u = append(u, id)
	}
	sort.Slice(u, func(a, b int) bool { return u[a] < u[b] })
	return u
}

// Attachment returns the paired master device of id.
func (r *Registry) Attachment(id DeviceId) (DeviceId, bool) {
	d, ok := r.m[id]
	if !ok {
		return 0, false
	}
	return d.Attachment, true
}

// Refreshes the scroll positions of the source device, and of the devices
// attached to it (some window managers report the master device as the
// source of enter events).
func (r *Registry) ResetScrollPositions(source DeviceId) {
	infos, err := r.q.QueryDevices(AllDevices)
	if err != nil {
		return
	}
	for i := range infos {
		info := &infos[i]
		if info.Id != source && info.Attachment != source {
			continue
		}
		if d, ok := r.m[info.Id]; ok {
			d.ResetScrollPosition(info)
		}
	}
}
