package catalogs

import (
	"maps"
	"slices"
	"sync"

	"github.com/agentstation/fwmap/pkg/constants"
)

// Device is one (model, hardware version) pair.
type Device struct {
	ID              int    `json:"-"`
	Model           string `json:"model"`
	HardwareVersion string `json:"hardware_version"`
}

// Devices is the device table. It owns id allocation.
type Devices struct {
	mu      sync.RWMutex
	devices map[int]Device
}

// NewDevices creates an empty device table.
func NewDevices() *Devices {
	return &Devices{devices: make(map[int]Device)}
}

// ResolveOrCreate returns the id of the device for (model, hardwareVersion),
// allocating max(FirstDeviceID, highest id + 1) when the pair is new.
func (d *Devices) ResolveOrCreate(model, hardwareVersion string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if id, ok := d.lookup(model, hardwareVersion); ok {
		return id
	}

	id := constants.FirstDeviceID
	for existing := range d.devices {
		if existing+1 > id {
			id = existing + 1
		}
	}
	d.devices[id] = Device{ID: id, Model: model, HardwareVersion: hardwareVersion}
	return id
}

// Lookup returns the id of an existing device for the pair.
func (d *Devices) Lookup(model, hardwareVersion string) (int, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.lookup(model, hardwareVersion)
}

// lookup scans in id order so a pair stored twice resolves to its lowest id.
func (d *Devices) lookup(model, hardwareVersion string) (int, bool) {
	ids := slices.Sorted(maps.Keys(d.devices))
	for _, id := range ids {
		dev := d.devices[id]
		if dev.Model == model && dev.HardwareVersion == hardwareVersion {
			return id, true
		}
	}
	return 0, false
}

// Get returns a device by id.
func (d *Devices) Get(id int) (Device, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	dev, ok := d.devices[id]
	return dev, ok
}

// Put inserts a device with a known id, as read from disk. An existing
// entry for id is replaced.
func (d *Devices) Put(dev Device) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.devices[dev.ID] = dev
}

// Delete removes a device. Callers check that nothing references it.
func (d *Devices) Delete(id int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.devices[id]; !ok {
		return false
	}
	delete(d.devices, id)
	return true
}

// Len returns the number of devices.
func (d *Devices) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.devices)
}

// List returns all devices ordered by id.
func (d *Devices) List() []Device {
	d.mu.RLock()
	defer d.mu.RUnlock()
	list := make([]Device, 0, len(d.devices))
	for _, dev := range d.devices {
		list = append(list, dev)
	}
	slices.SortFunc(list, func(a, b Device) int { return a.ID - b.ID })
	return list
}
