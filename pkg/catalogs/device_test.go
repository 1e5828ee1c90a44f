package catalogs

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOrCreateAllocation(t *testing.T) {
	t.Run("empty table starts at base id", func(t *testing.T) {
		d := NewDevices()
		assert.Equal(t, 100000, d.ResolveOrCreate("DS-2CD2047G2", "UNKNOWN"))
	})

	t.Run("continues after highest id", func(t *testing.T) {
		d := NewDevices()
		d.Put(Device{ID: 100003, Model: "DS-A", HardwareVersion: "IPC_G0"})
		d.Put(Device{ID: 100007, Model: "DS-B", HardwareVersion: "IPC_G0"})
		assert.Equal(t, 100008, d.ResolveOrCreate("DS-C", "IPC_G0"))
	})

	t.Run("ids below base are ignored", func(t *testing.T) {
		d := NewDevices()
		d.Put(Device{ID: 12, Model: "DS-A", HardwareVersion: "IPC_G0"})
		assert.Equal(t, 100000, d.ResolveOrCreate("DS-B", "IPC_G0"))
	})
}

func TestResolveOrCreateUniqueness(t *testing.T) {
	d := NewDevices()
	pairs := [][2]string{
		{"DS-2CD2047G2", "UNKNOWN"},
		{"DS-2CD2047G2", "IPC_G5"},
		{"DS-7608NI-K2", "NVR_G0"},
		{"DS-2CD2047G2", "UNKNOWN"},
		{"DS-7608NI-K2", "NVR_G0"},
		{"DS-2CD2047G2", "IPC_G5"},
	}

	ids := make(map[string]int)
	for _, p := range pairs {
		id := d.ResolveOrCreate(p[0], p[1])
		key := fmt.Sprintf("%s|%s", p[0], p[1])
		if prev, ok := ids[key]; ok {
			assert.Equal(t, prev, id, "resolve must be stable for %s", key)
		}
		ids[key] = id
	}

	assert.Equal(t, 3, d.Len())
	distinct := make(map[int]bool)
	for _, id := range ids {
		distinct[id] = true
	}
	assert.Len(t, distinct, 3)
}

func TestDevicesLookupAndDelete(t *testing.T) {
	d := NewDevices()
	id := d.ResolveOrCreate("DS-2CD2047G2", "UNKNOWN")

	got, ok := d.Lookup("DS-2CD2047G2", "UNKNOWN")
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = d.Lookup("DS-2CD2047G2", "IPC_G0")
	assert.False(t, ok)

	assert.True(t, d.Delete(id))
	assert.False(t, d.Delete(id))
	assert.Equal(t, 0, d.Len())
}

func TestDevicesListOrder(t *testing.T) {
	d := NewDevices()
	d.Put(Device{ID: 100005, Model: "B"})
	d.Put(Device{ID: 100001, Model: "A"})
	list := d.List()
	require.Len(t, list, 2)
	assert.Equal(t, 100001, list[0].ID)
	assert.Equal(t, 100005, list[1].ID)
}

func TestDevicesLookupPrefersLowestID(t *testing.T) {
	d := NewDevices()
	d.Put(Device{ID: 100005, Model: "DS-2CD2047G2", HardwareVersion: "IPC_G5"})
	d.Put(Device{ID: 100003, Model: "DS-7608NI-K2", HardwareVersion: "NVR_G0"})
	d.Put(Device{ID: 100001, Model: "DS-2CD2047G2", HardwareVersion: "IPC_G5"})

	for range 20 {
		id, ok := d.Lookup("DS-2CD2047G2", "IPC_G5")
		require.True(t, ok)
		assert.Equal(t, 100001, id)
		assert.Equal(t, 100001, d.ResolveOrCreate("DS-2CD2047G2", "IPC_G5"))
	}
}
