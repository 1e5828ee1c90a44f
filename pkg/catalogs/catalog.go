package catalogs

import (
	"slices"
	"strings"
	"sync"
)

// Catalog maps identity keys to firmware records. The first record stored
// under a key wins.
type Catalog struct {
	mu        sync.RWMutex
	firmwares map[string]Firmware
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{firmwares: make(map[string]Firmware)}
}

// Upsert stores f under its key when the key is absent and reports whether
// it did. An existing record is never modified.
func (c *Catalog) Upsert(f Firmware) bool {
	key := f.Key()

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.firmwares[key]; exists {
		return false
	}
	if len(f.SupportedModels) == 0 {
		f.SupportedModels = nil
	} else {
		f.SupportedModels = slices.Clone(f.SupportedModels)
	}
	c.firmwares[key] = f
	return true
}

// BackfillFilename sets the filename of the record at key when it has none
// and reports whether it did.
func (c *Catalog) BackfillFilename(key, filename string) bool {
	if filename == "" {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	f, ok := c.firmwares[key]
	if !ok || f.Filename != "" {
		return false
	}
	f.Filename = filename
	c.firmwares[key] = f
	return true
}

// Remove deletes the record at key and reports whether one existed.
func (c *Catalog) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.firmwares[key]; !ok {
		return false
	}
	delete(c.firmwares, key)
	return true
}

// Get returns the record at key.
func (c *Catalog) Get(key string) (Firmware, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	f, ok := c.firmwares[key]
	return f, ok
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.firmwares)
}

// List returns every record ordered by key.
func (c *Catalog) List() []Firmware {
	c.mu.RLock()
	defer c.mu.RUnlock()

	list := make([]Firmware, 0, len(c.firmwares))
	for _, f := range c.firmwares {
		list = append(list, f)
	}
	SortByKey(list)
	return list
}

// SortByKey orders records by identity key.
func SortByKey(list []Firmware) {
	slices.SortFunc(list, func(a, b Firmware) int {
		return strings.Compare(a.Key(), b.Key())
	})
}

// ByFilename returns the record whose filename is name.
func (c *Catalog) ByFilename(name string) (Firmware, bool) {
	if name == "" {
		return Firmware{}, false
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, f := range c.firmwares {
		if f.Filename == name {
			return f, true
		}
	}
	return Firmware{}, false
}

// ByDevice returns the device's records newest first: by date, then by
// parsed version. Missing dates and unparseable versions sort oldest.
func (c *Catalog) ByDevice(deviceID int) []Firmware {
	c.mu.RLock()
	var list []Firmware
	for _, f := range c.firmwares {
		if f.DeviceID == deviceID {
			list = append(list, f)
		}
	}
	c.mu.RUnlock()

	SortNewestFirst(list)
	return list
}

// SortNewestFirst orders records by date descending, then version
// descending, then key.
func SortNewestFirst(list []Firmware) {
	slices.SortFunc(list, func(a, b Firmware) int {
		if cmp := strings.Compare(b.sortDate(), a.sortDate()); cmp != 0 {
			return cmp
		}
		if cmp := b.ParsedVersion().Compare(a.ParsedVersion()); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.Key(), b.Key())
	})
}

// ReferencedDevices returns the set of device ids used by any record.
func (c *Catalog) ReferencedDevices() map[int]bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	refs := make(map[int]bool, len(c.firmwares))
	for _, f := range c.firmwares {
		refs[f.DeviceID] = true
	}
	return refs
}
