package fwmap

import (
	"sync"

	"github.com/agentstation/fwmap/pkg/catalogs"
)

// Hook function types for firmware events.
type (
	// FirmwareAddedHook is called for each record a run creates.
	FirmwareAddedHook func(f catalogs.Firmware)

	// FirmwareRemovedHook is called for each record a run prunes.
	FirmwareRemovedHook func(f catalogs.Firmware)
)

type hooks struct {
	mu                sync.RWMutex
	onFirmwareAdded   []FirmwareAddedHook
	onFirmwareRemoved []FirmwareRemovedHook
}

func newHooks() *hooks {
	return &hooks{}
}

func (c *client) OnFirmwareAdded(fn FirmwareAddedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onFirmwareAdded = append(c.hooks.onFirmwareAdded, fn)
}

func (c *client) OnFirmwareRemoved(fn FirmwareRemovedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onFirmwareRemoved = append(c.hooks.onFirmwareRemoved, fn)
}

// snapshot captures the records present before a run.
func snapshot(state *catalogs.State) map[string]catalogs.Firmware {
	list := state.Firmwares.List()
	m := make(map[string]catalogs.Firmware, len(list))
	for _, f := range list {
		m[f.Key()] = f
	}
	return m
}

// trigger compares before with the current catalog and fires hooks in key
// order. Filename backfills are not reported.
func (h *hooks) trigger(before map[string]catalogs.Firmware, state *catalogs.State) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	after := state.Firmwares.List()
	present := make(map[string]bool, len(after))
	for _, f := range after {
		present[f.Key()] = true
		if _, existed := before[f.Key()]; existed {
			continue
		}
		for _, hook := range h.onFirmwareAdded {
			hook(f)
		}
	}

	if len(h.onFirmwareRemoved) == 0 {
		return
	}
	removed := make([]catalogs.Firmware, 0)
	for key, f := range before {
		if !present[key] {
			removed = append(removed, f)
		}
	}
	catalogs.SortByKey(removed)
	for _, f := range removed {
		for _, hook := range h.onFirmwareRemoved {
			hook(f)
		}
	}
}
