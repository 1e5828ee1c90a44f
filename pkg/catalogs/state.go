package catalogs

import "encoding/json"

// State is everything persisted between runs.
type State struct {
	Devices   *Devices
	Firmwares *Catalog

	// Info is carried through load and save untouched.
	Info map[string]json.RawMessage
}

// NewState creates an empty state.
func NewState() *State {
	return &State{
		Devices:   NewDevices(),
		Firmwares: NewCatalog(),
		Info:      make(map[string]json.RawMessage),
	}
}
