package catalogs

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/spf13/afero"

	"github.com/agentstation/fwmap/pkg/constants"
	"github.com/agentstation/fwmap/pkg/errors"
	"github.com/agentstation/fwmap/pkg/logging"
)

// Store reads and writes the catalog documents in one directory.
//
// A missing or malformed document loads as empty. Every document is written
// whole, through a temporary file and a rename, so a crash leaves either
// the old or the new version on disk.
type Store struct {
	fs  afero.Fs
	dir string
}

// NewStore creates a store over dir on fs. A nil fs means the OS filesystem.
func NewStore(fs afero.Fs, dir string) *Store {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Store{fs: fs, dir: dir}
}

// Dir returns the data directory.
func (s *Store) Dir() string {
	return s.dir
}

// Fs returns the underlying filesystem.
func (s *Store) Fs() afero.Fs {
	return s.fs
}

// Load reads all documents. Manual records are admitted before live ones,
// so on a key collision the manual record wins.
func (s *Store) Load(ctx context.Context) *State {
	logger := logging.FromContext(ctx)
	state := NewState()

	var devices map[string]Device
	s.readDocument(ctx, constants.DevicesFile, &devices)
	for rawID, dev := range devices {
		id, err := strconv.Atoi(rawID)
		if err != nil {
			logger.Warn().Str("id", rawID).Msg("Skipping device with non-numeric id")
			continue
		}
		dev.ID = id
		state.Devices.Put(dev)
	}

	var manual, live map[string]Firmware
	s.readDocument(ctx, constants.ManualFirmwaresFile, &manual)
	s.readDocument(ctx, constants.LiveFirmwaresFile, &live)

	for _, key := range sortedKeys(manual) {
		f := manual[key]
		f.Source = SourceManual
		manual[key] = f
	}
	for _, key := range sortedKeys(live) {
		f := live[key]
		if !f.Source.IsValid() || f.Source == SourceManual {
			f.Source = SourceLive
		}
		live[key] = f
	}

	s.restoreDevices(ctx, state, manual)
	s.restoreDevices(ctx, state, live)

	for _, key := range sortedKeys(manual) {
		s.admit(ctx, state, key, manual[key])
	}
	for _, key := range sortedKeys(live) {
		s.admit(ctx, state, key, live[key])
	}

	var info map[string]json.RawMessage
	s.readDocument(ctx, constants.FirmwareInfoFile, &info)
	if info != nil {
		state.Info = info
	}

	logger.Debug().
		Int("devices", state.Devices.Len()).
		Int("firmwares", state.Firmwares.Len()).
		Str("dir", s.dir).
		Msg("Loaded catalog")

	return state
}

// restoreDevices recreates devices that records reference but the device
// table lacks, as happens when devices.json is lost. Ids stay reserved so
// new devices never reuse them.
func (s *Store) restoreDevices(ctx context.Context, state *State, firmwares map[string]Firmware) {
	for _, key := range sortedKeys(firmwares) {
		f := firmwares[key]
		if f.DeviceID <= 0 {
			continue
		}
		if _, ok := state.Devices.Get(f.DeviceID); ok {
			continue
		}
		state.Devices.Put(Device{ID: f.DeviceID, Model: f.Model, HardwareVersion: f.HardwareVersion})
		logging.FromContext(ctx).Warn().
			Int("device_id", f.DeviceID).
			Str("model", f.Model).
			Msg("Restored device missing from device table")
	}
}

func (s *Store) admit(ctx context.Context, state *State, key string, f Firmware) {
	if f.DeviceID <= 0 {
		f.DeviceID = state.Devices.ResolveOrCreate(f.Model, f.HardwareVersion)
	}
	if f.Key() != key {
		logging.FromContext(ctx).Warn().
			Str("key", key).
			Str("computed", f.Key()).
			Msg("Stored key does not match record fields, using computed key")
	}
	if !state.Firmwares.Upsert(f) {
		logging.FromContext(ctx).Debug().Str("key", f.Key()).Msg("Duplicate record ignored on load")
	}
}

// Save writes devices, live and manual firmware maps and the info map.
func (s *Store) Save(ctx context.Context, state *State) error {
	devices := make(map[string]Device, state.Devices.Len())
	for _, dev := range state.Devices.List() {
		devices[strconv.Itoa(dev.ID)] = dev
	}

	live := make(map[string]Firmware)
	manual := make(map[string]Firmware)
	for _, f := range state.Firmwares.List() {
		if f.Source == SourceManual {
			manual[f.Key()] = f
		} else {
			live[f.Key()] = f
		}
	}

	info := state.Info
	if info == nil {
		info = map[string]json.RawMessage{}
	}

	docs := []struct {
		name string
		data any
	}{
		{constants.DevicesFile, devices},
		{constants.LiveFirmwaresFile, live},
		{constants.ManualFirmwaresFile, manual},
		{constants.FirmwareInfoFile, info},
	}
	for _, doc := range docs {
		if err := s.writeDocument(doc.name, doc.data); err != nil {
			return err
		}
	}

	logging.FromContext(ctx).Debug().
		Int("devices", len(devices)).
		Int("live", len(live)).
		Int("manual", len(manual)).
		Msg("Saved catalog")
	return nil
}

// LoadStatus reads status.json, returning a zero Status when absent.
func (s *Store) LoadStatus(ctx context.Context) Status {
	var status Status
	s.readDocument(ctx, constants.StatusFile, &status)
	return status
}

// SaveStatus writes status.json, keeping only the most recent errors.
func (s *Store) SaveStatus(status Status) error {
	if len(status.Errors) > constants.MaxStatusErrors {
		status.Errors = status.Errors[len(status.Errors)-constants.MaxStatusErrors:]
	}
	if status.Errors == nil {
		status.Errors = []string{}
	}
	return s.writeDocument(constants.StatusFile, status)
}

// WriteFile atomically writes an arbitrary file in the data directory.
func (s *Store) WriteFile(name string, data []byte) error {
	return s.writeAtomic(name, data)
}

// readDocument decodes name into v. Missing and malformed documents leave
// v untouched and are logged.
func (s *Store) readDocument(ctx context.Context, name string, v any) {
	path := filepath.Join(s.dir, name)
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.FromContext(ctx).Warn().
				Err(errors.WrapIO("read", path, err)).
				Msg("Treating unreadable document as empty")
		}
		return
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return
	}
	if err := json.Unmarshal(data, v); err != nil {
		logging.FromContext(ctx).Warn().
			Err(errors.WrapParse("json", path, err)).
			Msg("Treating malformed document as empty")
	}
}

func (s *Store) writeDocument(name string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return errors.WrapParse("json", name, err)
	}
	return s.writeAtomic(name, buf.Bytes())
}

func (s *Store) writeAtomic(name string, data []byte) error {
	if err := s.fs.MkdirAll(s.dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", s.dir, err)
	}

	path := filepath.Join(s.dir, name)
	tmp, err := afero.TempFile(s.fs, s.dir, "."+name+".*.tmp")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = s.fs.Remove(tmpPath)
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpPath)
		return errors.WrapIO("close", path, err)
	}
	if err := s.fs.Chmod(tmpPath, constants.FilePermissions); err != nil {
		_ = s.fs.Remove(tmpPath)
		return errors.WrapIO("chmod", path, err)
	}
	if err := s.fs.Rename(tmpPath, path); err != nil {
		_ = s.fs.Remove(tmpPath)
		return errors.WrapIO("rename", path, err)
	}
	return nil
}

func sortedKeys(m map[string]Firmware) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
