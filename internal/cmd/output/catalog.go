package output

import (
	"strconv"

	"github.com/agentstation/fwmap/pkg/catalogs"
	"github.com/agentstation/fwmap/pkg/reconciler"
)

// Firmwares shapes records for the list command.
func Firmwares(list []catalogs.Firmware) Data {
	d := Data{
		Headers: []string{"Model", "Hardware", "Version", "Date", "Source", "File", "Beta"},
		Raw:     list,
	}
	for _, f := range list {
		beta := ""
		if f.IsBeta {
			beta = "yes"
		}
		d.Rows = append(d.Rows, []string{
			f.Model, f.HardwareVersion, f.Version, f.Date, f.Source.String(), f.Filename, beta,
		})
	}
	return d
}

// DeviceRow is one device with its record count.
type DeviceRow struct {
	ID              int    `json:"id"`
	Model           string `json:"model"`
	HardwareVersion string `json:"hardware_version"`
	Firmwares       int    `json:"firmwares"`
}

// Devices shapes the device table for the list command.
func Devices(state *catalogs.State) Data {
	var raw []DeviceRow
	d := Data{
		Headers:      []string{"ID", "Model", "Hardware", "Firmwares"},
		RightAligned: []int{0, 3},
	}
	for _, dev := range state.Devices.List() {
		n := len(state.Firmwares.ByDevice(dev.ID))
		raw = append(raw, DeviceRow{ID: dev.ID, Model: dev.Model, HardwareVersion: dev.HardwareVersion, Firmwares: n})
		d.Rows = append(d.Rows, []string{strconv.Itoa(dev.ID), dev.Model, dev.HardwareVersion, strconv.Itoa(n)})
	}
	d.Raw = raw
	return d
}

// PassRow is one pass of a run.
type PassRow struct {
	Pass       string `json:"pass"`
	Processed  int    `json:"processed"`
	Added      int    `json:"added"`
	Backfilled int    `json:"backfilled"`
	Removed    int    `json:"removed"`
	Skipped    int    `json:"skipped"`
	Duplicates int    `json:"duplicates"`
	Error      string `json:"error,omitempty"`
}

// Run shapes per-pass counts for the sync and import commands.
func Run(result *reconciler.Result) Data {
	d := Data{
		Headers:      []string{"Pass", "Processed", "Added", "Backfilled", "Removed", "Skipped", "Duplicates", "Error"},
		RightAligned: []int{1, 2, 3, 4, 5, 6},
	}
	raw := make([]PassRow, 0, len(result.Passes))
	for _, p := range result.Passes {
		row := PassRow{
			Pass:       string(p.Pass),
			Processed:  p.Processed,
			Added:      p.Added,
			Backfilled: p.Backfilled,
			Removed:    p.Removed,
			Skipped:    p.Skipped,
			Duplicates: p.Duplicates,
		}
		switch {
		case p.Err != nil:
			row.Error = p.Err.Error()
		case p.Aborted:
			row.Error = "skipped"
		}
		raw = append(raw, row)
		d.Rows = append(d.Rows, []string{
			row.Pass,
			strconv.Itoa(row.Processed),
			strconv.Itoa(row.Added),
			strconv.Itoa(row.Backfilled),
			strconv.Itoa(row.Removed),
			strconv.Itoa(row.Skipped),
			strconv.Itoa(row.Duplicates),
			row.Error,
		})
	}
	d.Raw = raw
	return d
}
