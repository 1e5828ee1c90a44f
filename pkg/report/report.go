// Package report renders the catalog as a Markdown README.
package report

import (
	"cmp"
	"fmt"
	"io"
	"slices"
	"strings"

	md "github.com/nao1215/markdown"

	"github.com/agentstation/fwmap/pkg/catalogs"
)

// BetaWarning prefixes the notes of pre-release firmware.
const BetaWarning = "⚠️ Beta firmware."

type options struct {
	title  string
	intro  string
	header string
}

// Option configures rendering.
type Option func(*options)

// WithTitle sets the H1 title.
func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

// WithIntro sets a paragraph placed under the title.
func WithIntro(intro string) Option {
	return func(o *options) {
		o.intro = intro
	}
}

// WithHeader replaces the generated title and intro with a verbatim
// Markdown header. The literal "Total: 0" in it is replaced by the real
// count.
func WithHeader(header string) Option {
	return func(o *options) {
		o.header = header
	}
}

// Section is one device's firmware list.
type Section struct {
	Device    catalogs.Device
	Firmwares []catalogs.Firmware
}

// Sections groups records by device. Devices are ordered by model, then
// hardware version; devices without records are omitted. Records within a
// section are newest first.
func Sections(state *catalogs.State) []Section {
	devices := state.Devices.List()
	slices.SortStableFunc(devices, func(a, b catalogs.Device) int {
		if c := cmp.Compare(a.Model, b.Model); c != 0 {
			return c
		}
		return cmp.Compare(a.HardwareVersion, b.HardwareVersion)
	})

	var sections []Section
	for _, dev := range devices {
		firmwares := state.Firmwares.ByDevice(dev.ID)
		if len(firmwares) == 0 {
			continue
		}
		sections = append(sections, Section{Device: dev, Firmwares: firmwares})
	}
	return sections
}

// Render writes the README for state to w.
func Render(w io.Writer, state *catalogs.State, opts ...Option) error {
	o := &options{title: "Firmware Archive"}
	for _, opt := range opts {
		opt(o)
	}

	sections := Sections(state)
	total := 0
	for _, s := range sections {
		total += len(s.Firmwares)
	}

	doc := md.NewMarkdown(w)
	if o.header != "" {
		doc.PlainText(strings.Replace(o.header, "Total: 0", fmt.Sprintf("Total: %d", total), 1)).LF()
	} else {
		doc.H1(o.title).LF()
		if o.intro != "" {
			doc.PlainText(o.intro).LF()
		}
		doc.PlainTextf("Total: %d", total).LF()
	}

	for _, s := range sections {
		doc.H2(s.Device.Model).LF()
		if s.Device.HardwareVersion != "" {
			doc.H3(s.Device.HardwareVersion).LF()
		}
		doc.PlainTextf("Firmwares for this hardware version: %d", len(s.Firmwares)).LF()

		rows := make([][]string, 0, len(s.Firmwares))
		for _, f := range s.Firmwares {
			rows = append(rows, row(f))
		}
		doc.Table(md.TableSet{
			Header: []string{"Version", "Date", "Changes", "Notes"},
			Rows:   rows,
		}).LF()
	}

	return doc.Build()
}

func row(f catalogs.Firmware) []string {
	version := f.Version
	if f.DownloadURL != "" {
		version = md.Link(f.Version, f.DownloadURL)
	}
	notes := f.Notes
	if f.IsBeta {
		notes = strings.TrimSpace(BetaWarning + " " + notes)
	}
	return []string{version, f.Date, cell(f.Changes), cell(notes)}
}

// cell flattens text onto one line and escapes the column separator.
func cell(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	return strings.ReplaceAll(text, "|", `\|`)
}
