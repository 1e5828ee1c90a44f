package fwmap

import (
	"bytes"
	"context"
	"io"

	"github.com/agentstation/fwmap/pkg/constants"
	"github.com/agentstation/fwmap/pkg/report"
)

// Save writes every catalog document.
func (c *client) Save(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.store.Save(c.scope(ctx), c.state)
}

// Report renders the README for the current catalog.
func (c *client) Report(w io.Writer, opts ...report.Option) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return report.Render(w, c.state, opts...)
}

// WriteReport writes README.md into the data directory.
func (c *client) WriteReport(opts ...report.Option) error {
	var buf bytes.Buffer
	if err := c.Report(&buf, opts...); err != nil {
		return err
	}
	return c.store.WriteFile(constants.ReadmeFile, buf.Bytes())
}
