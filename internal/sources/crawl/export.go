// Package crawl reads link fragments exported by the site crawler.
//
// The crawler itself drives a browser and lives outside this module. It
// writes one fragment per firmware link, either as a JSON array or as JSON
// lines. Fragment text captured as HTML is flattened to Markdown before
// extraction.
package crawl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/spf13/afero"

	"github.com/agentstation/fwmap/pkg/errors"
	"github.com/agentstation/fwmap/pkg/extract"
	"github.com/agentstation/fwmap/pkg/logging"
	"github.com/agentstation/fwmap/pkg/sources"
)

// Export is a crawl export file.
type Export struct {
	fs   afero.Fs
	path string
}

// NewExport creates an Export reading path on fs. A nil fs means the OS
// filesystem.
func NewExport(fs afero.Fs, path string) *Export {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Export{fs: fs, path: path}
}

var _ sources.FragmentSource = (*Export)(nil)

// Fragments decodes the export. Lines that fail to decode in a JSON-lines
// export are logged and skipped. A missing file is a NotFoundError.
func (e *Export) Fragments(ctx context.Context) ([]extract.Fragment, error) {
	data, err := afero.ReadFile(e.fs, e.path)
	if os.IsNotExist(err) {
		return nil, errors.NewNotFoundError("crawl export", e.path)
	}
	if err != nil {
		return nil, errors.WrapIO("read", e.path, err)
	}
	return Decode(ctx, data)
}

// Decode parses a JSON array or JSON-lines export.
func Decode(ctx context.Context, data []byte) ([]extract.Fragment, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return []extract.Fragment{}, nil
	}

	var fragments []extract.Fragment
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &fragments); err != nil {
			return nil, errors.WrapParse("json", "crawl export", err)
		}
	} else {
		logger := logging.FromContext(ctx)
		scanner := bufio.NewScanner(bytes.NewReader(trimmed))
		scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
		line := 0
		for scanner.Scan() {
			line++
			raw := bytes.TrimSpace(scanner.Bytes())
			if len(raw) == 0 {
				continue
			}
			var f extract.Fragment
			if err := json.Unmarshal(raw, &f); err != nil {
				logger.Warn().Err(err).Int("line", line).Msg("Skipping undecodable crawl fragment")
				continue
			}
			fragments = append(fragments, f)
		}
		if err := scanner.Err(); err != nil {
			return nil, errors.WrapParse("jsonl", "crawl export", err)
		}
	}

	for i := range fragments {
		fragments[i].Text = Flatten(fragments[i].Text)
		fragments[i].Context = Flatten(fragments[i].Context)
	}
	return fragments, nil
}

// Flatten converts HTML to Markdown text. Plain text and HTML that fails
// to convert are returned unchanged.
func Flatten(s string) string {
	if !looksLikeHTML(s) {
		return s
	}
	md, err := htmltomarkdown.ConvertString(s)
	if err != nil {
		return s
	}
	return strings.TrimSpace(md)
}

func looksLikeHTML(s string) bool {
	i := strings.IndexByte(s, '<')
	return i >= 0 && strings.IndexByte(s[i:], '>') > 0
}
