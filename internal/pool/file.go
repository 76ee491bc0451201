package pool

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/fire-ai/valuation-cli/internal/model"
)

// FileProvider reads a candidate pool from an XLSX export. The first row is
// a header of feed field names (RESO or flattened); each following row is
// one sale record. Useful for offline runs against a saved feed.
type FileProvider struct {
	path string
}

// NewFileProvider creates a provider for the given XLSX path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Candidates reads and normalizes every row of the first sheet.
func (p *FileProvider) Candidates(_ context.Context) ([]model.CandidateRecord, error) {
	f, err := xlsx.OpenFile(p.path)
	if err != nil {
		return nil, eris.Wrapf(err, "pool: open xlsx %s", p.path)
	}
	if len(f.Sheets) == 0 {
		return nil, eris.Errorf("pool: xlsx %s has no sheets", p.path)
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) < 2 {
		return nil, eris.Errorf("pool: xlsx %s has no data rows", p.path)
	}

	header := make([]string, len(sheet.Rows[0].Cells))
	for i, cell := range sheet.Rows[0].Cells {
		header[i] = strings.TrimSpace(cell.String())
	}

	raws := make([]rawRecord, 0, len(sheet.Rows)-1)
	for _, row := range sheet.Rows[1:] {
		raw := make(rawRecord, len(header))
		for i, cell := range row.Cells {
			if i >= len(header) || header[i] == "" {
				continue
			}
			if v := strings.TrimSpace(cell.String()); v != "" {
				raw[header[i]] = v
			}
		}
		if len(raw) > 0 {
			raws = append(raws, raw)
		}
	}

	return NormalizeAll(raws), nil
}
