// Package xlsx reads and writes the review workbook.
package xlsx

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"azal_reviews/internal/adapters/observability"
)

// Source loads the first sheet of a workbook from a local path or an http(s) URL.
type Source struct {
	location string
	hc       *http.Client
}

func NewSource(location string) *Source {
	return &Source{location: location, hc: &http.Client{Timeout: 30 * time.Second}}
}

// ReadRows returns one map per non-blank row keyed by the header cells, plus
// the sha1 of the workbook bytes. Every header key is present in every row.
func (s *Source) ReadRows(ctx context.Context) ([]map[string]string, string, error) {
	b, err := s.fetch(ctx)
	if err != nil {
		return nil, "", err
	}
	sum := sha1.Sum(b)
	rows, err := Decode(bytes.NewReader(b))
	if err != nil {
		return nil, "", err
	}
	return rows, hex.EncodeToString(sum[:]), nil
}

func (s *Source) fetch(ctx context.Context) ([]byte, error) {
	if !strings.HasPrefix(s.location, "http://") && !strings.HasPrefix(s.location, "https://") {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		b, err := os.ReadFile(s.location)
		if err != nil {
			return nil, fmt.Errorf("read workbook: %w", err)
		}
		return b, nil
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.location, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.hc.Do(req)
	if err != nil {
		observability.ObserveExternal("workbook", "get", 0, time.Since(start))
		return nil, fmt.Errorf("fetch workbook: %w", err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal("workbook", "get", resp.StatusCode, time.Since(start))
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch workbook: bad status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// Decode reads the first sheet. Cell values are raw, so dates come back as
// Excel serial numbers.
func Decode(r io.Reader) ([]map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("decode workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("decode workbook: no sheets")
	}
	grid, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("decode workbook: %w", err)
	}
	if len(grid) == 0 {
		return []map[string]string{}, nil
	}

	header := grid[0]
	out := make([]map[string]string, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		if blank(cells) {
			continue
		}
		row := make(map[string]string, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(cells) {
				row[h] = cells[i]
			} else {
				row[h] = ""
			}
		}
		out = append(out, row)
	}
	return out, nil
}

func blank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
