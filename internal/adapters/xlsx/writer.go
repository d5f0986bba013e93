package xlsx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"azal_reviews/internal/domain"
)

const sheetName = "Sheet1"

// header matches the column order of the scraper export.
var header = []any{"date", "userName", "review", "rating", "country"}

// Writer replaces the workbook at path with the given rows.
type Writer struct{ path string }

func NewWriter(path string) *Writer { return &Writer{path: path} }

func (w *Writer) WriteRows(ctx context.Context, rs []domain.ReviewRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}
	for i, r := range rs {
		if i%500 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		var date, rating any
		if !r.Date.IsZero() {
			date = r.Date
		}
		if r.Rating != 0 {
			rating = r.Rating
		}
		row := []any{date, r.UserName, r.Review, rating, r.Country}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	// write next to the target and rename so readers never see a partial file
	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".reviews-*.xlsx")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := f.WriteTo(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("save workbook: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), w.path)
}
