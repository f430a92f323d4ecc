// Package export writes the expense collection to portable files: JSON for
// round-tripping through the importer, CSV for spreadsheets, and XLSX for
// Excel proper.
package export

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/hively/hively/internal/common"
	"github.com/hively/hively/internal/model"
	"github.com/hively/hively/internal/storage"
	"github.com/xuri/excelize/v2"
)

// Format selects the output encoder.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// uncategorized labels expenses whose category no longer exists.
const uncategorized = "Uncategorized"

var csvHeader = []string{"ID", "Title", "Amount", "Date", "Category", "Payment Mode"}

// Exporter reads the store and writes expense files.
type Exporter struct {
	store *storage.Store
}

func New(store *storage.Store) *Exporter {
	return &Exporter{store: store}
}

// record is one output row with the category resolved to its name.
type record struct {
	Title       string            `json:"title"`
	Category    string            `json:"category"`
	Date        string            `json:"date"`
	PaymentMode model.PaymentMode `json:"paymentMode"`
	Amount      json.Number       `json:"amount"`
	ID          int64             `json:"id"`
}

// Export writes every expense to w in the given format.
func (e *Exporter) Export(ctx context.Context, w io.Writer, format Format) error {
	records, err := e.collect(ctx)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		err = writeJSON(w, records)
	case FormatCSV:
		err = writeCSV(w, records)
	case FormatXLSX:
		err = writeXLSX(w, records)
	default:
		return fmt.Errorf("%w: unsupported export format %q", common.ErrValidation, format)
	}
	if err != nil {
		return err
	}

	slog.Info("export complete", "format", format, "expenses", len(records))
	return nil
}

func (e *Exporter) collect(ctx context.Context) ([]record, error) {
	expenses, err := e.store.GetExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load expenses: %w", err)
	}
	categories, err := e.store.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	records := make([]record, 0, len(expenses))
	for _, exp := range expenses {
		name, ok := names[exp.CategoryID]
		if !ok {
			name = uncategorized
		}
		records = append(records, record{
			ID:          exp.ID,
			Title:       exp.Title,
			Amount:      json.Number(exp.Amount.StringFixed(2)),
			Date:        exp.Date.Format("2006-01-02"),
			Category:    name,
			PaymentMode: exp.PaymentMode,
		})
	}
	return records, nil
}

func writeJSON(w io.Writer, records []record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode JSON export: %w", err)
	}
	return nil
}

// writeCSV emits a UTF-8 BOM so Excel detects the encoding when the file is
// opened directly.
func writeCSV(w io.Writer, records []record) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("failed to write CSV preamble: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		row := []string{
			fmt.Sprintf("%d", r.ID),
			r.Title,
			string(r.Amount),
			r.Date,
			r.Category,
			string(r.PaymentMode),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV export: %w", err)
	}
	return nil
}

func writeXLSX(w io.Writer, records []record) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const sheet = "Expenses"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name worksheet: %w", err)
	}

	for col, title := range csvHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("failed to address header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return fmt.Errorf("failed to write header cell: %w", err)
		}
	}

	for i, r := range records {
		amount, err := r.Amount.Float64()
		if err != nil {
			return fmt.Errorf("failed to convert amount for row %d: %w", i+1, err)
		}
		values := []any{r.ID, r.Title, amount, r.Date, r.Category, string(r.PaymentMode)}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("failed to address cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write cell: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
