// Package importer loads expenses from external files (JSON exports and
// OFX/QFX bank statements) into the store in a single bulk write.
package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/hively/hively/internal/common"
	"github.com/hively/hively/internal/model"
	"github.com/hively/hively/internal/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
)

// Format selects the input parser.
type Format string

const (
	FormatJSON Format = "json"
	FormatOFX  Format = "ofx"
)

// Summary reports what one import run did.
type Summary struct {
	Imported int
	Skipped  int
}

// Importer reads expense files and writes them through the store's bulk
// insert, so subscribers see exactly one change notification per run.
type Importer struct {
	store    *storage.Store
	progress bool
}

// Option adjusts an Importer.
type Option func(*Importer)

// WithProgress renders a terminal progress bar while importing.
func WithProgress() Option {
	return func(i *Importer) {
		i.progress = true
	}
}

func New(store *storage.Store, opts ...Option) *Importer {
	imp := &Importer{store: store}
	for _, opt := range opts {
		opt(imp)
	}
	return imp
}

// Import parses r in the given format and inserts the expenses that are not
// already present. Duplicate detection is soft: an incoming expense matching
// an existing one on title, amount, date, and category is skipped.
func (i *Importer) Import(ctx context.Context, r io.Reader, format Format) (*Summary, error) {
	var (
		incoming []model.Expense
		err      error
	)

	switch format {
	case FormatJSON:
		incoming, err = i.parseJSON(ctx, r)
	case FormatOFX:
		incoming, err = i.parseOFX(ctx, r)
	default:
		return nil, fmt.Errorf("%w: unsupported import format %q", common.ErrValidation, format)
	}
	if err != nil {
		return nil, err
	}

	existing, err := i.store.GetExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing expenses: %w", err)
	}

	seen := make(map[string]struct{}, len(existing))
	for idx := range existing {
		seen[existing[idx].DedupHash()] = struct{}{}
	}

	var bar *progressbar.ProgressBar
	if i.progress {
		bar = progressbar.Default(int64(len(incoming)), "Importing expenses")
	}

	fresh := make([]model.Expense, 0, len(incoming))
	skipped := 0
	for idx := range incoming {
		hash := incoming[idx].DedupHash()
		if _, dup := seen[hash]; dup {
			skipped++
		} else {
			seen[hash] = struct{}{}
			fresh = append(fresh, incoming[idx])
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	if len(fresh) > 0 {
		if err := i.store.AddExpenses(ctx, fresh); err != nil {
			return nil, fmt.Errorf("failed to save imported expenses: %w", err)
		}
	}

	slog.Info("import complete", "format", format, "imported", len(fresh), "skipped", skipped)
	return &Summary{Imported: len(fresh), Skipped: skipped}, nil
}

// jsonDate accepts both bare dates and full RFC 3339 timestamps, since
// hand-edited files usually carry the former and exports the latter.
type jsonDate struct {
	time.Time
}

func (d *jsonDate) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("unrecognized date %q", raw)
}

// jsonExpense mirrors the export file format. Categories travel by name so
// files survive a move between databases with different category keys.
type jsonExpense struct {
	Title       string          `json:"title"`
	Amount      decimal.Decimal `json:"amount"`
	Date        jsonDate        `json:"date"`
	Category    string          `json:"category"`
	PaymentMode string          `json:"paymentMode"`
}

func (i *Importer) parseJSON(ctx context.Context, r io.Reader) ([]model.Expense, error) {
	var records []jsonExpense
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON import: %v", common.ErrValidation, err)
	}

	categories, err := i.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}

	expenses := make([]model.Expense, 0, len(records))
	for idx, rec := range records {
		if rec.Title == "" {
			return nil, fmt.Errorf("%w: record %d is missing a title", common.ErrValidation, idx)
		}

		mode := model.PaymentMode(rec.PaymentMode)
		if rec.PaymentMode == "" {
			mode = model.PaymentModeOther
		}
		if !model.ValidPaymentMode(mode) {
			return nil, fmt.Errorf("%w: record %d has unknown payment mode %q", common.ErrValidation, idx, rec.PaymentMode)
		}

		expenses = append(expenses, model.Expense{
			Title:       rec.Title,
			Amount:      rec.Amount,
			Date:        rec.Date.Time,
			CategoryID:  i.resolveCategory(categories, rec.Category),
			PaymentMode: mode,
		})
	}
	return expenses, nil
}

func (i *Importer) parseOFX(ctx context.Context, r io.Reader) ([]model.Expense, error) {
	transactions, err := parseOFXTransactions(r)
	if err != nil {
		return nil, err
	}

	categories, err := i.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}

	expenses := make([]model.Expense, 0, len(transactions))
	for _, tx := range transactions {
		expenses = append(expenses, model.Expense{
			Title:       tx.Name,
			Amount:      tx.Amount,
			Date:        tx.Posted,
			CategoryID:  i.resolveCategory(categories, ""),
			PaymentMode: tx.PaymentMode,
		})
	}
	return expenses, nil
}

// categoryIndex maps lowercase category names to their keys.
func (i *Importer) categoryIndex(ctx context.Context) (map[string]int64, error) {
	categories, err := i.store.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	index := make(map[string]int64, len(categories))
	for _, c := range categories {
		index[strings.ToLower(c.Name)] = c.ID
	}
	return index, nil
}

// resolveCategory maps a category name to its key, falling back to
// Miscellaneous for unknown or missing names.
func (i *Importer) resolveCategory(index map[string]int64, name string) int64 {
	if id, ok := index[strings.ToLower(name)]; ok && name != "" {
		return id
	}
	return index[strings.ToLower(model.CategoryMiscellaneous)]
}
