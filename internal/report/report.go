// Package report aggregates expenses into the summaries the CLI renders:
// per-category totals, a monthly series, and a payment-mode breakdown.
package report

import (
	"sort"
	"time"

	"github.com/hively/hively/internal/model"
	"github.com/shopspring/decimal"
)

// CategoryTotal is the spend within one category.
type CategoryTotal struct {
	Name  string
	Total decimal.Decimal
	Count int
	Share float64
}

// MonthTotal is the spend within one calendar month.
type MonthTotal struct {
	Month time.Time
	Total decimal.Decimal
	Count int
}

// ModeTotal is the spend through one payment mode.
type ModeTotal struct {
	Mode  model.PaymentMode
	Total decimal.Decimal
	Count int
}

// Report is the full aggregation over a set of expenses.
type Report struct {
	Total      decimal.Decimal
	Count      int
	Categories []CategoryTotal
	Months     []MonthTotal
	Modes      []ModeTotal
}

// Build aggregates expenses. Categories resolve through the given list;
// expenses pointing at a deleted category group under "Uncategorized".
// Category and mode groups sort by descending total, months chronologically.
func Build(expenses []model.Expense, categories []model.Category) *Report {
	names := make(map[int64]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	r := &Report{Count: len(expenses)}

	byCategory := make(map[string]*CategoryTotal)
	byMonth := make(map[time.Time]*MonthTotal)
	byMode := make(map[model.PaymentMode]*ModeTotal)

	for _, e := range expenses {
		r.Total = r.Total.Add(e.Amount)

		name, ok := names[e.CategoryID]
		if !ok {
			name = "Uncategorized"
		}
		cat := byCategory[name]
		if cat == nil {
			cat = &CategoryTotal{Name: name}
			byCategory[name] = cat
		}
		cat.Total = cat.Total.Add(e.Amount)
		cat.Count++

		month := time.Date(e.Date.Year(), e.Date.Month(), 1, 0, 0, 0, 0, e.Date.Location())
		mt := byMonth[month]
		if mt == nil {
			mt = &MonthTotal{Month: month}
			byMonth[month] = mt
		}
		mt.Total = mt.Total.Add(e.Amount)
		mt.Count++

		mode := byMode[e.PaymentMode]
		if mode == nil {
			mode = &ModeTotal{Mode: e.PaymentMode}
			byMode[e.PaymentMode] = mode
		}
		mode.Total = mode.Total.Add(e.Amount)
		mode.Count++
	}

	for _, cat := range byCategory {
		if r.Total.IsPositive() {
			cat.Share, _ = cat.Total.Div(r.Total).Mul(decimal.NewFromInt(100)).Float64()
		}
		r.Categories = append(r.Categories, *cat)
	}
	sort.Slice(r.Categories, func(i, j int) bool {
		if !r.Categories[i].Total.Equal(r.Categories[j].Total) {
			return r.Categories[i].Total.GreaterThan(r.Categories[j].Total)
		}
		return r.Categories[i].Name < r.Categories[j].Name
	})

	for _, mt := range byMonth {
		r.Months = append(r.Months, *mt)
	}
	sort.Slice(r.Months, func(i, j int) bool {
		return r.Months[i].Month.Before(r.Months[j].Month)
	})

	for _, mode := range byMode {
		r.Modes = append(r.Modes, *mode)
	}
	sort.Slice(r.Modes, func(i, j int) bool {
		if !r.Modes[i].Total.Equal(r.Modes[j].Total) {
			return r.Modes[i].Total.GreaterThan(r.Modes[j].Total)
		}
		return r.Modes[i].Mode < r.Modes[j].Mode
	})

	return r
}

// FilterMonth keeps only expenses within the calendar month of ref.
func FilterMonth(expenses []model.Expense, ref time.Time) []model.Expense {
	var out []model.Expense
	for _, e := range expenses {
		if e.Date.Year() == ref.Year() && e.Date.Month() == ref.Month() {
			out = append(out, e)
		}
	}
	return out
}
