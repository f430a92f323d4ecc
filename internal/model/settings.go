package model

import "github.com/shopspring/decimal"

// SettingsID is the fixed key of the singleton settings record.
const SettingsID int64 = 1

// Settings is the singleton configuration record. It is created once with a
// zero budget and only ever updated, never deleted.
type Settings struct {
	MonthlyBudget decimal.Decimal `json:"monthlyBudget"`
	ID            int64           `json:"id"`
}

// DefaultSettings returns the record seeded on first run.
func DefaultSettings() Settings {
	return Settings{ID: SettingsID, MonthlyBudget: decimal.Zero}
}
