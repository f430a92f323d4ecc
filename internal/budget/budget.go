// Package budget derives the monthly budget state from the expense snapshot.
package budget

import (
	"time"

	"github.com/hively/hively/internal/model"
	"github.com/shopspring/decimal"
)

// Status is the derived budget state for the month containing now.
type Status struct {
	Budget     decimal.Decimal
	Spent      decimal.Decimal
	Remaining  decimal.Decimal
	Progress   float64
	HasBudget  bool
	OverBudget bool
}

// Evaluate computes the month-to-date total and the remaining budget.
// Remaining goes negative when the budget is exceeded.
func Evaluate(expenses []model.Expense, settings model.Settings, now time.Time) Status {
	spent := decimal.Zero
	year, month, _ := now.Date()
	for i := range expenses {
		ey, em, _ := expenses[i].Date.Date()
		if ey == year && em == month {
			spent = spent.Add(expenses[i].Amount)
		}
	}

	budget := settings.MonthlyBudget
	remaining := budget.Sub(spent)

	status := Status{
		Budget:    budget,
		Spent:     spent,
		Remaining: remaining,
		HasBudget: budget.IsPositive(),
	}

	if status.HasBudget {
		progress, _ := spent.Div(budget).Mul(decimal.NewFromInt(100)).Float64()
		if progress > 100 {
			progress = 100
		}
		status.Progress = progress
		status.OverBudget = remaining.IsNegative()
	}

	return status
}
