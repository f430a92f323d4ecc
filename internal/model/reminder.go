package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reminder represents an upcoming bill the user wants to be reminded of.
// Reminders whose due date has passed are garbage-collected on refresh.
type Reminder struct {
	DueDate time.Time       `json:"dueDate"`
	Title   string          `json:"title"`
	Amount  decimal.Decimal `json:"amount"`
	ID      int64           `json:"id"`
}

// DueToday reports whether the reminder is due on the calendar day of now.
func (r *Reminder) DueToday(now time.Time) bool {
	return sameDay(r.DueDate, now)
}

// DueTomorrow reports whether the reminder is due the calendar day after now.
func (r *Reminder) DueTomorrow(now time.Time) bool {
	return sameDay(r.DueDate, now.AddDate(0, 0, 1))
}

// Past reports whether the reminder's due date is strictly before the start
// of now's calendar day. A reminder due today is not past.
func (r *Reminder) Past(now time.Time) bool {
	return r.DueDate.Before(startOfDay(now))
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
