package model

// Category represents an expense category.
type Category struct {
	Name      string `json:"name"`
	ID        int64  `json:"id"`
	IsDefault bool   `json:"isDefault"`
}

// CategoryMiscellaneous is the seeded catch-all category. Imports fall back
// to it when a record's category cannot be resolved.
const CategoryMiscellaneous = "Miscellaneous"

// DefaultCategoryNames are seeded on first run, in this order.
// Only non-default categories may be deleted.
var DefaultCategoryNames = []string{
	"Food",
	"Travel",
	"Shopping",
	"Bills",
	"Entertainment",
	"Health",
	"Education",
	CategoryMiscellaneous,
}
