package models

// MaxCategoryNameLength is the longest allowed category name, counted in
// characters after trimming.
const MaxCategoryNameLength = 20

// Category is a user-defined label for transactions of one type.
type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DefaultIncomeCategories seeds the income ledger on first start.
var DefaultIncomeCategories = []Category{
	{ID: "1", Name: "Freelance", Color: "#3b82f6"},
	{ID: "2", Name: "Consulting", Color: "#8b5cf6"},
	{ID: "3", Name: "Salary", Color: "#10b981"},
	{ID: "4", Name: "Investment", Color: "#f59e0b"},
	{ID: "5", Name: "Business", Color: "#ef4444"},
	{ID: "6", Name: "Other", Color: "#6b7280"},
}

// DefaultExpenseCategories seeds the expense ledger on first start.
var DefaultExpenseCategories = []Category{
	{ID: "1", Name: "Office", Color: "#3b82f6"},
	{ID: "2", Name: "Software", Color: "#8b5cf6"},
	{ID: "3", Name: "Meals", Color: "#ec4899"},
	{ID: "4", Name: "Utilities", Color: "#10b981"},
	{ID: "5", Name: "Travel", Color: "#f59e0b"},
	{ID: "6", Name: "Marketing", Color: "#ef4444"},
	{ID: "7", Name: "Education", Color: "#06b6d4"},
	{ID: "8", Name: "Other", Color: "#6b7280"},
}

// DefaultCategories returns a fresh copy of the seed set for t.
func DefaultCategories(t TransactionType) []Category {
	if t == TransactionTypeIncome {
		return append([]Category(nil), DefaultIncomeCategories...)
	}
	return append([]Category(nil), DefaultExpenseCategories...)
}

// ColorPalette is the set of colours offered for new categories.
var ColorPalette = []string{
	"#3b82f6", "#8b5cf6", "#ec4899", "#10b981",
	"#f59e0b", "#ef4444", "#06b6d4", "#6b7280",
	"#f97316", "#14b8a6", "#a855f7", "#84cc16",
	"#f43f5e", "#0ea5e9", "#d946ef", "#22c55e",
}
