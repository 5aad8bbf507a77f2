package models

import "strings"

// TransactionType selects one of the two ledgers. Categories are scoped by
// the same value.
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// TransactionTypes lists every ledger in display order.
var TransactionTypes = []TransactionType{TransactionTypeIncome, TransactionTypeExpense}

// Valid reports whether t names a known ledger.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// ParseTransactionType accepts the singular and plural forms used in routes
// ("income", "expense", "expenses").
func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "incomes":
		return TransactionTypeIncome, true
	case "expense", "expenses":
		return TransactionTypeExpense, true
	}
	return "", false
}

// Transaction is a single income or expense record. Amount is in cents and
// Date is a calendar date formatted as YYYY-MM-DD.
type Transaction struct {
	ID          string       `json:"id"`
	Description string       `json:"description"`
	Amount      int64        `json:"amount"`
	Date        string       `json:"date"`
	Category    string       `json:"category"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// TransactionInput holds every non-id field of a Transaction. Updates replace
// all of them at once.
type TransactionInput struct {
	Description string
	Amount      int64
	Date        string
	Category    string
	Attachments []Attachment
}

// Input returns the non-id fields of t.
func (t Transaction) Input() TransactionInput {
	return TransactionInput{
		Description: t.Description,
		Amount:      t.Amount,
		Date:        t.Date,
		Category:    t.Category,
		Attachments: t.Attachments,
	}
}

// Clone returns a copy of t that shares no memory with the original.
func (t Transaction) Clone() Transaction {
	if t.Attachments == nil {
		return t
	}
	attachments := make([]Attachment, len(t.Attachments))
	for i, a := range t.Attachments {
		if a.Size != nil {
			size := *a.Size
			a.Size = &size
		}
		attachments[i] = a
	}
	t.Attachments = attachments
	return t
}

// FindAttachment returns the index of the attachment with the given id, or -1.
func (t Transaction) FindAttachment(id string) int {
	for i, a := range t.Attachments {
		if a.ID == id {
			return i
		}
	}
	return -1
}
