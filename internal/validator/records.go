package validator

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"taxledger/internal/models"
)

var records = newRecordValidator()

func newRecordValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	registerAll(v)
	return v
}

type attachmentRecord struct {
	ID       string   `json:"id" validate:"required"`
	URI      string   `json:"uri" validate:"required"`
	Name     string   `json:"name" validate:"required"`
	Type     string   `json:"type" validate:"required,oneof=image pdf document"`
	Size     *float64 `json:"size" validate:"omitempty,gte=0"`
	MimeType string   `json:"mimeType"`
}

type transactionRecord struct {
	ID          string             `json:"id" validate:"required"`
	Description string             `json:"description" validate:"required"`
	Amount      *float64           `json:"amount" validate:"required,gte=0,max_amount"`
	Date        string             `json:"date" validate:"required"`
	Category    string             `json:"category" validate:"required"`
	Attachments []attachmentRecord `json:"attachments" validate:"omitempty,dive"`
}

type categoryRecord struct {
	ID    string `json:"id" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Color string `json:"color" validate:"required"`
}

// Transactions decodes a persisted transaction list and keeps only
// well-formed records. It returns the number of records that were dropped.
// An error means the value was not a JSON array at all.
func Transactions(data []byte) ([]models.Transaction, int, error) {
	elems, err := splitArray(data)
	if err != nil {
		return nil, 0, err
	}

	valid := make([]models.Transaction, 0, len(elems))
	seen := make(map[string]bool, len(elems))
	dropped := 0
	for _, raw := range elems {
		var rec transactionRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			dropped++
			continue
		}
		if err := records.Struct(rec); err != nil {
			dropped++
			continue
		}
		if seen[rec.ID] {
			dropped++
			continue
		}
		seen[rec.ID] = true
		valid = append(valid, rec.toModel())
	}
	return valid, dropped, nil
}

// Categories decodes a persisted category list, dropping malformed entries.
func Categories(data []byte) ([]models.Category, int, error) {
	elems, err := splitArray(data)
	if err != nil {
		return nil, 0, err
	}

	valid := make([]models.Category, 0, len(elems))
	dropped := 0
	for _, raw := range elems {
		var rec categoryRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			dropped++
			continue
		}
		if err := records.Struct(rec); err != nil {
			dropped++
			continue
		}
		valid = append(valid, models.Category{ID: rec.ID, Name: rec.Name, Color: rec.Color})
	}
	return valid, dropped, nil
}

func splitArray(data []byte) ([]json.RawMessage, error) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil {
		return nil, fmt.Errorf("stored value is not a JSON array: %w", err)
	}
	return elems, nil
}

func (r transactionRecord) toModel() models.Transaction {
	t := models.Transaction{
		ID:          r.ID,
		Description: r.Description,
		Amount:      int64(math.Round(*r.Amount)),
		Date:        r.Date,
		Category:    r.Category,
	}
	for _, a := range r.Attachments {
		att := models.Attachment{
			ID:       a.ID,
			URI:      a.URI,
			Name:     a.Name,
			Type:     models.AttachmentType(a.Type),
			MimeType: a.MimeType,
		}
		if a.Size != nil {
			size := int64(*a.Size)
			att.Size = &size
		}
		t.Attachments = append(t.Attachments, att)
	}
	return t
}
