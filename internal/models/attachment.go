package models

// AttachmentType classifies a receipt file.
type AttachmentType string

const (
	AttachmentTypeImage    AttachmentType = "image"
	AttachmentTypePDF      AttachmentType = "pdf"
	AttachmentTypeDocument AttachmentType = "document"
)

// Attachment is a receipt or invoice file owned by exactly one transaction.
// URI is the path of the copy kept in the receipts directory.
type Attachment struct {
	ID       string         `json:"id"`
	URI      string         `json:"uri"`
	Name     string         `json:"name"`
	Type     AttachmentType `json:"type"`
	Size     *int64         `json:"size,omitempty"`
	MimeType string         `json:"mimeType,omitempty"`
}
