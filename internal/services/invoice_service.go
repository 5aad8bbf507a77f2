package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "taxledger/internal/errors"
	"taxledger/internal/mailer"
	"taxledger/internal/models"
	"taxledger/internal/money"
	"taxledger/internal/validator"
)

// InvoiceCategory is the income category invoices are saved under.
const InvoiceCategory = "Client Payment"

const displayDateLayout = "January 2, 2006"

var nonAlnum = regexp.MustCompile(`[^A-Za-z0-9]`)

// Renderer turns invoice HTML into the document that is stored and mailed.
type Renderer interface {
	Render(ctx context.Context, html []byte) ([]byte, error)
	Extension() string
	MimeType() string
}

// HTMLRenderer keeps the invoice as an HTML document.
type HTMLRenderer struct{}

func (HTMLRenderer) Render(_ context.Context, html []byte) ([]byte, error) { return html, nil }

func (HTMLRenderer) Extension() string { return ".html" }

func (HTMLRenderer) MimeType() string { return "text/html" }

// invoiceSaver is the part of attachments.Manager used to keep the rendered
// invoice.
type invoiceSaver interface {
	Save(ctx context.Context, r io.Reader, name, mimeType string) (models.Attachment, error)
}

// invoiceService renders invoices and records them as income.
type invoiceService struct {
	transactions TransactionServicer
	receipts     invoiceSaver
	renderer     Renderer
	mailer       mailer.Mailer
	log          *zap.SugaredLogger
	now          func() time.Time
}

// NewInvoiceService creates a new InvoiceServicer. mail may be nil, in which
// case e-mail delivery is reported as disabled.
func NewInvoiceService(transactions TransactionServicer, receipts invoiceSaver, renderer Renderer, mail mailer.Mailer, log *zap.SugaredLogger) InvoiceServicer {
	if renderer == nil {
		renderer = HTMLRenderer{}
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &invoiceService{
		transactions: transactions,
		receipts:     receipts,
		renderer:     renderer,
		mailer:       mail,
		log:          log,
		now:          time.Now,
	}
}

// CreateInvoice validates the form, renders the invoice and, on request,
// saves it as an income record with the document attached and mails it.
func (s *invoiceService) CreateInvoice(ctx context.Context, req InvoiceRequest) (*Invoice, error) {
	req, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	if req.SendEmail && s.mailer == nil {
		return nil, apperrors.ErrMailerDisabled
	}

	now := s.now()
	date, _ := time.Parse(validator.DateLayout, req.Date)
	inv := &Invoice{
		Number:     fmt.Sprintf("INV-%d", now.UnixMilli()),
		ClientName: req.ClientName,
		Amount:     req.Amount,
		Date:       req.Date,
	}
	inv.FileName = inv.Number + "_" + nonAlnum.ReplaceAllString(req.ClientName, "_") + s.renderer.Extension()

	var html bytes.Buffer
	err = invoiceTemplate.Execute(&html, invoiceView{
		Number:           inv.Number,
		DatePaid:         date.Format(displayDateLayout),
		GeneratedOn:      now.Format(displayDateLayout),
		ClientName:       req.ClientName,
		Description:      req.Description,
		PaymentReference: req.PaymentReference,
		Amount:           money.Format(req.Amount),
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvoiceRenderFailed, err)
	}
	inv.HTML = html.String()

	doc, err := s.renderer.Render(ctx, html.Bytes())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInvoiceRenderFailed, err)
	}

	if req.SaveAsIncome {
		tx, err := s.saveAsIncome(ctx, req, inv, doc)
		if err != nil {
			return nil, err
		}
		inv.Transaction = tx
	}

	if req.SendEmail {
		err := s.mailer.Send(ctx, mailer.Message{
			To:      req.ClientEmail,
			Subject: "Invoice " + inv.Number,
			HTML:    inv.HTML,
			Attachments: []mailer.Attachment{
				{Name: inv.FileName, MimeType: s.renderer.MimeType(), Data: doc},
			},
		})
		if err != nil {
			// the invoice already exists; a failed delivery is reported in
			// the result rather than as an error
			s.log.Errorw("failed to e-mail invoice", "number", inv.Number, "error", err)
		} else {
			inv.Emailed = true
		}
	}

	s.log.Infow("invoice generated", "number", inv.Number, "saved", inv.Transaction != nil, "emailed", inv.Emailed)
	return inv, nil
}

func (s *invoiceService) saveAsIncome(ctx context.Context, req InvoiceRequest, inv *Invoice, doc []byte) (*models.Transaction, error) {
	att, err := s.receipts.Save(ctx, bytes.NewReader(doc), inv.FileName, s.renderer.MimeType())
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrAttachmentSaveFailed, err)
	}
	return s.transactions.CreateTransaction(ctx, models.TransactionTypeIncome, models.TransactionInput{
		Description: req.ClientName + " - " + req.Description,
		Amount:      req.Amount,
		Date:        req.Date,
		Category:    InvoiceCategory,
		Attachments: []models.Attachment{att},
	})
}

func (s *invoiceService) validate(req InvoiceRequest) (InvoiceRequest, error) {
	req.ClientName = strings.TrimSpace(req.ClientName)
	req.ClientEmail = strings.TrimSpace(req.ClientEmail)
	req.Description = strings.TrimSpace(req.Description)
	req.PaymentReference = strings.TrimSpace(req.PaymentReference)
	req.Date = strings.TrimSpace(req.Date)

	switch {
	case req.ClientName == "":
		return req, apperrors.WithMessage(apperrors.ErrInvalidInput, "Please enter client name")
	case req.Description == "":
		return req, apperrors.WithMessage(apperrors.ErrInvalidInput, "Please enter a description")
	case req.Amount <= 0 || req.Amount > money.MaxCents:
		return req, apperrors.WithMessage(apperrors.ErrInvalidInput, "Please enter a valid amount")
	case req.PaymentReference == "":
		return req, apperrors.WithMessage(apperrors.ErrInvalidInput, "Please enter payment reference")
	}

	if req.Date == "" {
		req.Date = s.now().Format(validator.DateLayout)
	} else if !validator.IsISODate(req.Date) {
		return req, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be formatted as YYYY-MM-DD")
	}

	if req.SendEmail {
		if _, err := mail.ParseAddress(req.ClientEmail); err != nil {
			return req, apperrors.WithMessage(apperrors.ErrInvalidInput, "client e-mail address is invalid")
		}
	}
	return req, nil
}
