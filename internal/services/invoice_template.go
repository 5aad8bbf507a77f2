package services

import "html/template"

type invoiceView struct {
	Number           string
	DatePaid         string
	GeneratedOn      string
	ClientName       string
	Description      string
	PaymentReference string
	Amount           string
}

var invoiceTemplate = template.Must(template.New("invoice").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice {{.Number}}</title>
<style>
  body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; padding: 40px; color: #1f2937; max-width: 800px; margin: 0 auto; }
  .header { border-bottom: 3px solid #3b82f6; padding-bottom: 20px; margin-bottom: 30px; }
  h1 { color: #3b82f6; font-size: 36px; margin: 0 0 10px 0; }
  .invoice-number { color: #6b7280; font-size: 14px; }
  .details-grid { display: grid; grid-template-columns: 1fr 1fr; gap: 30px; margin-bottom: 30px; }
  .section { margin-bottom: 25px; }
  .section-title { font-size: 12px; font-weight: 600; color: #6b7280; text-transform: uppercase; letter-spacing: 0.5px; margin-bottom: 8px; }
  .section-content { font-size: 16px; color: #1f2937; line-height: 1.5; }
  .amount-section { background-color: #f3f4f6; padding: 25px; border-radius: 8px; margin-top: 30px; }
  .amount-label { font-size: 14px; color: #6b7280; margin-bottom: 8px; }
  .amount-value { font-size: 32px; font-weight: bold; color: #10b981; }
  .footer { margin-top: 50px; padding-top: 20px; border-top: 1px solid #e5e7eb; font-size: 12px; color: #9ca3af; text-align: center; }
  @media print { body { padding: 20px; } }
</style>
</head>
<body>
  <div class="header">
    <h1>INVOICE</h1>
    <div class="invoice-number">{{.Number}}</div>
  </div>
  <div class="details-grid">
    <div class="section">
      <div class="section-title">Date Paid</div>
      <div class="section-content">{{.DatePaid}}</div>
    </div>
    <div class="section">
      <div class="section-title">Client Name</div>
      <div class="section-content">{{.ClientName}}</div>
    </div>
  </div>
  <div class="section">
    <div class="section-title">Description</div>
    <div class="section-content">{{.Description}}</div>
  </div>
  <div class="section">
    <div class="section-title">Payment Reference</div>
    <div class="section-content">{{.PaymentReference}}</div>
  </div>
  <div class="amount-section">
    <div class="amount-label">Amount Received</div>
    <div class="amount-value">${{.Amount}}</div>
  </div>
  <div class="footer">Generated on {{.GeneratedOn}} &bull; Invoice #{{.Number}}</div>
</body>
</html>
`))
