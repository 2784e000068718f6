// Package export renders the invoice register as CSV or XLSX.
package export

import (
	"time"

	"github.com/google/uuid"

	"jobkaart/internal/domain"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat validates a requested format. Empty means CSV.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", domain.NewBusinessError(domain.ErrValidation, "unsupported export format %q", s)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns a dated download name.
func (f Format) Filename(now time.Time) string {
	return "invoices-" + now.UTC().Format("2006-01-02") + "." + string(f)
}

// columns is the invoice register header row.
var columns = []string{
	"Invoice Number",
	"Type",
	"Stage %",
	"Status",
	"Customer",
	"Subtotal",
	"VAT",
	"Total",
	"Amount Paid",
	"Outstanding",
	"Due Date",
	"Sent At",
	"Paid At",
	"Created At",
}

// Register is the data behind one export.
type Register struct {
	Invoices  []domain.Invoice
	Customers map[uuid.UUID]string
}

func (r *Register) rows() [][]string {
	rows := make([][]string, 0, len(r.Invoices))
	for i := range r.Invoices {
		rows = append(rows, invoiceToRow(&r.Invoices[i], r.Customers))
	}
	return rows
}

func invoiceToRow(inv *domain.Invoice, customers map[uuid.UUID]string) []string {
	row := make([]string, len(columns))
	row[0] = inv.InvoiceNumber
	row[1] = string(inv.InvoiceType)
	if inv.StagePercentage.Valid {
		row[2] = inv.StagePercentage.Decimal.StringFixed(2)
	}
	row[3] = string(inv.Status)
	row[4] = customers[inv.CustomerID]
	row[5] = inv.Subtotal.String()
	row[6] = inv.VATAmount.String()
	row[7] = inv.Total.String()
	row[8] = inv.AmountPaid.String()
	row[9] = inv.Outstanding().String()
	row[10] = inv.DueDate.Format("2006-01-02")
	row[11] = formatTime(inv.SentAt)
	row[12] = formatTime(inv.PaidAt)
	row[13] = inv.CreatedAt.Format(time.RFC3339)
	return row
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
