package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"jobkaart/internal/domain"
)

func sampleRegister() *Register {
	customerID := uuid.New()
	sent := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	return &Register{
		Customers: map[uuid.UUID]string{customerID: "Thandi Mokoena"},
		Invoices: []domain.Invoice{
			{
				CustomerID:      customerID,
				InvoiceNumber:   "INV-2026-001",
				InvoiceType:     domain.InvoiceTypeDeposit,
				StagePercentage: decimal.NewNullDecimal(decimal.NewFromInt(30)),
				Status:          domain.InvoiceStatusPartiallyPaid,
				Subtotal:        26087,
				VATAmount:       3913,
				Total:           30000,
				AmountPaid:      10000,
				DueDate:         time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC),
				SentAt:          &sent,
				CreatedAt:       time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
			},
			{
				CustomerID:    uuid.New(),
				InvoiceNumber: "INV-2026-002",
				InvoiceType:   domain.InvoiceTypeFull,
				Status:        domain.InvoiceStatusDraft,
				Total:         5000,
				Subtotal:      5000,
				DueDate:       time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
				CreatedAt:     time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = ParseFormat("xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = ParseFormat("pdf")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestFormat_Filename(t *testing.T) {
	assert.Equal(t, "invoices-2026-03-15.xlsx", FormatXLSX.Filename(time.Date(2026, 3, 15, 23, 0, 0, 0, time.UTC)))
	assert.Contains(t, FormatCSV.ContentType(), "text/csv")
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleRegister()))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, BOM))

	records, err := csv.NewReader(bytes.NewReader(raw[len(BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, columns, records[0])

	first := records[1]
	assert.Equal(t, "INV-2026-001", first[0])
	assert.Equal(t, "deposit", first[1])
	assert.Equal(t, "30.00", first[2])
	assert.Equal(t, "Thandi Mokoena", first[4])
	assert.Equal(t, "300.00", first[7])
	assert.Equal(t, "100.00", first[8])
	assert.Equal(t, "200.00", first[9])
	assert.Equal(t, "2026-03-09", first[10])
	assert.Equal(t, "2026-03-02T09:00:00Z", first[11])
	assert.Equal(t, "", first[12])

	second := records[2]
	assert.Equal(t, "", second[2])
	assert.Equal(t, "", second[4])
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleRegister()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Invoice Number", rows[0][0])
	assert.Equal(t, "INV-2026-001", rows[1][0])

	total, err := f.GetCellValue(sheetName, "H2")
	require.NoError(t, err)
	assert.Equal(t, "300", total)
}
