package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"jobkaart/internal/domain"
)

const sheetName = "Invoices"

// numeric columns are written as numbers so spreadsheet sums work.
var numericColumns = map[int]bool{5: true, 6: true, 7: true, 8: true, 9: true}

// WriteXLSX writes the register as a single-sheet workbook.
func WriteXLSX(w io.Writer, r *Register) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range r.rows() {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		for j := range numericColumns {
			cells[j] = moneyCell(&r.Invoices[i], j)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func moneyCell(inv *domain.Invoice, col int) float64 {
	var m domain.Money
	switch col {
	case 5:
		m = inv.Subtotal
	case 6:
		m = inv.VATAmount
	case 7:
		m = inv.Total
	case 8:
		m = inv.AmountPaid
	case 9:
		m = inv.Outstanding()
	}
	return m.Decimal().InexactFloat64()
}
