package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// LineItemInput is a caller-supplied line before totals are computed.
type LineItemInput struct {
	Description string          `json:"description" binding:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   Money           `json:"unit_price"`
}

// PricedLines is the result of pricing a set of line items.
type PricedLines struct {
	Items LineItems
	Amounts
}

// PriceLineItems computes line totals, subtotal, VAT and total in cents.
// VAT is charged on top of the subtotal at vatRate percent.
func PriceLineItems(inputs []LineItemInput, vatRate decimal.Decimal) (*PricedLines, error) {
	if len(inputs) == 0 {
		return nil, ErrEmptyLineItems
	}
	if vatRate.IsNegative() || vatRate.GreaterThan(maxPercentage) {
		return nil, ErrInvalidVATRate
	}
	items := make(LineItems, 0, len(inputs))
	var subtotal Money
	for i, in := range inputs {
		desc := strings.TrimSpace(in.Description)
		if desc == "" {
			return nil, NewBusinessError(ErrInvalidLineItem, "line item %d: description is required", i+1)
		}
		if !in.Quantity.IsPositive() {
			return nil, NewBusinessError(ErrInvalidLineItem, "line item %d: quantity must be greater than zero", i+1)
		}
		if in.UnitPrice < 0 {
			return nil, NewBusinessError(ErrInvalidLineItem, "line item %d: unit price cannot be negative", i+1)
		}
		lineTotal := Money(in.Quantity.Mul(decimal.NewFromInt(int64(in.UnitPrice))).Round(0).IntPart())
		items = append(items, LineItem{
			Description: desc,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
			LineTotal:   lineTotal,
		})
		subtotal += lineTotal
	}
	vat := subtotal.Percent(vatRate)
	return &PricedLines{
		Items:   items,
		Amounts: Amounts{Subtotal: subtotal, VAT: vat, Total: subtotal + vat},
	}, nil
}
