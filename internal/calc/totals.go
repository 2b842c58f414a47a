// Package calc derives document totals from line items and header adjustments.
//
// TaxModeHeader taxes the subtotal once, TaxModePerLine taxes each line with
// its own rate. Totals are plain float64 sums; nothing is rounded here.
package calc

import "github.com/nurpe/mms-documents/internal/model"

// Adjustments are the header-level amounts applied after the line sum.
type Adjustments struct {
	Freight    float64
	TaxPercent float64
	Discount   float64
}

// AdjustmentsFrom picks the header-level adjustment fields.
func AdjustmentsFrom(h model.Header) Adjustments {
	return Adjustments{
		Freight:    h.Freight,
		TaxPercent: h.TaxPercent,
		Discount:   h.Discount,
	}
}

// LineTotal is what a single line contributes to the grand total before
// header adjustments.
func LineTotal(mode model.TaxMode, line model.LineItem) float64 {
	base := line.Quantity * line.UnitPrice
	if mode == model.TaxModePerLine {
		return base * (1 + line.TaxPercent/100)
	}
	return base
}

// Compute returns subtotal, tax and grand total. Lines order does not matter.
// With no lines the grand total is freight minus discount and may be negative.
func Compute(mode model.TaxMode, lines []model.LineItem, adj Adjustments) model.Totals {
	var sub, tax, running float64
	for _, line := range lines {
		base := line.Quantity * line.UnitPrice
		sub += base
		if mode == model.TaxModePerLine {
			tax += base * line.TaxPercent / 100
			running += LineTotal(mode, line)
		}
	}

	if mode == model.TaxModePerLine {
		return model.Totals{
			SubTotal:   sub,
			TaxValue:   tax,
			GrandTotal: running + adj.Freight - adj.Discount,
		}
	}

	tax = sub * adj.TaxPercent / 100
	return model.Totals{
		SubTotal:   sub,
		TaxValue:   tax,
		GrandTotal: sub + tax + adj.Freight - adj.Discount,
	}
}

// ForDocument computes totals of a document using its own tax mode.
func ForDocument(doc model.Document) model.Totals {
	mode := doc.TaxMode
	if mode == "" {
		mode = doc.Kind.DefaultTaxMode()
	}
	return Compute(mode, doc.Lines, AdjustmentsFrom(doc.Header))
}
