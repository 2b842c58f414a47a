package pdf

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/nurpe/mms-documents/internal/calc"
	"github.com/nurpe/mms-documents/internal/format"
	"github.com/nurpe/mms-documents/internal/model"
)

const fontName = "Helvetica"

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Render prints one document: header block, line table, totals and history.
// Amounts carry the currency code since core fonts have no rupee sign.
func (g *Generator) Render(doc model.Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetTitle(fmt.Sprintf("%s %s", doc.Kind.Label(), doc.Header.DocumentNumber), true)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont(fontName, "B", 14)
	pdf.CellFormat(0, 10, tr(doc.Kind.Label()), "", 1, "C", false, 0, "")
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 6, tr(fmt.Sprintf("No. %s dated %s", doc.Header.DocumentNumber, safeValue(doc.Header.Date))), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, tr("Status: "+string(doc.Status)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, field := range headerFields(doc) {
		keyValue(pdf, tr, field[0], field[1])
	}
	pdf.Ln(4)

	headers, widths := lineColumns(doc.Kind)
	drawTableRow(pdf, tr, headers, widths, true)
	for _, line := range doc.Lines {
		drawTableRow(pdf, tr, lineRow(doc, line), widths, false)
	}

	pdf.Ln(2)
	pdf.SetFont(fontName, "", 11)
	currency := safeValue(doc.Header.Currency)
	totals := [][2]string{{"Sub Total", format.Grouped(doc.Totals.SubTotal)}}
	if doc.TaxMode == model.TaxModeHeader {
		totals = append(totals, [2]string{fmt.Sprintf("Tax (%s%%)", format.Amount(doc.Header.TaxPercent, 2)), format.Grouped(doc.Totals.TaxValue)})
	} else {
		totals = append(totals, [2]string{"Tax", format.Grouped(doc.Totals.TaxValue)})
	}
	if doc.Header.Freight != 0 {
		totals = append(totals, [2]string{"Freight", format.Grouped(doc.Header.Freight)})
	}
	if doc.Header.Discount != 0 {
		totals = append(totals, [2]string{"Discount", format.Grouped(doc.Header.Discount)})
	}
	totals = append(totals, [2]string{"Grand Total", format.Grouped(doc.Totals.GrandTotal)})
	for _, row := range totals {
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("%s: %s %s", row[0], currency, row[1])), "", 1, "R", false, 0, "")
	}

	if len(doc.Route) > 0 {
		pdf.Ln(2)
		keyValue(pdf, tr, "Approval route", strings.Join(doc.Route, " > "))
	}

	if len(doc.History) > 0 {
		pdf.Ln(4)
		pdf.SetFont(fontName, "B", 12)
		pdf.CellFormat(0, 8, "History", "", 1, "L", false, 0, "")
		pdf.SetFont(fontName, "", 10)
		for _, h := range doc.History {
			text := fmt.Sprintf("%s  %s  %s", h.At.Format("2006-01-02 15:04"), h.By, h.Action)
			if h.Note != "" {
				text += " (" + h.Note + ")"
			}
			pdf.MultiCell(0, 5, tr(text), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func headerFields(doc model.Document) [][2]string {
	h := doc.Header
	switch doc.Kind {
	case model.KindRequisition:
		return [][2]string{
			{"Title", h.Title},
			{"Requester", h.CounterpartyRef},
			{"Department", h.Department},
			{"Required by", h.DueDate},
			{"Budget code", h.BudgetCode},
			{"Priority", h.Priority},
			{"Quotes", strings.Join(h.QuoteRefs, ", ")},
			{"Justification", h.Justification},
		}
	case model.KindPurchaseOrder:
		return [][2]string{
			{"Supplier", h.CounterpartyRef},
			{"Requisition", h.RequisitionRef},
			{"Payment terms", h.PaymentTerms},
			{"Incoterms", h.Incoterms},
			{"Ship to", h.ShipTo},
			{"Notes", h.Notes},
		}
	default:
		return [][2]string{
			{"Purchase order", h.PurchaseOrderRef},
			{"Supplier", h.CounterpartyRef},
			{"Warehouse", h.Warehouse},
			{"Delivery note", h.DeliveryNote},
			{"Transporter", h.Transporter},
			{"Tolerance", format.Amount(h.ToleranceRulePercent, 2) + "%"},
			{"Notes", h.Notes},
		}
	}
}

func lineColumns(kind model.DocumentKind) ([]string, []float64) {
	switch kind {
	case model.KindRequisition:
		return []string{"Item", "Description", "UOM", "Qty", "Price", "Tax %", "Total"},
			[]float64{25, 55, 15, 20, 25, 15, 25}
	case model.KindGoodsReceipt:
		return []string{"Item", "Description", "Ordered", "Remaining", "Received", "Location", "Total"},
			[]float64{25, 45, 20, 20, 20, 25, 25}
	default:
		return []string{"Item", "Description", "UOM", "Qty", "Price", "Total"},
			[]float64{25, 70, 15, 20, 25, 25}
	}
}

func lineRow(doc model.Document, line model.LineItem) []string {
	total := format.Grouped(calc.LineTotal(doc.TaxMode, line))
	switch doc.Kind {
	case model.KindRequisition:
		return []string{line.Code, line.Description, line.UnitOfMeasure,
			format.Amount(line.Quantity, 2), format.Grouped(line.UnitPrice), format.Amount(line.TaxPercent, 2), total}
	case model.KindGoodsReceipt:
		return []string{line.Code, line.Description,
			format.Amount(line.Ordered, 2), format.Amount(line.Remaining, 2), format.Amount(line.Quantity, 2), line.Location, total}
	default:
		return []string{line.Code, line.Description, line.UnitOfMeasure,
			format.Amount(line.Quantity, 2), format.Grouped(line.UnitPrice), total}
	}
}

func keyValue(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont(fontName, "B", 10)
	pdf.CellFormat(40, 6, tr(label), "", 0, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	pdf.MultiCell(0, 6, tr(safeValue(value)), "", "L", false)
}

func drawTableRow(pdf *gofpdf.Fpdf, tr func(string) string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 9)
	for i, col := range cols {
		align := "L"
		if i > 1 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, tr(col), "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}
