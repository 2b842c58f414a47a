package excel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/nurpe/mms-documents/internal/calc"
	"github.com/nurpe/mms-documents/internal/model"
)

const (
	summarySheet  = "Summary"
	registerSheet = "Register"
	linesSheet    = "Lines"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Export writes a register workbook for docs of one kind: a summary by
// status, one row per document and one row per line.
func (g *Generator) Export(kind model.DocumentKind, docs []model.Document, generatedAt time.Time) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	if _, err := file.NewSheet(registerSheet); err != nil {
		return nil, err
	}
	if _, err := file.NewSheet(linesSheet); err != nil {
		return nil, err
	}

	g.writeSummary(file, kind, docs, generatedAt)
	g.writeRegister(file, kind, docs)
	g.writeLines(file, docs)

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, kind model.DocumentKind, docs []model.Document, generatedAt time.Time) {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(summarySheet, cell, value)
	}

	set("A1", "Register")
	set("B1", kind.Label())
	set("A2", "Generated at")
	set("B2", formatDateTime(generatedAt))
	set("A3", "Documents")
	set("B3", len(docs))

	type bucket struct {
		count int
		total float64
	}
	byStatus := map[model.DocumentStatus]*bucket{}
	for _, doc := range docs {
		b, ok := byStatus[doc.Status]
		if !ok {
			b = &bucket{}
			byStatus[doc.Status] = b
		}
		b.count++
		b.total += doc.Totals.GrandTotal
	}
	statuses := make([]string, 0, len(byStatus))
	for status := range byStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)

	tableRow := 5
	set(fmt.Sprintf("A%d", tableRow), "Status")
	set(fmt.Sprintf("B%d", tableRow), "Documents")
	set(fmt.Sprintf("C%d", tableRow), "Grand total")
	for i, status := range statuses {
		row := tableRow + 1 + i
		b := byStatus[model.DocumentStatus(status)]
		set(fmt.Sprintf("A%d", row), status)
		set(fmt.Sprintf("B%d", row), b.count)
		set(fmt.Sprintf("C%d", row), roundAmount(b.total))
	}

	_ = file.SetColWidth(summarySheet, "A", "A", 24)
	_ = file.SetColWidth(summarySheet, "B", "C", 18)
}

func (g *Generator) writeRegister(file *excelize.File, kind model.DocumentKind, docs []model.Document) {
	headers := []string{"Number", "Date", registerParty(kind), "Reference", "Status", "Currency", "Sub total", "Tax", "Grand total", "Approval route"}
	writeHeaderRow(file, registerSheet, headers)

	for i, doc := range docs {
		row := i + 2
		values := []interface{}{
			doc.Header.DocumentNumber,
			doc.Header.Date,
			doc.Header.CounterpartyRef,
			reference(doc),
			string(doc.Status),
			doc.Header.Currency,
			roundAmount(doc.Totals.SubTotal),
			roundAmount(doc.Totals.TaxValue),
			roundAmount(doc.Totals.GrandTotal),
			strings.Join(doc.Route, " > "),
		}
		writeRow(file, registerSheet, row, values)
	}

	_ = file.SetColWidth(registerSheet, "A", "B", 16)
	_ = file.SetColWidth(registerSheet, "C", "D", 28)
	_ = file.SetColWidth(registerSheet, "E", "I", 16)
	_ = file.SetColWidth(registerSheet, "J", "J", 40)
}

func (g *Generator) writeLines(file *excelize.File, docs []model.Document) {
	headers := []string{"Number", "Line", "Item", "Description", "UOM", "Quantity", "Unit price", "Tax %", "Line total", "Ordered", "Remaining", "Location", "Batch"}
	writeHeaderRow(file, linesSheet, headers)

	row := 2
	for _, doc := range docs {
		for i, line := range doc.Lines {
			values := []interface{}{
				doc.Header.DocumentNumber,
				i + 1,
				line.Code,
				line.Description,
				line.UnitOfMeasure,
				line.Quantity,
				line.UnitPrice,
				line.TaxPercent,
				roundAmount(calc.LineTotal(doc.TaxMode, line)),
				line.Ordered,
				line.Remaining,
				line.Location,
				line.Batch,
			}
			writeRow(file, linesSheet, row, values)
			row++
		}
	}

	_ = file.SetColWidth(linesSheet, "A", "A", 16)
	_ = file.SetColWidth(linesSheet, "C", "D", 28)
	_ = file.SetColWidth(linesSheet, "E", "M", 12)
}

func writeHeaderRow(file *excelize.File, sheet string, headers []string) {
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = file.SetCellValue(sheet, cell, header)
	}
}

func writeRow(file *excelize.File, sheet string, row int, values []interface{}) {
	for i, value := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = file.SetCellValue(sheet, cell, value)
	}
}

func registerParty(kind model.DocumentKind) string {
	if kind == model.KindRequisition {
		return "Requester"
	}
	return "Supplier"
}

func reference(doc model.Document) string {
	switch doc.Kind {
	case model.KindRequisition:
		return doc.Header.Title
	case model.KindPurchaseOrder:
		return doc.Header.RequisitionRef
	default:
		return doc.Header.PurchaseOrderRef
	}
}

func roundAmount(value float64) float64 {
	rounded, _ := decimal.NewFromFloat(value).Round(2).Float64()
	return rounded
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}
