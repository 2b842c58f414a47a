package excel

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/nurpe/mms-documents/internal/model"
)

func TestExport(t *testing.T) {
	docs := []model.Document{
		{
			Kind:    model.KindPurchaseOrder,
			Status:  model.StatusPendingApproval,
			TaxMode: model.TaxModeHeader,
			Header:  model.Header{DocumentNumber: "PO-2025-0147", CounterpartyRef: "National Polymers", Currency: "INR", TaxPercent: 18},
			Lines:   []model.LineItem{{Code: "PP-GRAN", Quantity: 1000, UnitPrice: 15.254}},
			Totals:  model.Totals{SubTotal: 15254, TaxValue: 2745.72, GrandTotal: 17999.72},
		},
		{
			Kind:    model.KindPurchaseOrder,
			Status:  model.StatusPartiallyReceived,
			TaxMode: model.TaxModeHeader,
			Header:  model.Header{DocumentNumber: "PO-2025-0145", CounterpartyRef: "Global Steel Ltd.", Currency: "USD"},
			Lines: []model.LineItem{
				{Code: "HR-101", Quantity: 10, UnitPrice: 700},
				{Code: "ZINC-PL", Quantity: 20, UnitPrice: 10},
			},
			Totals: model.Totals{SubTotal: 7200, GrandTotal: 7450},
		},
	}

	content, err := NewGenerator().Export(model.KindPurchaseOrder, docs, time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	file, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer file.Close()

	if got := file.GetSheetList(); len(got) != 3 || got[0] != summarySheet {
		t.Fatalf("sheets = %v", got)
	}
	if v, _ := file.GetCellValue(summarySheet, "B3"); v != "2" {
		t.Fatalf("document count = %q", v)
	}
	if v, _ := file.GetCellValue(registerSheet, "A3"); v != "PO-2025-0145" {
		t.Fatalf("register A3 = %q", v)
	}
	if v, _ := file.GetCellValue(registerSheet, "I3"); v != "7450" {
		t.Fatalf("register I3 = %q", v)
	}
	rows, err := file.GetRows(linesSheet)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("line rows = %d", len(rows))
	}
}
