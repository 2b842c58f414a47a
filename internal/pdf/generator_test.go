package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/nurpe/mms-documents/internal/model"
)

func TestRender(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	docs := []model.Document{
		{
			Kind:    model.KindPurchaseOrder,
			Status:  model.StatusPendingApproval,
			TaxMode: model.TaxModeHeader,
			Header:  model.Header{DocumentNumber: "PO-2026-0001", Currency: "USD", CounterpartyRef: "Global Steel Ltd.", Freight: 250},
			Lines:   []model.LineItem{{Code: "HR-101", Description: "Hot Rolled Coil", Quantity: 10, UnitPrice: 700}},
			Totals:  model.Totals{SubTotal: 7000, GrandTotal: 7250},
			Route:   []string{"Dept Head"},
			History: []model.HistoryEntry{{At: now, By: "ram.k", Action: "Submitted"}},
		},
		{
			Kind:    model.KindRequisition,
			Status:  model.StatusDraft,
			TaxMode: model.TaxModePerLine,
			Header:  model.Header{DocumentNumber: "PR-DR-0001", Currency: "INR", Title: "Café chairs"},
		},
		{
			Kind:    model.KindGoodsReceipt,
			Status:  model.StatusPendingQC,
			TaxMode: model.TaxModeHeader,
			Header:  model.Header{DocumentNumber: "GRN-2026-0001", PurchaseOrderRef: "PO-2025-0145", ToleranceRulePercent: 5},
			Lines:   []model.LineItem{{Code: "HR-101", Quantity: 5, Ordered: 10, Remaining: 5, UnitPrice: 700}},
		},
	}
	g := NewGenerator()
	for _, doc := range docs {
		t.Run(doc.Header.DocumentNumber, func(t *testing.T) {
			out, err := g.Render(doc)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if !bytes.HasPrefix(out, []byte("%PDF-")) {
				t.Fatalf("output is not a pdf: %q", out[:min(len(out), 8)])
			}
		})
	}
}
