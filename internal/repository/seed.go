package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/mms-documents/internal/calc"
	"github.com/nurpe/mms-documents/internal/model"
)

// Seed stores demo requisitions, purchase orders and receipts for every kind
// whose list is still empty, and a budget whose used amount is the sum of
// approved requisitions.
func Seed(ctx context.Context, docs DocumentRepository, budgets BudgetRepository, budgetLimit float64, now time.Time) error {
	seeds := map[model.DocumentKind][]model.Document{
		model.KindRequisition:   seedRequisitions(now),
		model.KindPurchaseOrder: seedPurchaseOrders(now),
		model.KindGoodsReceipt:  seedReceipts(now),
	}

	for _, kind := range []model.DocumentKind{model.KindRequisition, model.KindPurchaseOrder, model.KindGoodsReceipt} {
		existing, err := docs.Load(ctx, kind.StoreKey())
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			continue
		}
		if err := docs.Save(ctx, kind.StoreKey(), seeds[kind]); err != nil {
			return err
		}
		if kind != model.KindRequisition {
			continue
		}
		used := 0.0
		for _, doc := range seeds[kind] {
			if doc.Status == model.StatusApproved {
				used += doc.Totals.GrandTotal
			}
		}
		if err := budgets.Save(ctx, model.Budget{Limit: budgetLimit, Used: used}); err != nil {
			return err
		}
	}
	return nil
}

func seeded(kind model.DocumentKind, status model.DocumentStatus, header model.Header, lines []model.LineItem, now time.Time) model.Document {
	doc := model.Document{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    status,
		TaxMode:   kind.DefaultTaxMode(),
		Header:    header,
		Lines:     lines,
		History:   []model.HistoryEntry{{At: now, By: "system", Action: "Seeded"}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	doc.Totals = calc.ForDocument(doc)
	return doc
}

func seedRequisitions(now time.Time) []model.Document {
	type sample struct {
		number, title, dept, requester string
		amount                         float64
		status                         model.DocumentStatus
	}
	samples := []sample{
		{"PR-2025-0001", "25 Developer Laptops", "IT", "shailendra.chauhan", 1800000, model.StatusSubmitted},
		{"PR-2025-0002", "Office Chairs Replacement", "Operations", "ram.k", 420000, model.StatusSubmitted},
		{"PR-2025-0003", "Annual Cloud Credits", "Finance", "meera.s", 750000, model.StatusApproved},
		{"PR-2025-0004", "Lab Instruments", "R&D", "ajay.p", 1200000, model.StatusSubmitted},
	}
	out := make([]model.Document, 0, len(samples))
	for _, s := range samples {
		out = append(out, seeded(model.KindRequisition, s.status, model.Header{
			DocumentNumber:  s.number,
			Date:            now.Format("2006-01-02"),
			DueDate:         now.Format("2006-01-02"),
			CounterpartyRef: s.requester,
			Currency:        "INR",
			Title:           s.title,
			Justification:   "-",
			Department:      s.dept,
			BudgetCode:      "OPS-OPEX-2025",
			Priority:        "Normal",
		}, []model.LineItem{{Code: "AUTO", Description: s.title, UnitOfMeasure: "Nos", Quantity: 1, UnitPrice: s.amount}}, now))
	}
	return out
}

func seedPurchaseOrders(now time.Time) []model.Document {
	return []model.Document{
		seeded(model.KindPurchaseOrder, model.StatusPartiallyReceived, model.Header{
			DocumentNumber:  "PO-2025-0145",
			Date:            "2025-10-28",
			CounterpartyRef: "Global Steel Ltd.",
			Currency:        "USD",
			PaymentTerms:    "Net 60",
			Incoterms:       "FOB",
			ShipTo:          "Main Warehouse, Jaipur",
			Notes:           "Deliver in 2 lots",
			Freight:         250,
		}, []model.LineItem{
			{Code: "HR-101", Description: "Hot Rolled Coil", UnitOfMeasure: "MT", Quantity: 10, UnitPrice: 700},
			{Code: "ZINC-PL", Description: "Zinc plating chemical", UnitOfMeasure: "KG", Quantity: 20, UnitPrice: 10},
		}, now),
		seeded(model.KindPurchaseOrder, model.StatusPartiallyReceived, model.Header{
			DocumentNumber:  "PO-2025-0146",
			Date:            "2025-10-29",
			CounterpartyRef: "Techtronics Inc.",
			Currency:        "USD",
			PaymentTerms:    "Net 30",
			Incoterms:       "CIF",
			ShipTo:          "Electronics WH, Pune",
			Notes:           "Fragile - handle with care",
			Freight:         80,
		}, []model.LineItem{
			{Code: "IC-7788", Description: "Control IC", UnitOfMeasure: "EA", Quantity: 400, UnitPrice: 7.8},
		}, now),
		seeded(model.KindPurchaseOrder, model.StatusPendingApproval, model.Header{
			DocumentNumber:  "PO-2025-0147",
			Date:            "2025-10-29",
			CounterpartyRef: "National Polymers",
			Currency:        "INR",
			PaymentTerms:    "Net 30",
			Incoterms:       "EXW",
			ShipTo:          "Main Warehouse, Jaipur",
			Notes:           "Urgent",
			TaxPercent:      18,
		}, []model.LineItem{
			{Code: "PP-GRAN", Description: "PP Granules", UnitOfMeasure: "KG", Quantity: 1000, UnitPrice: 15.254},
		}, now),
	}
}

func seedReceipts(now time.Time) []model.Document {
	return []model.Document{
		seeded(model.KindGoodsReceipt, model.StatusReceived, model.Header{
			DocumentNumber:       "GRN-2025-0064",
			Date:                 "2025-10-31",
			CounterpartyRef:      "Techtronics Inc.",
			Currency:             "USD",
			PurchaseOrderRef:     "PO-2025-0146",
			Warehouse:            "E-WH-B2",
			ToleranceRulePercent: 5,
		}, []model.LineItem{
			{Code: "IC-7788", Description: "Control IC", UnitOfMeasure: "EA", Quantity: 200, UnitPrice: 7.8, Ordered: 400, Remaining: 400, Location: "E-WH-B2", SourceLine: 1},
		}, now),
		seeded(model.KindGoodsReceipt, model.StatusReceived, model.Header{
			DocumentNumber:       "GRN-2025-0061",
			Date:                 "2025-10-30",
			CounterpartyRef:      "Global Steel Ltd.",
			Currency:             "USD",
			PurchaseOrderRef:     "PO-2025-0145",
			Warehouse:            "WH-A1",
			ToleranceRulePercent: 5,
		}, []model.LineItem{
			{Code: "HR-101", Description: "Hot Rolled Coil", UnitOfMeasure: "MT", Quantity: 5, UnitPrice: 700, Ordered: 10, Remaining: 10, Location: "WH-A1", SourceLine: 1},
		}, now),
	}
}
