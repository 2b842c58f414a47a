package calc

import (
	"testing"

	"github.com/nurpe/mms-documents/internal/model"
)

func TestComputeHeaderMode(t *testing.T) {
	tests := []struct {
		name  string
		lines []model.LineItem
		adj   Adjustments
		want  model.Totals
	}{
		{
			name: "purchase order with freight",
			lines: []model.LineItem{
				{Code: "HR-101", Quantity: 10, UnitPrice: 700},
				{Code: "ZINC-PL", Quantity: 20, UnitPrice: 10},
			},
			adj:  Adjustments{Freight: 250},
			want: model.Totals{SubTotal: 7200, TaxValue: 0, GrandTotal: 7450},
		},
		{
			name:  "header tax and discount",
			lines: []model.LineItem{{Quantity: 4, UnitPrice: 250}},
			adj:   Adjustments{Freight: 50, TaxPercent: 18, Discount: 30},
			want:  model.Totals{SubTotal: 1000, TaxValue: 180, GrandTotal: 1200},
		},
		{
			name:  "line tax is ignored in header mode",
			lines: []model.LineItem{{Quantity: 1, UnitPrice: 100, TaxPercent: 18}},
			want:  model.Totals{SubTotal: 100, GrandTotal: 100},
		},
		{
			name: "no lines leaves freight minus discount",
			adj:  Adjustments{Freight: 100, Discount: 250},
			want: model.Totals{GrandTotal: -150},
		},
		{
			name:  "negative quantity is not rejected",
			lines: []model.LineItem{{Quantity: -2, UnitPrice: 10}},
			want:  model.Totals{SubTotal: -20, GrandTotal: -20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(model.TaxModeHeader, tt.lines, tt.adj)
			if got != tt.want {
				t.Fatalf("Compute() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeHeaderModeGrandTotalIdentity(t *testing.T) {
	lines := []model.LineItem{
		{Quantity: 3, UnitPrice: 19.99},
		{Quantity: 1000, UnitPrice: 15.254},
		{Quantity: 0.5, UnitPrice: 7.8},
	}
	adj := Adjustments{Freight: 80.15, TaxPercent: 18, Discount: 12.5}

	got := Compute(model.TaxModeHeader, lines, adj)
	want := got.SubTotal + got.TaxValue + adj.Freight - adj.Discount
	if got.GrandTotal != want {
		t.Fatalf("grand total %v != subtotal+tax+freight-discount %v", got.GrandTotal, want)
	}
}

func TestComputePerLineMode(t *testing.T) {
	lines := []model.LineItem{
		{Code: "LT-14-16GB", Quantity: 1, UnitPrice: 78000, TaxPercent: 18},
		{Code: "CHR-ERG", Quantity: 2, UnitPrice: 12000, TaxPercent: 0},
	}

	got := Compute(model.TaxModePerLine, lines, Adjustments{TaxPercent: 50})
	if got.SubTotal != 102000 {
		t.Fatalf("SubTotal = %v, want 102000", got.SubTotal)
	}
	if got.TaxValue != 14040 {
		t.Fatalf("TaxValue = %v, want 14040", got.TaxValue)
	}
	want := LineTotal(model.TaxModePerLine, lines[0]) + LineTotal(model.TaxModePerLine, lines[1])
	if got.GrandTotal != want {
		t.Fatalf("GrandTotal = %v, want sum of line totals %v", got.GrandTotal, want)
	}
}

func TestComputeSubTotalIsOrderIndependent(t *testing.T) {
	lines := []model.LineItem{
		{Quantity: 2, UnitPrice: 8},
		{Quantity: 1, UnitPrice: 0.5},
		{Quantity: 4, UnitPrice: 16},
	}
	reversed := []model.LineItem{lines[2], lines[1], lines[0]}

	for _, mode := range []model.TaxMode{model.TaxModeHeader, model.TaxModePerLine} {
		a := Compute(mode, lines, Adjustments{})
		b := Compute(mode, reversed, Adjustments{})
		if a.SubTotal != b.SubTotal || a.SubTotal != 80.5 {
			t.Fatalf("%s: subtotals %v and %v, want 80.5", mode, a.SubTotal, b.SubTotal)
		}
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	lines := []model.LineItem{{Quantity: 7, UnitPrice: 13.3, TaxPercent: 5}}
	adj := Adjustments{Freight: 1.1, TaxPercent: 12, Discount: 0.4}

	for _, mode := range []model.TaxMode{model.TaxModeHeader, model.TaxModePerLine} {
		first := Compute(mode, lines, adj)
		second := Compute(mode, lines, adj)
		if first != second {
			t.Fatalf("%s: %+v then %+v", mode, first, second)
		}
	}
}

func TestComputeZeroLines(t *testing.T) {
	for _, mode := range []model.TaxMode{model.TaxModeHeader, model.TaxModePerLine} {
		got := Compute(mode, nil, Adjustments{TaxPercent: 18})
		if got.SubTotal != 0 || got.GrandTotal != 0 {
			t.Fatalf("%s: %+v, want zero totals", mode, got)
		}
	}
}

func TestLineTotal(t *testing.T) {
	line := model.LineItem{Quantity: 2, UnitPrice: 50, TaxPercent: 25}
	if got := LineTotal(model.TaxModeHeader, line); got != 100 {
		t.Fatalf("header mode line total = %v, want 100", got)
	}
	if got := LineTotal(model.TaxModePerLine, line); got != 125 {
		t.Fatalf("per-line mode line total = %v, want 125", got)
	}
}

func TestForDocumentFallsBackToKindMode(t *testing.T) {
	doc := model.Document{
		Kind:  model.KindRequisition,
		Lines: []model.LineItem{{Quantity: 1, UnitPrice: 100, TaxPercent: 18}},
	}
	got := ForDocument(doc)
	if got.TaxValue != 18 {
		t.Fatalf("TaxValue = %v, want 18 from per-line mode", got.TaxValue)
	}
}
