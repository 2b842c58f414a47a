package policy

import (
	"errors"
	"reflect"
	"testing"

	"github.com/nurpe/mms-documents/internal/model"
)

func requisitionInput(grand float64) Input {
	return Input{
		Kind: model.KindRequisition,
		Header: model.Header{
			Title:           "25 Developer Laptops",
			Justification:   "Team growth",
			CounterpartyRef: "shailendra.chauhan",
		},
		Lines:  []model.LineItem{{Code: "LT-14-16GB", Quantity: 1, UnitPrice: grand}},
		Totals: model.Totals{SubTotal: grand, GrandTotal: grand},
		Context: Context{
			BudgetLimit:    5000000,
			QuoteThreshold: 100000,
			MinQuotes:      2,
		},
	}
}

func kinds(vs []model.Violation) []model.ViolationKind {
	out := make([]model.ViolationKind, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Kind)
	}
	return out
}

func TestBudgetRule(t *testing.T) {
	tests := []struct {
		name    string
		used    float64
		limit   float64
		grand   float64
		wantHit bool
	}{
		{"over the ceiling", 400000, 500000, 150000, true},
		{"exactly at the ceiling", 400000, 500000, 100000, false},
		{"well within", 0, 500000, 1000, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{
				Totals:  model.Totals{GrandTotal: tt.grand},
				Context: Context{BudgetUsed: tt.used, BudgetLimit: tt.limit},
			}
			got := BudgetRule{}.Check(in)
			if (len(got) > 0) != tt.wantHit {
				t.Fatalf("violations = %v, want hit %v", got, tt.wantHit)
			}
		})
	}
}

func TestQuoteRule(t *testing.T) {
	tests := []struct {
		name    string
		grand   float64
		quotes  int
		wantHit bool
	}{
		{"one quote above threshold", 120000, 1, true},
		{"two quotes above threshold", 120000, 2, false},
		{"at threshold counts", 100000, 0, true},
		{"below threshold", 99999.99, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Input{
				Totals:  model.Totals{GrandTotal: tt.grand},
				Context: Context{QuoteThreshold: 100000, MinQuotes: 2, QuotesAttached: tt.quotes},
			}
			got := QuoteRule{}.Check(in)
			if (len(got) > 0) != tt.wantHit {
				t.Fatalf("violations = %v, want hit %v", got, tt.wantHit)
			}
		})
	}
}

func TestBreaches(t *testing.T) {
	if Breaches(104, 100, 5) {
		t.Fatal("104 against 100 with 5% tolerance must not breach")
	}
	if Breaches(105, 100, 5) {
		t.Fatal("105 against 100 with 5% tolerance must not breach")
	}
	if !Breaches(106, 100, 5) {
		t.Fatal("106 against 100 with 5% tolerance must breach")
	}
	if !Breaches(1, 0, 5) {
		t.Fatal("receiving against nothing remaining must breach")
	}
}

func TestEvaluateCollectsEveryViolation(t *testing.T) {
	in := requisitionInput(600000)
	in.Header = model.Header{}
	in.Context.BudgetUsed = 4900000

	got := NewEvaluator(DefaultRouteTable()).Evaluate(in)

	want := []model.ViolationKind{
		model.ViolationMissingField,
		model.ViolationMissingField,
		model.ViolationMissingField,
		model.ViolationBudgetExceeded,
		model.ViolationQuotesRequired,
	}
	if !reflect.DeepEqual(kinds(got.Violations), want) {
		t.Fatalf("violations = %v, want %v", kinds(got.Violations), want)
	}
	if !got.Blocked() {
		t.Fatal("expected evaluation to be blocked")
	}
	if len(got.Messages()) != len(want) {
		t.Fatalf("messages = %v", got.Messages())
	}
}

func TestEvaluateCleanRequisition(t *testing.T) {
	in := requisitionInput(50000)
	got := NewEvaluator(DefaultRouteTable()).Evaluate(in)
	if got.Blocked() || got.ToleranceBreached {
		t.Fatalf("unexpected findings: %+v", got)
	}
	if !reflect.DeepEqual(got.Route, []string{"Dept Head"}) {
		t.Fatalf("route = %v", got.Route)
	}
}

func TestEvaluateEmptyLines(t *testing.T) {
	in := requisitionInput(0)
	in.Lines = nil
	got := NewEvaluator(DefaultRouteTable()).Evaluate(in)
	if !reflect.DeepEqual(kinds(got.Violations), []model.ViolationKind{model.ViolationEmptyLines}) {
		t.Fatalf("violations = %v", got.Violations)
	}
}

func TestEvaluatePurchaseOrderLines(t *testing.T) {
	in := Input{
		Kind:   model.KindPurchaseOrder,
		Header: model.Header{CounterpartyRef: "Global Steel Ltd."},
		Lines: []model.LineItem{
			{Code: "HR-101", Quantity: 10, UnitPrice: 700},
			{Code: "", Quantity: 0, UnitPrice: 10},
		},
	}
	got := NewEvaluator(DefaultRouteTable()).Evaluate(in)
	if len(got.Violations) != 2 {
		t.Fatalf("violations = %+v, want two for line 2", got.Violations)
	}
	for _, v := range got.Violations {
		if v.Line != 2 || v.Kind != model.ViolationInvalidLine {
			t.Fatalf("unexpected violation %+v", v)
		}
	}
}

func TestEvaluateGoodsReceiptToleranceIsSoft(t *testing.T) {
	in := Input{
		Kind: model.KindGoodsReceipt,
		Header: model.Header{
			PurchaseOrderRef:     "PO-2025-0145",
			ToleranceRulePercent: 5,
		},
		Lines: []model.LineItem{
			{Code: "HR-101", Quantity: 104, Remaining: 100},
			{Code: "ZINC-PL", Quantity: 106, Remaining: 100},
		},
	}
	got := NewEvaluator(DefaultRouteTable()).Evaluate(in)
	if got.Blocked() {
		t.Fatalf("tolerance must not block: %+v", got.Violations)
	}
	if !got.ToleranceBreached {
		t.Fatal("expected tolerance breach")
	}
	if !reflect.DeepEqual(got.BreachedLines, []int{2}) {
		t.Fatalf("breached lines = %v, want [2]", got.BreachedLines)
	}
}

func TestEvaluateDoesNotMutateInput(t *testing.T) {
	in := requisitionInput(120000)
	in.Context.BudgetUsed = 10
	before := in.Context
	NewEvaluator(DefaultRouteTable()).Evaluate(in)
	if in.Context != before {
		t.Fatalf("context changed from %+v to %+v", before, in.Context)
	}
}

func TestSetRules(t *testing.T) {
	e := NewEvaluator(DefaultRouteTable())
	e.SetRules(model.KindRequisition, BudgetRule{})

	in := requisitionInput(120000)
	in.Header = model.Header{}
	got := e.Evaluate(in)
	if got.Blocked() {
		t.Fatalf("only the budget rule should run: %+v", got.Violations)
	}
}

func TestRoute(t *testing.T) {
	table := DefaultRouteTable()
	tests := []struct {
		amount float64
		want   []string
	}{
		{0, []string{"Dept Head"}},
		{100000, []string{"Dept Head", "Procurement"}},
		{600000, []string{"Dept Head", "Procurement", "Finance"}},
		{1000000, []string{"Dept Head", "Procurement", "Finance", "C-Level"}},
	}
	for _, tt := range tests {
		if got := table.Route(tt.amount); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Route(%v) = %v, want %v", tt.amount, got, tt.want)
		}
	}
}

func TestNewRouteTable(t *testing.T) {
	if _, err := NewRouteTable("", nil); !errors.Is(err, ErrInvalidRouteTable) {
		t.Fatalf("empty base: err = %v", err)
	}
	_, err := NewRouteTable("Dept Head", []Stage{{500000, "Finance"}, {100000, "Procurement"}})
	if !errors.Is(err, ErrInvalidRouteTable) {
		t.Fatalf("descending thresholds: err = %v", err)
	}
	table, err := NewRouteTable("Lead", []Stage{{10, "A"}, {20, "B"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(table.Route(15), []string{"Lead", "A"}) {
		t.Fatalf("route = %v", table.Route(15))
	}
}

func TestParseStages(t *testing.T) {
	got, err := ParseStages(" 100000:Procurement , 500000:Finance,,1000000:C-Level ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Stage{{100000, "Procurement"}, {500000, "Finance"}, {1000000, "C-Level"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseStages = %+v, want %+v", got, want)
	}

	if _, err := ParseStages("Finance"); !errors.Is(err, ErrInvalidRouteTable) {
		t.Fatalf("missing colon: err = %v", err)
	}
	if _, err := ParseStages("lots:Finance"); !errors.Is(err, ErrInvalidRouteTable) {
		t.Fatalf("bad number: err = %v", err)
	}
}
