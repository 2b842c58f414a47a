// Package policy classifies documents against static business rules and
// derives their approval route. Evaluation never mutates its inputs.
package policy

import "github.com/nurpe/mms-documents/internal/model"

// Context is read-only state owned by the caller.
type Context struct {
	BudgetUsed     float64
	BudgetLimit    float64
	QuoteThreshold float64
	MinQuotes      int
	QuotesAttached int
}

// Input is one document as seen by the rules.
type Input struct {
	Kind    model.DocumentKind
	Header  model.Header
	Lines   []model.LineItem
	Totals  model.Totals
	Context Context
}

// Evaluation splits findings into blocking violations and warnings.
type Evaluation struct {
	Violations        []model.Violation `json:"violations"`
	Warnings          []model.Violation `json:"warnings"`
	ToleranceBreached bool              `json:"tolerance_breached"`
	BreachedLines     []int             `json:"breached_lines,omitempty"`
	Route             []string          `json:"route"`
}

// Blocked reports whether a final submit must be refused.
func (e Evaluation) Blocked() bool {
	return len(e.Violations) > 0
}

// Messages lists the blocking violation messages in rule order.
func (e Evaluation) Messages() []string {
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		out = append(out, v.Message)
	}
	return out
}

// Evaluator holds the rule set per kind and the approval route table.
type Evaluator struct {
	rules map[model.DocumentKind][]Rule
	route RouteTable
}

// NewEvaluator uses DefaultRules with the given route table.
func NewEvaluator(route RouteTable) *Evaluator {
	return &Evaluator{
		rules: DefaultRules(),
		route: route,
	}
}

// DefaultRules returns the rule set of every document kind.
func DefaultRules() map[model.DocumentKind][]Rule {
	return map[model.DocumentKind][]Rule{
		model.KindRequisition: {
			MandatoryRule{Fields: []RequiredField{
				{Field: "title", Label: "PR Title", Value: func(h model.Header) string { return h.Title }},
				{Field: "justification", Label: "Business Justification", Value: func(h model.Header) string { return h.Justification }},
				{Field: "counterparty_ref", Label: "Requester", Value: func(h model.Header) string { return h.CounterpartyRef }},
			}},
			BudgetRule{},
			QuoteRule{},
		},
		model.KindPurchaseOrder: {
			MandatoryRule{
				Fields: []RequiredField{
					{Field: "counterparty_ref", Label: "Supplier", Value: func(h model.Header) string { return h.CounterpartyRef }},
				},
				ValidateLines: true,
			},
		},
		model.KindGoodsReceipt: {
			MandatoryRule{Fields: []RequiredField{
				{Field: "purchase_order_ref", Label: "Purchase Order", Value: func(h model.Header) string { return h.PurchaseOrderRef }},
			}},
			ToleranceRule{},
		},
	}
}

// SetRules replaces the rule set of kind.
func (e *Evaluator) SetRules(kind model.DocumentKind, rules ...Rule) {
	e.rules[kind] = append([]Rule(nil), rules...)
}

func (e *Evaluator) RouteTable() RouteTable {
	return e.route
}

// Route returns the approver stages for amount.
func (e *Evaluator) Route(amount float64) []string {
	return e.route.Route(amount)
}

// Evaluate runs every rule of the document kind and reports all findings,
// not just the first.
func (e *Evaluator) Evaluate(in Input) Evaluation {
	result := Evaluation{
		Violations: []model.Violation{},
		Warnings:   []model.Violation{},
		Route:      e.route.Route(in.Totals.GrandTotal),
	}
	for _, rule := range e.rules[in.Kind] {
		found := rule.Check(in)
		if rule.Blocking() {
			result.Violations = append(result.Violations, found...)
			continue
		}
		result.Warnings = append(result.Warnings, found...)
	}
	for _, w := range result.Warnings {
		if w.Kind == model.ViolationToleranceBreached {
			result.ToleranceBreached = true
			result.BreachedLines = append(result.BreachedLines, w.Line)
		}
	}
	return result
}
