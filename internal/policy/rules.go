package policy

import (
	"fmt"
	"strings"

	"github.com/nurpe/mms-documents/internal/model"
)

// Rule is one independent predicate over a document and its computed totals.
type Rule interface {
	Name() string
	// Blocking rules reject a final submission; the others only warn.
	Blocking() bool
	Check(in Input) []model.Violation
}

type RequiredField struct {
	Field string
	Label string
	Value func(h model.Header) string
}

// MandatoryRule requires header fields and at least one line. With
// ValidateLines set, every line also needs a code and a positive quantity.
type MandatoryRule struct {
	Fields        []RequiredField
	ValidateLines bool
}

func (MandatoryRule) Name() string   { return "mandatory" }
func (MandatoryRule) Blocking() bool { return true }

func (r MandatoryRule) Check(in Input) []model.Violation {
	var out []model.Violation
	for _, f := range r.Fields {
		if strings.TrimSpace(f.Value(in.Header)) == "" {
			out = append(out, model.Violation{
				Kind:    model.ViolationMissingField,
				Field:   f.Field,
				Message: f.Label + " is required",
			})
		}
	}
	if len(in.Lines) == 0 {
		out = append(out, model.Violation{
			Kind:    model.ViolationEmptyLines,
			Field:   "lines",
			Message: "At least one line item is required",
		})
		return out
	}
	if !r.ValidateLines {
		return out
	}
	for i, line := range in.Lines {
		if strings.TrimSpace(line.Code) == "" {
			out = append(out, model.Violation{
				Kind:    model.ViolationInvalidLine,
				Field:   "code",
				Line:    i + 1,
				Message: fmt.Sprintf("Line %d: item code is required", i+1),
			})
		}
		if line.Quantity <= 0 {
			out = append(out, model.Violation{
				Kind:    model.ViolationInvalidLine,
				Field:   "quantity",
				Line:    i + 1,
				Message: fmt.Sprintf("Line %d: quantity must be greater than zero", i+1),
			})
		}
	}
	return out
}

// BudgetRule flags a document that would push used budget over the limit.
type BudgetRule struct{}

func (BudgetRule) Name() string   { return "budget" }
func (BudgetRule) Blocking() bool { return true }

func (BudgetRule) Check(in Input) []model.Violation {
	if in.Context.BudgetUsed+in.Totals.GrandTotal > in.Context.BudgetLimit {
		return []model.Violation{{
			Kind:    model.ViolationBudgetExceeded,
			Message: "Budget exceeded",
		}}
	}
	return nil
}

// QuoteRule requires MinQuotes attached quotes once the grand total reaches
// QuoteThreshold.
type QuoteRule struct{}

func (QuoteRule) Name() string   { return "quotes" }
func (QuoteRule) Blocking() bool { return true }

func (QuoteRule) Check(in Input) []model.Violation {
	if in.Totals.GrandTotal >= in.Context.QuoteThreshold && in.Context.QuotesAttached < in.Context.MinQuotes {
		return []model.Violation{{
			Kind:    model.ViolationQuotesRequired,
			Field:   "quote_refs",
			Message: fmt.Sprintf("Attach at least %d quotes (policy)", in.Context.MinQuotes),
		}}
	}
	return nil
}

// ToleranceRule warns about receipt lines above remaining*(1+tolerance/100).
type ToleranceRule struct{}

func (ToleranceRule) Name() string   { return "tolerance" }
func (ToleranceRule) Blocking() bool { return false }

func (ToleranceRule) Check(in Input) []model.Violation {
	var out []model.Violation
	for i, line := range in.Lines {
		if Breaches(line.Quantity, line.Remaining, in.Header.ToleranceRulePercent) {
			out = append(out, model.Violation{
				Kind:  model.ViolationToleranceBreached,
				Field: "quantity",
				Line:  i + 1,
				Message: fmt.Sprintf("Line %d: receiving %g exceeds remaining %g plus %g%% tolerance",
					i+1, line.Quantity, line.Remaining, in.Header.ToleranceRulePercent),
			})
		}
	}
	return out
}

// Breaches reports whether received is over remaining plus tolerancePercent.
func Breaches(received, remaining, tolerancePercent float64) bool {
	return received > remaining*(1+tolerancePercent/100)
}
