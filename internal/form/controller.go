// Package form holds the editable state of one document being entered and
// turns it into a stored document on submit.
package form

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/mms-documents/internal/calc"
	"github.com/nurpe/mms-documents/internal/model"
	"github.com/nurpe/mms-documents/internal/numbering"
	"github.com/nurpe/mms-documents/internal/policy"
	"github.com/nurpe/mms-documents/internal/repository"
)

var ErrValidation = errors.New("validation failed")

// ValidationOutcome is returned by Submit when the document cannot be
// stored as is. Blocking findings must be fixed; warnings only need
// confirmation.
type ValidationOutcome struct {
	Blocking          []model.Violation `json:"errors"`
	Warnings          []model.Violation `json:"warnings"`
	NeedsConfirmation bool              `json:"needs_confirmation"`
}

func (o *ValidationOutcome) Error() string {
	if len(o.Blocking) > 0 {
		return fmt.Sprintf("%s: %s", ErrValidation, strings.Join(messages(o.Blocking), "; "))
	}
	return fmt.Sprintf("%s: confirmation required: %s", ErrValidation, strings.Join(messages(o.Warnings), "; "))
}

func (o *ValidationOutcome) Unwrap() error {
	return ErrValidation
}

func messages(vs []model.Violation) []string {
	out := make([]string, 0, len(vs))
	for _, v := range vs {
		out = append(out, v.Message)
	}
	return out
}

// Limits are the policy thresholds that do not live in the store.
type Limits struct {
	QuoteThreshold float64
	MinQuotes      int
}

type Deps struct {
	Docs      repository.DocumentRepository
	Budgets   repository.BudgetRepository
	Evaluator *policy.Evaluator
	Limits    Limits
	Now       func() time.Time
	// Defaults for new documents.
	TolerancePercent float64
	Currency         string
}

type SubmitOptions struct {
	Draft           bool
	ConfirmWarnings bool
	Actor           string
}

type Controller struct {
	kind    model.DocumentKind
	taxMode model.TaxMode
	header  model.Header
	lines   []model.LineItem
	deps    Deps
}

// New starts an empty document of kind with its default header and, except
// for goods receipts whose lines come from an order, one blank line.
func New(kind model.DocumentKind, deps Deps) (*Controller, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: document kind %q", ErrUnknownField, kind)
	}
	if deps.Docs == nil || deps.Evaluator == nil {
		return nil, errors.New("form: document repository and evaluator are required")
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	c := &Controller{
		kind:    kind,
		taxMode: kind.DefaultTaxMode(),
		deps:    deps,
	}
	c.header = c.defaultHeader()
	if kind != model.KindGoodsReceipt {
		c.AddLine()
	}
	return c, nil
}

func (c *Controller) defaultHeader() model.Header {
	now := c.deps.Now()
	today := now.Format("2006-01-02")
	h := model.Header{
		Date:     today,
		Currency: c.deps.Currency,
	}
	switch c.kind {
	case model.KindRequisition:
		h.DueDate = now.AddDate(0, 0, 7).Format("2006-01-02")
		h.Priority = "Normal"
	case model.KindPurchaseOrder:
		h.PaymentTerms = "Net 30"
		h.Incoterms = "FOB"
	case model.KindGoodsReceipt:
		h.ToleranceRulePercent = c.deps.TolerancePercent
	}
	return h
}

func (c *Controller) Kind() model.DocumentKind { return c.kind }

func (c *Controller) TaxMode() model.TaxMode { return c.taxMode }

// AddLine appends {uom: EA, qty: 1, price: 0} and returns its index.
func (c *Controller) AddLine() int {
	c.lines = append(c.lines, model.LineItem{UnitOfMeasure: "EA", Quantity: 1})
	return len(c.lines) - 1
}

func (c *Controller) UpdateLine(index int, edits ...LineEdit) error {
	if index < 0 || index >= len(c.lines) {
		return fmt.Errorf("%w: %d", ErrLineIndex, index)
	}
	for _, edit := range edits {
		edit(&c.lines[index])
	}
	return nil
}

func (c *Controller) RemoveLine(index int) error {
	if index < 0 || index >= len(c.lines) {
		return fmt.Errorf("%w: %d", ErrLineIndex, index)
	}
	c.lines = append(c.lines[:index], c.lines[index+1:]...)
	return nil
}

// SetLines replaces every line.
func (c *Controller) SetLines(lines []model.LineItem) {
	c.lines = append([]model.LineItem(nil), lines...)
}

func (c *Controller) UpdateHeaderField(field HeaderField, value string) error {
	set, ok := headerSetters[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return set(&c.header, value)
}

// SetHeader applies a typed edit to the header.
func (c *Controller) SetHeader(edit func(h *model.Header)) {
	edit(&c.header)
}

func (c *Controller) Header() model.Header {
	h := c.header
	h.QuoteRefs = append([]string(nil), c.header.QuoteRefs...)
	return h
}

func (c *Controller) Lines() []model.LineItem {
	return append([]model.LineItem(nil), c.lines...)
}

func (c *Controller) Totals() model.Totals {
	return calc.Compute(c.taxMode, c.lines, calc.AdjustmentsFrom(c.header))
}

// Evaluate runs the kind's rules against the current state.
func (c *Controller) Evaluate(ctx context.Context) (policy.Evaluation, error) {
	pctx, err := c.policyContext(ctx)
	if err != nil {
		return policy.Evaluation{}, err
	}
	return c.deps.Evaluator.Evaluate(policy.Input{
		Kind:    c.kind,
		Header:  c.Header(),
		Lines:   c.Lines(),
		Totals:  c.Totals(),
		Context: pctx,
	}), nil
}

func (c *Controller) policyContext(ctx context.Context) (policy.Context, error) {
	pctx := policy.Context{
		BudgetLimit:    math.MaxFloat64,
		QuoteThreshold: c.deps.Limits.QuoteThreshold,
		MinQuotes:      c.deps.Limits.MinQuotes,
	}
	for _, ref := range c.header.QuoteRefs {
		if strings.TrimSpace(ref) != "" {
			pctx.QuotesAttached++
		}
	}
	if c.deps.Budgets != nil {
		budget, err := c.deps.Budgets.Get(ctx)
		if err != nil {
			return policy.Context{}, err
		}
		pctx.BudgetLimit = budget.Limit
		pctx.BudgetUsed = budget.Used
	}
	return pctx, nil
}

// Submit stores the document at the head of its kind's list. Drafts skip
// blocking rules; tolerance warnings always need ConfirmWarnings.
func (c *Controller) Submit(ctx context.Context, opts SubmitOptions) (*model.Document, error) {
	eval, err := c.Evaluate(ctx)
	if err != nil {
		return nil, err
	}
	if !opts.Draft && eval.Blocked() {
		return nil, &ValidationOutcome{Blocking: eval.Violations, Warnings: eval.Warnings}
	}
	if eval.ToleranceBreached && !opts.ConfirmWarnings {
		return nil, &ValidationOutcome{
			Blocking:          []model.Violation{},
			Warnings:          eval.Warnings,
			NeedsConfirmation: true,
		}
	}

	key := c.kind.StoreKey()
	existing, err := c.deps.Docs.Load(ctx, key)
	if err != nil {
		return nil, err
	}

	now := c.deps.Now()
	number, err := numbering.Claim(c.kind, c.header.DocumentNumber, opts.Draft, now, existing)
	if err != nil {
		return nil, err
	}

	header := c.Header()
	header.DocumentNumber = number
	if header.Date == "" {
		header.Date = now.Format("2006-01-02")
	}
	if header.Currency == "" {
		header.Currency = c.deps.Currency
	}

	status := c.kind.SubmittedStatus()
	action := "Submitted"
	if opts.Draft {
		status = model.StatusDraft
		action = "Saved as draft"
	}
	history := []model.HistoryEntry{{At: now, By: actorOrAnonymous(opts.Actor), Action: action}}
	if eval.ToleranceBreached {
		history = append(history, model.HistoryEntry{
			At:     now,
			By:     actorOrAnonymous(opts.Actor),
			Action: "Tolerance confirmed",
			Note:   strings.Join(messages(eval.Warnings), "; "),
		})
	}

	doc := model.Document{
		ID:        uuid.New(),
		Kind:      c.kind,
		Status:    status,
		TaxMode:   c.taxMode,
		Header:    header,
		Lines:     c.Lines(),
		Totals:    c.Totals(),
		Route:     eval.Route,
		History:   history,
		CreatedAt: now,
		UpdatedAt: now,
	}

	list := make([]model.Document, 0, len(existing)+1)
	list = append(list, doc)
	list = append(list, existing...)
	if err := c.deps.Docs.Save(ctx, key, list); err != nil {
		return nil, err
	}

	out := doc.Clone()
	return &out, nil
}

func actorOrAnonymous(actor string) string {
	if strings.TrimSpace(actor) == "" {
		return model.Principal{}.Actor()
	}
	return actor
}
