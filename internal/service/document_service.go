package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/nurpe/mms-documents/internal/calc"
	"github.com/nurpe/mms-documents/internal/config"
	"github.com/nurpe/mms-documents/internal/form"
	"github.com/nurpe/mms-documents/internal/format"
	"github.com/nurpe/mms-documents/internal/model"
	"github.com/nurpe/mms-documents/internal/policy"
	"github.com/nurpe/mms-documents/internal/repository"
)

type PDFRenderer interface {
	Render(doc model.Document) ([]byte, error)
}

type ExcelExporter interface {
	Export(kind model.DocumentKind, docs []model.Document, generatedAt time.Time) ([]byte, error)
}

// DocumentService serializes every read-modify-write of the stored lists
// through mu; lists are replaced whole, so writers must not interleave.
type DocumentService struct {
	mu        sync.Mutex
	docs      repository.DocumentRepository
	budgets   repository.BudgetRepository
	evaluator *policy.Evaluator
	pdf       PDFRenderer
	excel     ExcelExporter
	limits    form.Limits
	tolerance float64
	currency  string
	now       func() time.Time
}

// Payload is a complete document as entered by the user. Tolerance, when
// set, replaces Header.ToleranceRulePercent and may be zero; decoding JSON
// sets it whenever the header carries tolerance_rule_percent.
type Payload struct {
	Header    model.Header     `json:"header"`
	Lines     []model.LineItem `json:"lines"`
	Tolerance *float64         `json:"-"`
}

func (p *Payload) UnmarshalJSON(data []byte) error {
	var raw struct {
		Header json.RawMessage  `json:"header"`
		Lines  []model.LineItem `json:"lines"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := Payload{Lines: raw.Lines}
	if len(raw.Header) > 0 && string(raw.Header) != "null" {
		if err := json.Unmarshal(raw.Header, &out.Header); err != nil {
			return err
		}
		var given struct {
			Tolerance *float64 `json:"tolerance_rule_percent"`
		}
		if err := json.Unmarshal(raw.Header, &given); err != nil {
			return err
		}
		out.Tolerance = given.Tolerance
	}
	*p = out
	return nil
}

type Filter struct {
	Status string
	Search string
}

type Preview struct {
	Totals     model.Totals      `json:"totals"`
	LineTotals []float64         `json:"line_totals"`
	Formatted  FormattedTotals   `json:"formatted"`
	Evaluation policy.Evaluation `json:"evaluation"`
}

type FormattedTotals struct {
	SubTotal   string `json:"sub_total"`
	TaxValue   string `json:"tax_value"`
	GrandTotal string `json:"grand_total"`
}

type FileResult struct {
	FileName string
	Content  []byte
}

func NewDocumentService(
	docs repository.DocumentRepository,
	budgets repository.BudgetRepository,
	evaluator *policy.Evaluator,
	pdf PDFRenderer,
	excel ExcelExporter,
	cfg *config.Config,
) *DocumentService {
	return &DocumentService{
		docs:      docs,
		budgets:   budgets,
		evaluator: evaluator,
		pdf:       pdf,
		excel:     excel,
		limits: form.Limits{
			QuoteThreshold: cfg.Policy.QuoteThreshold,
			MinQuotes:      cfg.Policy.MinQuotes,
		},
		tolerance: cfg.Documents.TolerancePercent,
		currency:  cfg.Documents.DefaultCurrency,
		now:       time.Now,
	}
}

func (s *DocumentService) controller(kind model.DocumentKind, payload Payload) (*form.Controller, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown document kind", ErrInvalidInput)
	}
	if payload.Tolerance != nil && *payload.Tolerance < 0 {
		return nil, fmt.Errorf("%w: tolerance must not be negative", ErrInvalidInput)
	}
	c, err := form.New(kind, form.Deps{
		Docs:             s.docs,
		Budgets:          s.budgets,
		Evaluator:        s.evaluator,
		Limits:           s.limits,
		Now:              s.now,
		TolerancePercent: s.tolerance,
		Currency:         s.currency,
	})
	if err != nil {
		return nil, err
	}
	c.SetHeader(func(h *model.Header) {
		defaults := *h
		*h = payload.Header
		h.Currency = strings.ToUpper(strings.TrimSpace(h.Currency))
		fillBlank(&h.Date, defaults.Date)
		fillBlank(&h.DueDate, defaults.DueDate)
		fillBlank(&h.Currency, defaults.Currency)
		fillBlank(&h.Priority, defaults.Priority)
		fillBlank(&h.PaymentTerms, defaults.PaymentTerms)
		fillBlank(&h.Incoterms, defaults.Incoterms)
		switch {
		case payload.Tolerance != nil:
			h.ToleranceRulePercent = *payload.Tolerance
		case h.ToleranceRulePercent == 0:
			h.ToleranceRulePercent = defaults.ToleranceRulePercent
		}
	})
	c.SetLines(payload.Lines)
	return c, nil
}

func fillBlank(field *string, value string) {
	if strings.TrimSpace(*field) == "" {
		*field = value
	}
}

// Preview computes totals and policy findings without storing anything.
func (s *DocumentService) Preview(ctx context.Context, kind model.DocumentKind, payload Payload) (*Preview, error) {
	if kind == model.KindGoodsReceipt {
		var err error
		if payload, err = s.withReceivable(ctx, payload); err != nil {
			return nil, err
		}
	}
	c, err := s.controller(kind, payload)
	if err != nil {
		return nil, err
	}
	eval, err := c.Evaluate(ctx)
	if err != nil {
		return nil, err
	}

	totals := c.Totals()
	currency := c.Header().Currency
	lines := c.Lines()
	lineTotals := make([]float64, 0, len(lines))
	for _, line := range lines {
		lineTotals = append(lineTotals, calc.LineTotal(c.TaxMode(), line))
	}
	return &Preview{
		Totals:     totals,
		LineTotals: lineTotals,
		Formatted: FormattedTotals{
			SubTotal:   format.Money(totals.SubTotal, currency),
			TaxValue:   format.Money(totals.TaxValue, currency),
			GrandTotal: format.Money(totals.GrandTotal, currency),
		},
		Evaluation: eval,
	}, nil
}

// Submit stores a new document. A final goods receipt also moves its
// purchase order to partially or fully received; if that fails the receipt
// list is written back as it was.
func (s *DocumentService) Submit(ctx context.Context, kind model.DocumentKind, payload Payload, opts form.SubmitOptions) (*model.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if kind == model.KindGoodsReceipt {
		var err error
		if payload, err = s.withReceivable(ctx, payload); err != nil {
			return nil, err
		}
	}
	c, err := s.controller(kind, payload)
	if err != nil {
		return nil, err
	}
	receiving := kind == model.KindGoodsReceipt && !opts.Draft
	var before []model.Document
	if receiving {
		if before, err = s.docs.Load(ctx, kind.StoreKey()); err != nil {
			return nil, err
		}
	}
	doc, err := c.Submit(ctx, opts)
	if err != nil {
		return nil, err
	}
	if receiving {
		if err := s.markReceived(ctx, doc.Header.PurchaseOrderRef, doc.Header.DocumentNumber, opts.Actor); err != nil {
			return nil, s.restore(ctx, kind.StoreKey(), before, err)
		}
	}
	return doc, nil
}

// restore writes back a list loaded before a multi-list update whose later
// write failed. The returned error always wraps cause.
func (s *DocumentService) restore(ctx context.Context, key string, docs []model.Document, cause error) error {
	if err := s.docs.Save(ctx, key, docs); err != nil {
		return fmt.Errorf("%w (restore %s: %v)", cause, key, err)
	}
	return cause
}

func (s *DocumentService) List(ctx context.Context, kind model.DocumentKind, filter Filter) ([]model.Document, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown document kind", ErrInvalidInput)
	}
	docs, err := s.docs.Load(ctx, kind.StoreKey())
	if err != nil {
		return nil, err
	}

	status := strings.TrimSpace(filter.Status)
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]model.Document, 0, len(docs))
	for _, doc := range docs {
		if status != "" && !strings.EqualFold(string(doc.Status), status) {
			continue
		}
		if search != "" && !matches(doc, search) {
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

func matches(doc model.Document, needle string) bool {
	haystack := []string{
		doc.Header.DocumentNumber,
		doc.Header.CounterpartyRef,
		doc.Header.Title,
		doc.Header.Department,
		doc.Header.PurchaseOrderRef,
		doc.Header.RequisitionRef,
		doc.Header.Warehouse,
	}
	for _, value := range haystack {
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}

func (s *DocumentService) Get(ctx context.Context, kind model.DocumentKind, number string) (*model.Document, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown document kind", ErrInvalidInput)
	}
	docs, err := s.docs.Load(ctx, kind.StoreKey())
	if err != nil {
		return nil, err
	}
	idx := indexOf(docs, number)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind.Label(), number)
	}
	doc := docs[idx]
	return &doc, nil
}

func indexOf(docs []model.Document, number string) int {
	number = strings.TrimSpace(number)
	for i, doc := range docs {
		if strings.EqualFold(doc.Header.DocumentNumber, number) {
			return i
		}
	}
	return -1
}

// Approve moves a submitted requisition or pending purchase order to
// Approved. An approved requisition consumes budget; the document and the
// budget change together or not at all.
func (s *DocumentService) Approve(ctx context.Context, kind model.DocumentKind, number, actor string) (*model.Document, error) {
	if kind != model.KindRequisition && kind != model.KindPurchaseOrder {
		return nil, fmt.Errorf("%w: only requisitions and purchase orders are approved", ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.docs.Load(ctx, kind.StoreKey())
	if err != nil {
		return nil, err
	}
	idx := indexOf(docs, number)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind.Label(), number)
	}
	doc := &docs[idx]
	if doc.Status != kind.SubmittedStatus() {
		return nil, fmt.Errorf("%w: %s is %s", ErrInvalidState, doc.Header.DocumentNumber, doc.Status)
	}

	var budget model.Budget
	if kind == model.KindRequisition {
		if budget, err = s.budgets.Get(ctx); err != nil {
			return nil, err
		}
	}

	original := doc.Clone()
	now := s.now()
	doc.Status = model.StatusApproved
	doc.UpdatedAt = now
	doc.History = append(doc.History, model.HistoryEntry{
		At:     now,
		By:     actorOrAnonymous(actor),
		Action: "Approved",
		Note:   strings.Join(doc.Route, " > "),
	})

	if err := s.docs.Save(ctx, kind.StoreKey(), docs); err != nil {
		return nil, err
	}
	if kind == model.KindRequisition {
		budget.Used += doc.Totals.GrandTotal
		if err := s.budgets.Save(ctx, budget); err != nil {
			docs[idx] = original
			return nil, s.restore(ctx, kind.StoreKey(), docs, err)
		}
	}
	out := doc.Clone()
	return &out, nil
}

func (s *DocumentService) Budget(ctx context.Context) (model.Budget, error) {
	return s.budgets.Get(ctx)
}

func (s *DocumentService) ApprovalRoute(amount float64) []string {
	return s.evaluator.Route(amount)
}

func actorOrAnonymous(actor string) string {
	if strings.TrimSpace(actor) == "" {
		return model.Principal{}.Actor()
	}
	return actor
}
