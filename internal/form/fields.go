package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/nurpe/mms-documents/internal/model"
)

var (
	ErrLineIndex    = errors.New("line index out of range")
	ErrUnknownField = errors.New("unknown field")
	ErrInvalidValue = errors.New("invalid value")
)

// HeaderField names an editable header field by its JSON name.
type HeaderField string

const (
	FieldDocumentNumber   HeaderField = "document_number"
	FieldDate             HeaderField = "date"
	FieldDueDate          HeaderField = "due_date"
	FieldCounterpartyRef  HeaderField = "counterparty_ref"
	FieldCurrency         HeaderField = "currency"
	FieldFreight          HeaderField = "freight"
	FieldTaxPercent       HeaderField = "tax_percent"
	FieldDiscount         HeaderField = "discount"
	FieldTolerancePercent HeaderField = "tolerance_rule_percent"
	FieldTitle            HeaderField = "title"
	FieldJustification    HeaderField = "justification"
	FieldDepartment       HeaderField = "department"
	FieldBudgetCode       HeaderField = "budget_code"
	FieldPriority         HeaderField = "priority"
	FieldQuoteRefs        HeaderField = "quote_refs"
	FieldPaymentTerms     HeaderField = "payment_terms"
	FieldIncoterms        HeaderField = "incoterms"
	FieldShipTo           HeaderField = "ship_to"
	FieldRequisitionRef   HeaderField = "requisition_ref"
	FieldPurchaseOrderRef HeaderField = "purchase_order_ref"
	FieldWarehouse        HeaderField = "warehouse"
	FieldDeliveryNote     HeaderField = "delivery_note"
	FieldTransporter      HeaderField = "transporter"
	FieldNotes            HeaderField = "notes"
)

type headerSetter func(h *model.Header, raw string) error

func text(set func(h *model.Header, v string)) headerSetter {
	return func(h *model.Header, raw string) error {
		set(h, strings.TrimSpace(raw))
		return nil
	}
}

func number(field HeaderField, set func(h *model.Header, v float64)) headerSetter {
	return func(h *model.Header, raw string) error {
		v, err := toNumber(raw)
		if err != nil {
			return fmt.Errorf("%w: %s=%q", ErrInvalidValue, field, raw)
		}
		set(h, v)
		return nil
	}
}

var headerSetters = map[HeaderField]headerSetter{
	FieldDocumentNumber:   text(func(h *model.Header, v string) { h.DocumentNumber = v }),
	FieldDate:             text(func(h *model.Header, v string) { h.Date = v }),
	FieldDueDate:          text(func(h *model.Header, v string) { h.DueDate = v }),
	FieldCounterpartyRef:  text(func(h *model.Header, v string) { h.CounterpartyRef = v }),
	FieldCurrency:         text(func(h *model.Header, v string) { h.Currency = strings.ToUpper(v) }),
	FieldFreight:          number(FieldFreight, func(h *model.Header, v float64) { h.Freight = v }),
	FieldTaxPercent:       number(FieldTaxPercent, func(h *model.Header, v float64) { h.TaxPercent = v }),
	FieldDiscount:         number(FieldDiscount, func(h *model.Header, v float64) { h.Discount = v }),
	FieldTolerancePercent: number(FieldTolerancePercent, func(h *model.Header, v float64) { h.ToleranceRulePercent = v }),
	FieldTitle:            text(func(h *model.Header, v string) { h.Title = v }),
	FieldJustification:    text(func(h *model.Header, v string) { h.Justification = v }),
	FieldDepartment:       text(func(h *model.Header, v string) { h.Department = v }),
	FieldBudgetCode:       text(func(h *model.Header, v string) { h.BudgetCode = v }),
	FieldPriority:         text(func(h *model.Header, v string) { h.Priority = v }),
	FieldQuoteRefs:        text(func(h *model.Header, v string) { h.QuoteRefs = splitList(v) }),
	FieldPaymentTerms:     text(func(h *model.Header, v string) { h.PaymentTerms = v }),
	FieldIncoterms:        text(func(h *model.Header, v string) { h.Incoterms = v }),
	FieldShipTo:           text(func(h *model.Header, v string) { h.ShipTo = v }),
	FieldRequisitionRef:   text(func(h *model.Header, v string) { h.RequisitionRef = v }),
	FieldPurchaseOrderRef: text(func(h *model.Header, v string) { h.PurchaseOrderRef = v }),
	FieldWarehouse:        text(func(h *model.Header, v string) { h.Warehouse = v }),
	FieldDeliveryNote:     text(func(h *model.Header, v string) { h.DeliveryNote = v }),
	FieldTransporter:      text(func(h *model.Header, v string) { h.Transporter = v }),
	FieldNotes:            text(func(h *model.Header, v string) { h.Notes = v }),
}

// LineEdit changes one line in place.
type LineEdit func(line *model.LineItem)

func SetCode(v string) LineEdit {
	return func(l *model.LineItem) { l.Code = strings.TrimSpace(v) }
}

func SetDescription(v string) LineEdit {
	return func(l *model.LineItem) { l.Description = v }
}

func SetUnitOfMeasure(v string) LineEdit {
	return func(l *model.LineItem) { l.UnitOfMeasure = strings.TrimSpace(v) }
}

func SetQuantity(v float64) LineEdit {
	return func(l *model.LineItem) { l.Quantity = v }
}

func SetUnitPrice(v float64) LineEdit {
	return func(l *model.LineItem) { l.UnitPrice = v }
}

func SetTaxPercent(v float64) LineEdit {
	return func(l *model.LineItem) { l.TaxPercent = v }
}

func SetLocation(v string) LineEdit {
	return func(l *model.LineItem) { l.Location = strings.TrimSpace(v) }
}

func SetBatch(v string) LineEdit {
	return func(l *model.LineItem) { l.Batch = strings.TrimSpace(v) }
}

// LineField names a line column for edits that arrive as raw text.
type LineField string

const (
	LineCode          LineField = "code"
	LineDescription   LineField = "description"
	LineUnitOfMeasure LineField = "uom"
	LineQuantity      LineField = "quantity"
	LineUnitPrice     LineField = "unit_price"
	LineTaxPercent    LineField = "tax_percent"
	LineLocation      LineField = "location"
	LineBatch         LineField = "batch"
)

// ParseLineEdit converts a raw column value into a LineEdit. Numeric
// columns treat blank input as zero.
func ParseLineEdit(field LineField, raw string) (LineEdit, error) {
	switch field {
	case LineCode:
		return SetCode(raw), nil
	case LineDescription:
		return SetDescription(raw), nil
	case LineUnitOfMeasure:
		return SetUnitOfMeasure(raw), nil
	case LineLocation:
		return SetLocation(raw), nil
	case LineBatch:
		return SetBatch(raw), nil
	}

	var set func(float64) LineEdit
	switch field {
	case LineQuantity:
		set = SetQuantity
	case LineUnitPrice:
		set = SetUnitPrice
	case LineTaxPercent:
		set = SetTaxPercent
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	v, err := toNumber(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", ErrInvalidValue, field, raw)
	}
	return set(v), nil
}

func toNumber(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	return cast.ToFloat64E(raw)
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
