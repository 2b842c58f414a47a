package model

import (
	"time"

	"github.com/google/uuid"
)

type DocumentKind string

const (
	KindRequisition   DocumentKind = "REQUISITION"
	KindPurchaseOrder DocumentKind = "PURCHASE_ORDER"
	KindGoodsReceipt  DocumentKind = "GOODS_RECEIPT"
)

// StoreKey is the blob key holding every document of the kind.
func (k DocumentKind) StoreKey() string {
	switch k {
	case KindRequisition:
		return "mms_prs_v1"
	case KindPurchaseOrder:
		return "mms_pos_v1"
	case KindGoodsReceipt:
		return "mms_grns_v1"
	default:
		return ""
	}
}

func (k DocumentKind) NumberPrefix() string {
	switch k {
	case KindRequisition:
		return "PR"
	case KindPurchaseOrder:
		return "PO"
	case KindGoodsReceipt:
		return "GRN"
	default:
		return "DOC"
	}
}

// DefaultTaxMode: requisitions tax each line, orders and receipts tax the header.
func (k DocumentKind) DefaultTaxMode() TaxMode {
	if k == KindRequisition {
		return TaxModePerLine
	}
	return TaxModeHeader
}

// SubmittedStatus is the status a final (non-draft) submission lands in.
func (k DocumentKind) SubmittedStatus() DocumentStatus {
	switch k {
	case KindPurchaseOrder:
		return StatusPendingApproval
	case KindGoodsReceipt:
		return StatusPendingQC
	default:
		return StatusSubmitted
	}
}

// Slug is the kind's URL path segment and file name stem.
func (k DocumentKind) Slug() string {
	switch k {
	case KindRequisition:
		return "requisitions"
	case KindPurchaseOrder:
		return "purchase-orders"
	case KindGoodsReceipt:
		return "goods-receipts"
	default:
		return ""
	}
}

// KindFromSlug is the inverse of Slug.
func KindFromSlug(slug string) (DocumentKind, bool) {
	for _, k := range []DocumentKind{KindRequisition, KindPurchaseOrder, KindGoodsReceipt} {
		if k.Slug() == slug {
			return k, true
		}
	}
	return "", false
}

// Label is the human readable kind name.
func (k DocumentKind) Label() string {
	switch k {
	case KindRequisition:
		return "Purchase Requisition"
	case KindPurchaseOrder:
		return "Purchase Order"
	case KindGoodsReceipt:
		return "Goods Receipt Note"
	default:
		return "Document"
	}
}

func (k DocumentKind) Valid() bool {
	return k.StoreKey() != ""
}

type TaxMode string

const (
	// TaxModeHeader applies one tax percentage to the document subtotal.
	TaxModeHeader TaxMode = "HEADER"
	// TaxModePerLine applies each line's own tax percentage.
	TaxModePerLine TaxMode = "PER_LINE"
)

type DocumentStatus string

const (
	StatusDraft             DocumentStatus = "Draft"
	StatusSubmitted         DocumentStatus = "Submitted"
	StatusPendingApproval   DocumentStatus = "Pending Approval"
	StatusPendingQC         DocumentStatus = "Pending QC"
	StatusApproved          DocumentStatus = "Approved"
	StatusPartiallyReceived DocumentStatus = "Partially Received"
	StatusReceived          DocumentStatus = "Received"
	StatusRejected          DocumentStatus = "Rejected"
	StatusCancelled         DocumentStatus = "Cancelled"
)

type LineItem struct {
	Code          string  `json:"code"`
	Description   string  `json:"description"`
	UnitOfMeasure string  `json:"uom"`
	Quantity      float64 `json:"quantity"`
	UnitPrice     float64 `json:"unit_price"`
	TaxPercent    float64 `json:"tax_percent"`
	// Goods receipt only: ordered quantity and what is still open on the order.
	Ordered   float64 `json:"ordered,omitempty"`
	Remaining float64 `json:"remaining,omitempty"`
	Location  string  `json:"location,omitempty"`
	Batch     string  `json:"batch,omitempty"`
	// Position of the line on the originating purchase order, 1-based.
	SourceLine int `json:"source_line,omitempty"`
}

type Header struct {
	DocumentNumber       string   `json:"document_number"`
	Date                 string   `json:"date"`
	DueDate              string   `json:"due_date,omitempty"`
	CounterpartyRef      string   `json:"counterparty_ref"`
	Currency             string   `json:"currency,omitempty"`
	Freight              float64  `json:"freight"`
	TaxPercent           float64  `json:"tax_percent"`
	Discount             float64  `json:"discount"`
	ToleranceRulePercent float64  `json:"tolerance_rule_percent,omitempty"`
	Title                string   `json:"title,omitempty"`
	Justification        string   `json:"justification,omitempty"`
	Department           string   `json:"department,omitempty"`
	BudgetCode           string   `json:"budget_code,omitempty"`
	Priority             string   `json:"priority,omitempty"`
	QuoteRefs            []string `json:"quote_refs,omitempty"`
	PaymentTerms         string   `json:"payment_terms,omitempty"`
	Incoterms            string   `json:"incoterms,omitempty"`
	ShipTo               string   `json:"ship_to,omitempty"`
	RequisitionRef       string   `json:"requisition_ref,omitempty"`
	PurchaseOrderRef     string   `json:"purchase_order_ref,omitempty"`
	Warehouse            string   `json:"warehouse,omitempty"`
	DeliveryNote         string   `json:"delivery_note,omitempty"`
	Transporter          string   `json:"transporter,omitempty"`
	Notes                string   `json:"notes,omitempty"`
}

type Totals struct {
	SubTotal   float64 `json:"sub_total"`
	TaxValue   float64 `json:"tax_value"`
	GrandTotal float64 `json:"grand_total"`
}

type HistoryEntry struct {
	At     time.Time `json:"at"`
	By     string    `json:"by"`
	Action string    `json:"action"`
	Note   string    `json:"note,omitempty"`
}

type Document struct {
	ID        uuid.UUID      `json:"id"`
	Kind      DocumentKind   `json:"kind"`
	Status    DocumentStatus `json:"status"`
	TaxMode   TaxMode        `json:"tax_mode"`
	Header    Header         `json:"header"`
	Lines     []LineItem     `json:"lines"`
	Totals    Totals         `json:"totals"`
	Route     []string       `json:"route,omitempty"`
	History   []HistoryEntry `json:"history,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Clone returns a copy that shares no slices with d.
func (d Document) Clone() Document {
	out := d
	out.Lines = append([]LineItem(nil), d.Lines...)
	out.Route = append([]string(nil), d.Route...)
	out.History = append([]HistoryEntry(nil), d.History...)
	out.Header.QuoteRefs = append([]string(nil), d.Header.QuoteRefs...)
	return out
}
