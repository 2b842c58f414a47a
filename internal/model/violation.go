package model

type ViolationKind string

const (
	ViolationMissingField      ViolationKind = "MISSING_FIELD"
	ViolationEmptyLines        ViolationKind = "EMPTY_LINES"
	ViolationInvalidLine       ViolationKind = "INVALID_LINE"
	ViolationBudgetExceeded    ViolationKind = "BUDGET_EXCEEDED"
	ViolationQuotesRequired    ViolationKind = "QUOTES_REQUIRED"
	ViolationToleranceBreached ViolationKind = "TOLERANCE_BREACHED"
)

type Violation struct {
	Kind    ViolationKind `json:"kind"`
	Field   string        `json:"field,omitempty"`
	Line    int           `json:"line,omitempty"` // 1-based, zero when the violation is document-wide
	Message string        `json:"message"`
}

type Budget struct {
	Limit float64 `json:"limit"`
	Used  float64 `json:"used"`
}

func (b Budget) Remaining() float64 {
	return b.Limit - b.Used
}
