// Package format renders amounts and status categories for presentation.
package format

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

func CurrencySymbol(currency string) string {
	switch strings.ToUpper(strings.TrimSpace(currency)) {
	case "INR":
		return "₹"
	case "EUR":
		return "€"
	case "SGD":
		return "S$"
	default:
		return "$"
	}
}

// Money renders amount as symbol plus a thousands-grouped number with exactly
// two decimals, for example "$15,450.00".
func Money(amount float64, currency string) string {
	return CurrencySymbol(currency) + Grouped(amount)
}

// Grouped renders amount with thousands separators and two decimals.
func Grouped(amount float64) string {
	rounded, _ := decimal.NewFromFloat(amount).Round(2).Float64()
	return printer.Sprint(number.Decimal(rounded,
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	))
}

// Amount renders value rounded to precision decimals without grouping.
func Amount(value float64, precision int32) string {
	return decimal.NewFromFloat(value).StringFixed(precision)
}

type Category string

const (
	CategoryOK   Category = "ok"
	CategoryWarn Category = "warn"
	CategoryBad  Category = "bad"
	CategoryInfo Category = "blue"
)

var statusCategories = map[string]Category{
	"Active":             CategoryOK,
	"Approved":           CategoryOK,
	"Received":           CategoryOK,
	"Matched":            CategoryOK,
	"Success":            CategoryOK,
	"Trusted":            CategoryOK,
	"Valid":              CategoryOK,
	"Pending":            CategoryWarn,
	"Partially Received": CategoryWarn,
	"Draft":              CategoryWarn,
	"Pending Approval":   CategoryWarn,
	"Expiring":           CategoryWarn,
	"Review":             CategoryWarn,
	"Unverified":         CategoryWarn,
	"Blocked (SoD)":      CategoryBad,
	"Rejected":           CategoryBad,
	"On Hold":            CategoryBad,
	"Cancelled":          CategoryBad,
	"Inactive":           CategoryBad,
}

// StatusCategory maps a status label to its visual category. Unknown
// statuses are informational.
func StatusCategory(status string) Category {
	if c, ok := statusCategories[status]; ok {
		return c
	}
	return CategoryInfo
}
