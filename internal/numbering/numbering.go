// Package numbering assigns document numbers. Numbers are monotonic per
// prefix and checked against the documents already stored.
package numbering

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nurpe/mms-documents/internal/model"
)

var ErrDuplicateNumber = errors.New("document number already exists")

const draftScope = "DR"

// Prefix builds "PO-2026" for finals and "PO-DR" for drafts.
func Prefix(kind model.DocumentKind, draft bool, now time.Time) string {
	scope := strconv.Itoa(now.Year())
	if draft {
		scope = draftScope
	}
	return kind.NumberPrefix() + "-" + scope
}

// Next returns prefix-NNNN, one above the highest sequence already used
// under prefix in existing.
func Next(prefix string, existing []model.Document) string {
	highest := 0
	for _, doc := range existing {
		if seq, ok := sequence(prefix, doc.Header.DocumentNumber); ok && seq > highest {
			highest = seq
		}
	}
	candidate := format(prefix, highest+1)
	for taken(candidate, existing) {
		highest++
		candidate = format(prefix, highest+1)
	}
	return candidate
}

// Claim validates a user supplied number or generates the next one.
func Claim(kind model.DocumentKind, requested string, draft bool, now time.Time, existing []model.Document) (string, error) {
	requested = strings.TrimSpace(requested)
	if requested == "" {
		return Next(Prefix(kind, draft, now), existing), nil
	}
	if taken(requested, existing) {
		return "", fmt.Errorf("%w: %s", ErrDuplicateNumber, requested)
	}
	return requested, nil
}

func format(prefix string, seq int) string {
	return fmt.Sprintf("%s-%04d", prefix, seq)
}

func sequence(prefix, number string) (int, bool) {
	rest, ok := strings.CutPrefix(number, prefix+"-")
	if !ok {
		return 0, false
	}
	seq, err := strconv.Atoi(rest)
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}

func taken(number string, existing []model.Document) bool {
	for _, doc := range existing {
		if strings.EqualFold(doc.Header.DocumentNumber, number) {
			return true
		}
	}
	return false
}
