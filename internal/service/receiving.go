package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/nurpe/mms-documents/internal/model"
)

const defaultReceivingLocation = "QC-HOLD"

// Receivable lists what is still open on a purchase order, one goods
// receipt line per order line with the remaining quantity preset.
func (s *DocumentService) Receivable(ctx context.Context, poNumber string) ([]model.LineItem, error) {
	po, err := s.purchaseOrder(ctx, poNumber)
	if err != nil {
		return nil, err
	}
	received, err := s.receivedQuantities(ctx, po.Header.DocumentNumber)
	if err != nil {
		return nil, err
	}

	lines := make([]model.LineItem, 0, len(po.Lines))
	for i, line := range po.Lines {
		remaining := line.Quantity - received[i+1]
		if remaining <= 0 {
			continue
		}
		lines = append(lines, model.LineItem{
			Code:          line.Code,
			Description:   line.Description,
			UnitOfMeasure: line.UnitOfMeasure,
			Quantity:      remaining,
			UnitPrice:     line.UnitPrice,
			Ordered:       line.Quantity,
			Remaining:     remaining,
			Location:      defaultReceivingLocation,
			SourceLine:    i + 1,
		})
	}
	return lines, nil
}

func (s *DocumentService) purchaseOrder(ctx context.Context, number string) (*model.Document, error) {
	if strings.TrimSpace(number) == "" {
		return nil, fmt.Errorf("%w: purchase order number is required", ErrInvalidInput)
	}
	return s.Get(ctx, model.KindPurchaseOrder, number)
}

// receivedQuantities sums received quantity per order line over every
// non-draft receipt of poNumber.
func (s *DocumentService) receivedQuantities(ctx context.Context, poNumber string) (map[int]float64, error) {
	grns, err := s.docs.Load(ctx, model.KindGoodsReceipt.StoreKey())
	if err != nil {
		return nil, err
	}
	received := map[int]float64{}
	for _, grn := range grns {
		if grn.Status == model.StatusDraft || !strings.EqualFold(grn.Header.PurchaseOrderRef, poNumber) {
			continue
		}
		for _, line := range grn.Lines {
			received[line.SourceLine] += line.Quantity
		}
	}
	return received, nil
}

// withReceivable overwrites ordered and remaining quantities of receipt
// lines with the stored order's figures, and fills supplier and currency.
// Payloads without an order reference are left to the mandatory rule.
func (s *DocumentService) withReceivable(ctx context.Context, payload Payload) (Payload, error) {
	ref := strings.TrimSpace(payload.Header.PurchaseOrderRef)
	if ref == "" {
		return payload, nil
	}
	po, err := s.purchaseOrder(ctx, ref)
	if err != nil {
		return payload, err
	}
	received, err := s.receivedQuantities(ctx, po.Header.DocumentNumber)
	if err != nil {
		return payload, err
	}

	payload.Header.PurchaseOrderRef = po.Header.DocumentNumber
	fillBlank(&payload.Header.CounterpartyRef, po.Header.CounterpartyRef)
	fillBlank(&payload.Header.Currency, po.Header.Currency)

	lines := make([]model.LineItem, len(payload.Lines))
	for i, line := range payload.Lines {
		if line.SourceLine < 1 || line.SourceLine > len(po.Lines) {
			return payload, fmt.Errorf("%w: line %d does not reference a line of %s", ErrInvalidInput, i+1, po.Header.DocumentNumber)
		}
		ordered := po.Lines[line.SourceLine-1]
		line.Ordered = ordered.Quantity
		line.Remaining = ordered.Quantity - received[line.SourceLine]
		fillBlank(&line.Code, ordered.Code)
		fillBlank(&line.Description, ordered.Description)
		fillBlank(&line.UnitOfMeasure, ordered.UnitOfMeasure)
		if line.UnitPrice == 0 {
			line.UnitPrice = ordered.UnitPrice
		}
		lines[i] = line
	}
	payload.Lines = lines
	return payload, nil
}

// markReceived sets the order to Received once every line is covered by
// non-draft receipts, Partially Received otherwise. Callers hold s.mu.
func (s *DocumentService) markReceived(ctx context.Context, poNumber, grnNumber, actor string) error {
	pos, err := s.docs.Load(ctx, model.KindPurchaseOrder.StoreKey())
	if err != nil {
		return err
	}
	idx := indexOf(pos, poNumber)
	if idx < 0 {
		return fmt.Errorf("%w: purchase order %s", ErrNotFound, poNumber)
	}
	received, err := s.receivedQuantities(ctx, pos[idx].Header.DocumentNumber)
	if err != nil {
		return err
	}

	po := &pos[idx]
	status := model.StatusReceived
	for i, line := range po.Lines {
		if received[i+1] < line.Quantity {
			status = model.StatusPartiallyReceived
			break
		}
	}

	now := s.now()
	po.Status = status
	po.UpdatedAt = now
	po.History = append(po.History, model.HistoryEntry{
		At:     now,
		By:     actorOrAnonymous(actor),
		Action: string(status),
		Note:   grnNumber,
	})
	return s.docs.Save(ctx, model.KindPurchaseOrder.StoreKey(), pos)
}
