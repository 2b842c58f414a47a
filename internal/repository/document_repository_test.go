package repository

import (
	"context"
	"testing"
	"time"

	"github.com/nurpe/mms-documents/internal/model"
)

func TestDocumentRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(NewMemoryStore())

	empty, err := repo.Load(ctx, "mms_pos_v1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("empty store should load an empty list, got %#v", empty)
	}

	doc := model.Document{
		Kind:   model.KindPurchaseOrder,
		Status: model.StatusPendingApproval,
		Header: model.Header{DocumentNumber: "PO-2026-0001", CounterpartyRef: "Global Steel Ltd."},
		Lines:  []model.LineItem{{Code: "HR-101", Quantity: 10, UnitPrice: 700}},
		Totals: model.Totals{SubTotal: 7000, GrandTotal: 7000},
	}
	if err := repo.Save(ctx, "mms_pos_v1", []model.Document{doc}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := repo.Load(ctx, "mms_pos_v1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Header.DocumentNumber != "PO-2026-0001" || loaded[0].Lines[0].UnitPrice != 700 {
		t.Fatalf("loaded = %+v", loaded)
	}

	loaded[0].Lines[0].Quantity = 999
	again, _ := repo.Load(ctx, "mms_pos_v1")
	if again[0].Lines[0].Quantity != 10 {
		t.Fatal("mutating a loaded list must not change the stored snapshot")
	}
}

func TestBudgetRepositoryDefaults(t *testing.T) {
	ctx := context.Background()
	repo := NewBudgetRepository(NewMemoryStore(), 5000000)

	budget, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if budget.Limit != 5000000 || budget.Used != 0 {
		t.Fatalf("budget = %+v", budget)
	}

	if err := repo.Save(ctx, model.Budget{Limit: 10, Used: 4}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	budget, _ = repo.Get(ctx)
	if budget.Remaining() != 6 {
		t.Fatalf("remaining = %v", budget.Remaining())
	}
}

func TestSeed(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	docs := NewDocumentRepository(store)
	budgets := NewBudgetRepository(store, 1)
	now := time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

	if err := Seed(ctx, docs, budgets, 5000000, now); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	pos, _ := docs.Load(ctx, model.KindPurchaseOrder.StoreKey())
	if len(pos) != 3 {
		t.Fatalf("purchase orders = %d", len(pos))
	}
	if pos[0].Header.DocumentNumber != "PO-2025-0145" || pos[0].Totals.SubTotal != 7200 || pos[0].Totals.GrandTotal != 7450 {
		t.Fatalf("PO-2025-0145 totals = %+v", pos[0].Totals)
	}

	budget, _ := budgets.Get(ctx)
	if budget.Limit != 5000000 || budget.Used != 750000 {
		t.Fatalf("budget = %+v", budget)
	}

	// A second run keeps what is already stored.
	pos[0].Status = model.StatusApproved
	_ = docs.Save(ctx, model.KindPurchaseOrder.StoreKey(), pos)
	if err := Seed(ctx, docs, budgets, 5000000, now); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	again, _ := docs.Load(ctx, model.KindPurchaseOrder.StoreKey())
	if again[0].Status != model.StatusApproved {
		t.Fatal("seed overwrote stored purchase orders")
	}
}
