package repository

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/nurpe/mms-documents/internal/model"
)

const budgetKey = "mms_budget_v1"

// DocumentRepository keeps each document kind as one list under its key.
// Load returns an independent copy; Save replaces the whole list.
type DocumentRepository interface {
	Load(ctx context.Context, key string) ([]model.Document, error)
	Save(ctx context.Context, key string, docs []model.Document) error
}

type BudgetRepository interface {
	Get(ctx context.Context) (model.Budget, error)
	Save(ctx context.Context, budget model.Budget) error
}

type BlobDocumentRepository struct {
	store BlobStore
}

var _ DocumentRepository = (*BlobDocumentRepository)(nil)

func NewDocumentRepository(store BlobStore) *BlobDocumentRepository {
	return &BlobDocumentRepository{store: store}
}

func (r *BlobDocumentRepository) Load(ctx context.Context, key string) ([]model.Document, error) {
	raw, ok, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return []model.Document{}, nil
	}
	var docs []model.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if docs == nil {
		docs = []model.Document{}
	}
	return docs, nil
}

func (r *BlobDocumentRepository) Save(ctx context.Context, key string, docs []model.Document) error {
	if docs == nil {
		docs = []model.Document{}
	}
	raw, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

type BlobBudgetRepository struct {
	store        BlobStore
	defaultLimit float64
}

var _ BudgetRepository = (*BlobBudgetRepository)(nil)

// NewBudgetRepository returns a budget with defaultLimit until one is saved.
func NewBudgetRepository(store BlobStore, defaultLimit float64) *BlobBudgetRepository {
	return &BlobBudgetRepository{store: store, defaultLimit: defaultLimit}
}

func (r *BlobBudgetRepository) Get(ctx context.Context) (model.Budget, error) {
	raw, ok, err := r.store.Get(ctx, budgetKey)
	if err != nil {
		return model.Budget{}, fmt.Errorf("load budget: %w", err)
	}
	if !ok {
		return model.Budget{Limit: r.defaultLimit}, nil
	}
	var budget model.Budget
	if err := json.Unmarshal(raw, &budget); err != nil {
		return model.Budget{}, fmt.Errorf("decode budget: %w", err)
	}
	return budget, nil
}

func (r *BlobBudgetRepository) Save(ctx context.Context, budget model.Budget) error {
	raw, err := json.Marshal(budget)
	if err != nil {
		return fmt.Errorf("encode budget: %w", err)
	}
	return r.store.Set(ctx, budgetKey, raw)
}
