package producemock

import (
	"context"

	"gorm.io/gorm"

	domain "agripledge-backend/internal/domain/produce"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	ResolveFn func(ctx context.Context, produceID string) (*domain.Produce, error)
	PledgeFn  func(ctx context.Context, produceID, loanID string, quantity float64) error
	ReleaseFn func(ctx context.Context, produceID, loanID string) error
}

func (m *Repo) Resolve(ctx context.Context, produceID string) (*domain.Produce, error) {
	if m.ResolveFn != nil {
		return m.ResolveFn(ctx, produceID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) Pledge(ctx context.Context, produceID, loanID string, quantity float64) error {
	if m.PledgeFn != nil {
		return m.PledgeFn(ctx, produceID, loanID, quantity)
	}
	return nil
}

func (m *Repo) Release(ctx context.Context, produceID, loanID string) error {
	if m.ReleaseFn != nil {
		return m.ReleaseFn(ctx, produceID, loanID)
	}
	return nil
}
