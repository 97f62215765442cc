package farmermock

import (
	"context"

	"gorm.io/gorm"

	domain "agripledge-backend/internal/domain/farmer"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository.
type Repo struct {
	ResolveFn func(ctx context.Context, farmerID string) (*domain.Farmer, error)
}

func (m *Repo) Resolve(ctx context.Context, farmerID string) (*domain.Farmer, error) {
	if m.ResolveFn != nil {
		return m.ResolveFn(ctx, farmerID)
	}
	return nil, gorm.ErrRecordNotFound
}
