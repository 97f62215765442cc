package loanmock

import (
	"context"

	"gorm.io/gorm"

	domain "agripledge-backend/internal/domain/loan"
)

var _ domain.Repository = (*Repo)(nil)

// Repo is a function-backed mock that satisfies domain.Repository. Fill in
// the function fields a test needs; reads left unset report not-found,
// writes left unset succeed.
type Repo struct {
	CreateFn                func(ctx context.Context, l *domain.Loan) error
	SaveFn                  func(ctx context.Context, l *domain.Loan) error
	GetByLoanIDFn           func(ctx context.Context, loanID string) (*domain.Loan, error)
	GetByLoanIDForUpdateFn  func(ctx context.Context, loanID string) (*domain.Loan, error)
	ListByFarmerFn          func(ctx context.Context, farmerID string) ([]domain.Loan, error)
	ListByStatusFn          func(ctx context.Context, st domain.Status) ([]domain.Loan, error)
	ListOverdueFn           func(ctx context.Context) ([]domain.Loan, error)
	AddPaymentFn            func(ctx context.Context, p *domain.Payment) error
	ListPaymentsFn          func(ctx context.Context, loanNumericID uint64) ([]domain.Payment, error)
	GetPaymentByReferenceFn func(ctx context.Context, loanNumericID uint64, reference string) (*domain.Payment, error)
	StatsFn                 func(ctx context.Context) (*domain.Stats, error)
}

func (m *Repo) Create(ctx context.Context, l *domain.Loan) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return nil
}

func (m *Repo) Save(ctx context.Context, l *domain.Loan) error {
	if m.SaveFn != nil {
		return m.SaveFn(ctx, l)
	}
	return nil
}

func (m *Repo) GetByLoanID(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDFn != nil {
		return m.GetByLoanIDFn(ctx, loanID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*domain.Loan, error) {
	if m.GetByLoanIDForUpdateFn != nil {
		return m.GetByLoanIDForUpdateFn(ctx, loanID)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) ListByFarmer(ctx context.Context, farmerID string) ([]domain.Loan, error) {
	if m.ListByFarmerFn != nil {
		return m.ListByFarmerFn(ctx, farmerID)
	}
	return nil, nil
}

func (m *Repo) ListByStatus(ctx context.Context, st domain.Status) ([]domain.Loan, error) {
	if m.ListByStatusFn != nil {
		return m.ListByStatusFn(ctx, st)
	}
	return nil, nil
}

func (m *Repo) ListOverdue(ctx context.Context) ([]domain.Loan, error) {
	if m.ListOverdueFn != nil {
		return m.ListOverdueFn(ctx)
	}
	return nil, nil
}

func (m *Repo) AddPayment(ctx context.Context, p *domain.Payment) error {
	if m.AddPaymentFn != nil {
		return m.AddPaymentFn(ctx, p)
	}
	return nil
}

func (m *Repo) ListPayments(ctx context.Context, loanNumericID uint64) ([]domain.Payment, error) {
	if m.ListPaymentsFn != nil {
		return m.ListPaymentsFn(ctx, loanNumericID)
	}
	return nil, nil
}

func (m *Repo) GetPaymentByReference(ctx context.Context, loanNumericID uint64, reference string) (*domain.Payment, error) {
	if m.GetPaymentByReferenceFn != nil {
		return m.GetPaymentByReferenceFn(ctx, loanNumericID, reference)
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *Repo) Stats(ctx context.Context) (*domain.Stats, error) {
	if m.StatsFn != nil {
		return m.StatsFn(ctx)
	}
	return &domain.Stats{}, nil
}
