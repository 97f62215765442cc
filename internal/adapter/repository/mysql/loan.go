package mysql

import (
	"context"

	"gorm.io/gorm"

	loanDomain "agripledge-backend/internal/domain/loan"
)

type LoanRepository struct{ db *gorm.DB }

func NewLoanRepository(db *gorm.DB) *LoanRepository { return &LoanRepository{db: db} }

func (r *LoanRepository) Create(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *LoanRepository) Save(ctx context.Context, l *loanDomain.Loan) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *LoanRepository) GetByLoanID(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := r.db.WithContext(ctx).Where("loan_id = ?", loanID).First(&out)
	return &out, res.Error
}

func (r *LoanRepository) GetByLoanIDForUpdate(ctx context.Context, loanID string) (*loanDomain.Loan, error) {
	var out loanDomain.Loan
	res := lockForUpdate(r.db.WithContext(ctx)).
		Where("loan_id = ?", loanID).
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) ListByFarmer(ctx context.Context, farmerID string) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("applied_at DESC, id DESC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListByStatus(ctx context.Context, st loanDomain.Status) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("status = ?", st).
		Order("applied_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) ListOverdue(ctx context.Context) ([]loanDomain.Loan, error) {
	var out []loanDomain.Loan
	res := r.db.WithContext(ctx).
		Where("status = ? AND due_at IS NOT NULL AND due_at < ?", loanDomain.StatusActive, nowUTC()).
		Order("due_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) AddPayment(ctx context.Context, p *loanDomain.Payment) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *LoanRepository) ListPayments(ctx context.Context, loanNumericID uint64) ([]loanDomain.Payment, error) {
	var out []loanDomain.Payment
	res := r.db.WithContext(ctx).
		Where("loan_id = ?", loanNumericID).
		Order("paid_at ASC, id ASC").
		Find(&out)
	return out, res.Error
}

func (r *LoanRepository) GetPaymentByReference(ctx context.Context, loanNumericID uint64, reference string) (*loanDomain.Payment, error) {
	var out loanDomain.Payment
	res := r.db.WithContext(ctx).
		Where("loan_id = ? AND reference = ?", loanNumericID, reference).
		First(&out)
	return &out, res.Error
}

func (r *LoanRepository) Stats(ctx context.Context) (*loanDomain.Stats, error) {
	s := &loanDomain.Stats{}
	db := r.db.WithContext(ctx).Model(&loanDomain.Loan{})

	if err := db.Session(&gorm.Session{}).Count(&s.TotalLoans).Error; err != nil {
		return nil, err
	}
	counts := []struct {
		st   loanDomain.Status
		dest *int64
	}{
		{loanDomain.StatusPending, &s.PendingLoans},
		{loanDomain.StatusActive, &s.ActiveLoans},
		{loanDomain.StatusRepaid, &s.RepaidLoans},
		{loanDomain.StatusDefaulted, &s.DefaultedLoans},
	}
	for _, c := range counts {
		if err := db.Session(&gorm.Session{}).Where("status = ?", c.st).Count(c.dest).Error; err != nil {
			return nil, err
		}
	}

	// Disbursed = net cash out on every loan that reached Active (including
	// those that have since closed). Outstanding only counts live loans.
	type sums struct {
		Disbursed   float64
		Repaid      float64
		Outstanding float64
	}
	var agg sums
	err := r.db.WithContext(ctx).Model(&loanDomain.Loan{}).
		Select(
			"COALESCE(SUM(CASE WHEN status IN ? THEN net_disbursement ELSE 0 END), 0) AS disbursed, "+
				"COALESCE(SUM(amount_paid), 0) AS repaid, "+
				"COALESCE(SUM(CASE WHEN status = ? THEN outstanding_balance ELSE 0 END), 0) AS outstanding",
			[]loanDomain.Status{loanDomain.StatusActive, loanDomain.StatusRepaid, loanDomain.StatusDefaulted, loanDomain.StatusLiquidation},
			loanDomain.StatusActive,
		).
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	s.TotalDisbursed = agg.Disbursed
	s.TotalRepaid = agg.Repaid
	s.TotalOutstanding = agg.Outstanding
	return s, nil
}
