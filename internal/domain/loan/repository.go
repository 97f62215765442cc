package loan

import "context"

type Repository interface {
	Create(ctx context.Context, l *Loan) error
	Save(ctx context.Context, l *Loan) error
	GetByLoanID(ctx context.Context, loanID string) (*Loan, error)
	// GetByLoanIDForUpdate locks the loan row for the duration of the
	// surrounding transaction, serializing concurrent Approve/Repay calls.
	GetByLoanIDForUpdate(ctx context.Context, loanID string) (*Loan, error)

	ListByFarmer(ctx context.Context, farmerID string) ([]Loan, error)
	ListByStatus(ctx context.Context, st Status) ([]Loan, error)
	ListOverdue(ctx context.Context) ([]Loan, error)

	AddPayment(ctx context.Context, p *Payment) error
	ListPayments(ctx context.Context, loanNumericID uint64) ([]Payment, error)
	GetPaymentByReference(ctx context.Context, loanNumericID uint64, reference string) (*Payment, error)

	Stats(ctx context.Context) (*Stats, error)
}

// Stats is the portfolio roll-up behind the admin dashboard.
type Stats struct {
	TotalLoans       int64   `json:"total_loans"`
	PendingLoans     int64   `json:"pending_loans"`
	ActiveLoans      int64   `json:"active_loans"`
	RepaidLoans      int64   `json:"repaid_loans"`
	DefaultedLoans   int64   `json:"defaulted_loans"`
	TotalDisbursed   float64 `json:"total_disbursed"`
	TotalRepaid      float64 `json:"total_repaid"`
	TotalOutstanding float64 `json:"total_outstanding"`
}
