package uow

import (
	"context"

	"agripledge-backend/internal/domain/farmer"
	"agripledge-backend/internal/domain/loan"
	"agripledge-backend/internal/domain/produce"
)

type Repos struct {
	Loans   loan.Repository
	Produce produce.Repository
	Farmers farmer.Repository
}

type UnitOfWork interface {
	// plain tx
	WithinTx(ctx context.Context, fn func(r Repos) error) error
	// convenience: lock the loan row first, then pass it in
	WithinLoanTx(ctx context.Context, loanID string, fn func(r Repos, l *loan.Loan) error) error
}
