// Package revaluation re-prices pledged collateral against current market
// data and flags loans whose cover has thinned past the margin-call
// threshold. It only flags: calling the loan or forcing liquidation belongs
// to the surrounding application.
package revaluation

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domainLoan "agripledge-backend/internal/domain/loan"
	"agripledge-backend/internal/domain/uow"
	"agripledge-backend/pkg/money"
)

type Usecase struct {
	loans     domainLoan.Repository
	uow       uow.UnitOfWork
	threshold float64
}

func NewUsecase(loans domainLoan.Repository, tx uow.UnitOfWork, threshold float64) *Usecase {
	return &Usecase{loans: loans, uow: tx, threshold: threshold}
}

// NeedsMarginCall reports whether the outstanding balance exceeds the
// threshold share of the current collateral value. A non-positive valuation
// means "no reliable valuation" and never trips the flag.
func NeedsMarginCall(outstandingBalance, currentCollateralValue, threshold float64) bool {
	if currentCollateralValue <= 0 {
		return false
	}
	return money.Ratio(outstandingBalance, currentCollateralValue) > threshold
}

// Revalue records a fresh market valuation on an active loan. The
// origination snapshot is never touched.
func (u *Usecase) Revalue(ctx context.Context, loanID string, newCollateralValue float64) (*domainLoan.Loan, error) {
	var out *domainLoan.Loan
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusActive {
			return domainLoan.ErrInvalidTransition
		}
		now := time.Now().UTC()
		v := money.Round2(newCollateralValue)
		l.CurrentCollateralValue = &v
		l.RevaluationDate = &now
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		out = l
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err)
	}
	return out, nil
}

// CheckAndFlag evaluates the margin-call condition off the loan's stored
// balance and latest valuation, raising the flag at most once per loan.
func (u *Usecase) CheckAndFlag(ctx context.Context, loanID string) (bool, error) {
	var triggered bool
	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusActive {
			return domainLoan.ErrInvalidTransition
		}
		var current float64
		if l.CurrentCollateralValue != nil {
			current = *l.CurrentCollateralValue
		}
		if !NeedsMarginCall(l.OutstandingBalance, current, u.threshold) {
			return nil
		}
		triggered = true
		if l.MarginCallTriggered {
			return nil
		}
		now := time.Now().UTC()
		l.MarginCallTriggered = true
		l.MarginCallDate = &now
		return r.Loans.Save(ctx, l)
	})
	if err != nil {
		return false, mapNotFound(err)
	}
	return triggered, nil
}

// SweepActive runs CheckAndFlag across every active loan that has a current
// valuation. Callers own the schedule; this is just the body of one pass.
// Returns the loan ids flagged during this pass.
func (u *Usecase) SweepActive(ctx context.Context) ([]string, error) {
	active, err := u.loans.ListByStatus(ctx, domainLoan.StatusActive)
	if err != nil {
		return nil, err
	}
	var flagged []string
	for i := range active {
		l := &active[i]
		if l.CurrentCollateralValue == nil || l.MarginCallTriggered {
			continue
		}
		hit, err := u.CheckAndFlag(ctx, l.LoanID)
		if err != nil {
			return flagged, err
		}
		if hit {
			flagged = append(flagged, l.LoanID)
		}
	}
	return flagged, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainLoan.ErrNotFound
	}
	return err
}
