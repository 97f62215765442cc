package ledger

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	domainLoan "agripledge-backend/internal/domain/loan"
	"agripledge-backend/internal/domain/notify"
	domainProduce "agripledge-backend/internal/domain/produce"
	"agripledge-backend/internal/domain/uow"
	"agripledge-backend/pkg/id"
)

// Usecase owns the loan lifecycle. Approve and Repay run inside a unit of
// work that locks the loan row and writes the produce pledge flag in the same
// transaction, so a loan can never be observed active without its collateral
// pledged or repaid with it still held.
type Usecase struct {
	loans   domainLoan.Repository
	uow     uow.UnitOfWork
	gateway notify.Gateway
}

func NewUsecase(loans domainLoan.Repository, tx uow.UnitOfWork, gw notify.Gateway) *Usecase {
	return &Usecase{loans: loans, uow: tx, gateway: gw}
}

func (u *Usecase) Approve(ctx context.Context, loanID, approverID string) (*domainLoan.Loan, error) {
	var approved *domainLoan.Loan

	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusPending {
			return domainLoan.ErrInvalidTransition
		}

		now := time.Now().UTC()
		due := now.AddDate(0, 0, l.TermDays)

		l.Status = domainLoan.StatusActive
		l.ApprovedAt = &now
		l.ApprovedBy = approverID
		l.DisbursedAt = &now
		l.DueAt = &due
		domainLoan.RecomputeDerived(l, nil)

		if err := r.Produce.Pledge(ctx, l.ProduceID, l.LoanID, l.CollateralQuantity); err != nil {
			if errors.Is(err, domainProduce.ErrAlreadyPledged) {
				return domainLoan.ErrPledgeConflict
			}
			return err
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		approved = l
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err)
	}

	u.gateway.Publish(ctx, notify.NewEvent(notify.EventApproved, approved, nil))
	return approved, nil
}

func (u *Usecase) Reject(ctx context.Context, loanID, approverID, reason string) (*domainLoan.Loan, error) {
	var rejected *domainLoan.Loan

	err := u.uow.WithinLoanTx(ctx, loanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusPending {
			return domainLoan.ErrInvalidTransition
		}
		if reason == "" {
			reason = "application did not meet lending criteria"
		}

		now := time.Now().UTC()
		l.Status = domainLoan.StatusCancelled
		l.RejectionReason = reason
		// audit trail: who closed the application, even on rejection
		l.ApprovedBy = approverID
		l.ApprovedAt = &now

		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}
		rejected = l
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err)
	}

	u.gateway.Publish(ctx, notify.NewEvent(notify.EventRejected, rejected, nil))
	return rejected, nil
}

// Repay appends a payment and recomputes the balance from the entire payment
// history inside the loan transaction. When the balance reaches zero the loan
// closes and the collateral is released in the same transaction. A payment
// whose reference was already recorded on this loan is treated as a replay:
// nothing is appended and the current balance is returned.
func (u *Usecase) Repay(ctx context.Context, in RepayInput) (*RepayResult, error) {
	if in.Amount <= 0 {
		return nil, domainLoan.ErrInvalidAmount
	}
	if in.Method == "" {
		in.Method = domainLoan.MethodOther
	}

	var (
		result  *RepayResult
		payment *domainLoan.Payment
	)

	err := u.uow.WithinLoanTx(ctx, in.LoanID, func(r uow.Repos, l *domainLoan.Loan) error {
		if l.Status != domainLoan.StatusActive {
			return domainLoan.ErrInvalidTransition
		}

		if in.Reference != "" {
			if _, err := r.Loans.GetPaymentByReference(ctx, l.ID, in.Reference); err == nil {
				result = &RepayResult{Loan: l, OutstandingBalance: l.OutstandingBalance, Replayed: true}
				return nil
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		now := time.Now().UTC()
		p := &domainLoan.Payment{
			PaymentID:  id.NewID32(),
			LoanID:     l.ID,
			Amount:     in.Amount,
			PaidAt:     now,
			Method:     in.Method,
			Reference:  in.Reference,
			Note:       in.Note,
			RecordedBy: in.RecordedBy,
		}
		if err := r.Loans.AddPayment(ctx, p); err != nil {
			return err
		}

		history, err := r.Loans.ListPayments(ctx, l.ID)
		if err != nil {
			return err
		}
		domainLoan.RecomputeDerived(l, history)

		if l.OutstandingBalance == 0 {
			l.Status = domainLoan.StatusRepaid
			l.RepaidAt = &now
			if err := r.Produce.Release(ctx, l.ProduceID, l.LoanID); err != nil {
				return err
			}
		}
		if err := r.Loans.Save(ctx, l); err != nil {
			return err
		}

		payment = p
		result = &RepayResult{Loan: l, OutstandingBalance: l.OutstandingBalance}
		return nil
	})
	if err != nil {
		return nil, mapNotFound(err)
	}

	if !result.Replayed {
		u.gateway.Publish(ctx, notify.NewEvent(notify.EventPaymentReceived, result.Loan, payment))
		if result.Loan.Status == domainLoan.StatusRepaid {
			u.gateway.Publish(ctx, notify.NewEvent(notify.EventFullyRepaid, result.Loan, nil))
		}
	}
	return result, nil
}

func (u *Usecase) GetByLoanID(ctx context.Context, loanID string) (*LoanDetail, error) {
	l, err := u.loans.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, mapNotFound(err)
	}
	history, err := u.loans.ListPayments(ctx, l.ID)
	if err != nil {
		return nil, err
	}
	return &LoanDetail{Loan: l, Payments: history}, nil
}

func (u *Usecase) ListByFarmer(ctx context.Context, farmerID string) ([]domainLoan.Loan, error) {
	return u.loans.ListByFarmer(ctx, farmerID)
}

func (u *Usecase) ListPending(ctx context.Context) ([]domainLoan.Loan, error) {
	return u.loans.ListByStatus(ctx, domainLoan.StatusPending)
}

func (u *Usecase) ListActive(ctx context.Context) ([]domainLoan.Loan, error) {
	return u.loans.ListByStatus(ctx, domainLoan.StatusActive)
}

// OverdueLoans lists active loans past their due date. Read-only: marking
// them defaulted needs an explicit sweep that does not exist yet.
func (u *Usecase) OverdueLoans(ctx context.Context) ([]domainLoan.Loan, error) {
	return u.loans.ListOverdue(ctx)
}

func (u *Usecase) Stats(ctx context.Context) (*domainLoan.Stats, error) {
	return u.loans.Stats(ctx)
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainLoan.ErrNotFound
	}
	return err
}
