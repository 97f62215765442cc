package ledger

import "agripledge-backend/internal/domain/loan"

type RepayInput struct {
	LoanID     string
	Amount     float64
	Method     loan.PaymentMethod
	Reference  string
	Note       string
	RecordedBy string
}

// RepayResult returns the loan together with the balance after the payment so
// callers can tell a partial payment (balance > 0) from the final one.
type RepayResult struct {
	Loan               *loan.Loan `json:"loan"`
	OutstandingBalance float64    `json:"outstanding_balance"`
	// Replayed is true when the payment reference was already recorded on
	// this loan and no new payment was appended.
	Replayed bool `json:"replayed,omitempty"`
}

// LoanDetail pairs a loan with its full payment history.
type LoanDetail struct {
	Loan     *loan.Loan     `json:"loan"`
	Payments []loan.Payment `json:"payments"`
}
