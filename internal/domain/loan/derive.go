package loan

import (
	"time"

	"agripledge-backend/pkg/money"
)

// RecomputeDerived rewrites every derived monetary field from the loan's terms
// and the supplied full payment history. It is the only writer of those
// fields; every mutating operation calls it explicitly before saving, so the
// derivation stays testable without a storage layer behind it.
func RecomputeDerived(l *Loan, payments []Payment) {
	l.InterestAmount = money.Interest(l.Principal, l.InterestRate, l.TermDays)
	l.TotalFees = money.Sum(l.OriginationFee, l.ProcessingFee)
	l.TotalDue = money.Sum(l.Principal, l.InterestAmount, l.TotalFees)
	l.NetDisbursement = money.SubFloor(l.Principal, l.TotalFees)

	amounts := make([]float64, 0, len(payments))
	for _, p := range payments {
		amounts = append(amounts, p.Amount)
	}
	l.AmountPaid = money.Sum(amounts...)
	l.OutstandingBalance = money.SubFloor(l.TotalDue, l.AmountPaid)
}

// DaysUntilDue returns whole days from now until the due date, negative when
// past due, zero when no due date is set.
func DaysUntilDue(l *Loan, now time.Time) int {
	if l.DueAt == nil {
		return 0
	}
	return int(l.DueAt.Sub(now).Hours() / 24)
}

func IsOverdue(l *Loan, now time.Time) bool {
	return l.Status == StatusActive && l.DueAt != nil && now.After(*l.DueAt)
}

func DaysOverdue(l *Loan, now time.Time) int {
	if !IsOverdue(l, now) {
		return 0
	}
	return int(now.Sub(*l.DueAt).Hours() / 24)
}

// CurrentLTV is outstanding balance over the latest collateral valuation,
// falling back to the origination snapshot when no revaluation exists yet.
// Returns 0 when no positive valuation is available.
func CurrentLTV(l *Loan) float64 {
	v := l.CollateralValue
	if l.CurrentCollateralValue != nil {
		v = *l.CurrentCollateralValue
	}
	return money.Ratio(l.OutstandingBalance, v)
}
