package origination

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"agripledge-backend/internal/config"
	domainFarmer "agripledge-backend/internal/domain/farmer"
	domainLoan "agripledge-backend/internal/domain/loan"
	"agripledge-backend/internal/domain/notify"
	domainProduce "agripledge-backend/internal/domain/produce"
	"agripledge-backend/internal/usecase/valuation"
	"agripledge-backend/pkg/id"
	"agripledge-backend/pkg/money"
)

type Usecase struct {
	loans   domainLoan.Repository
	produce domainProduce.Repository
	farmers domainFarmer.Repository
	gateway notify.Gateway
	policy  config.LendingPolicy
}

func NewUsecase(loans domainLoan.Repository, produce domainProduce.Repository, farmers domainFarmer.Repository, gw notify.Gateway, policy config.LendingPolicy) *Usecase {
	return &Usecase{loans: loans, produce: produce, farmers: farmers, gateway: gw, policy: policy}
}

// CheckEligibility screens a produce item against the lending policy and
// collects every applicable rejection reason rather than stopping at the
// first.
func CheckEligibility(p *domainProduce.Produce, policy config.LendingPolicy) EligibilityResult {
	var reasons []string

	if p.IsPledged {
		reasons = append(reasons, "produce is already pledged as collateral")
	}
	if p.IsSold || strings.EqualFold(p.Status, domainProduce.StatusSold) {
		reasons = append(reasons, "produce is marked as sold")
	}
	if p.QuantityKg < policy.MinQuantityKg {
		reasons = append(reasons, fmt.Sprintf("quantity %.2fkg is below the %.2fkg minimum", p.QuantityKg, policy.MinQuantityKg))
	}
	if p.CurrentMarketPrice <= 0 {
		reasons = append(reasons, "produce has no current market price")
	} else if p.CurrentMarketPrice < policy.MinPricePerKg {
		reasons = append(reasons, fmt.Sprintf("market price %.2f/kg is below the %.2f/kg minimum", p.CurrentMarketPrice, policy.MinPricePerKg))
	}
	if !containsFold(policy.AllowedConditions, p.Condition) {
		reasons = append(reasons, fmt.Sprintf("condition %q is not accepted as collateral", p.Condition))
	}
	if !containsFold(policy.AllowedStatuses, p.Status) && !strings.EqualFold(p.Status, domainProduce.StatusSold) {
		reasons = append(reasons, fmt.Sprintf("produce status %q is not accepted as collateral", p.Status))
	}

	return EligibilityResult{Eligible: len(reasons) == 0, Reasons: reasons}
}

func containsFold(set []string, v string) bool {
	for _, s := range set {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// ComputeTerms derives the full term sheet from a collateral value and the
// requested LTV/term. The requested LTV is clamped into the policy bounds,
// never rejected. Deterministic and side-effect free.
func ComputeTerms(collateralValue, quantityKg, requestedLTV float64, termDays int, apr, originationFeeRate, processingFee float64, policy config.LendingPolicy) TermsSummary {
	ltv := requestedLTV
	if ltv < policy.MinLTV {
		ltv = policy.MinLTV
	}
	if ltv > policy.MaxLTV {
		ltv = policy.MaxLTV
	}

	principal := money.Mul2(collateralValue, ltv)
	interest := money.Interest(principal, apr, termDays)
	origFee := money.Mul2(principal, originationFeeRate)
	totalFees := money.Sum(origFee, processingFee)

	return TermsSummary{
		CollateralValue:    collateralValue,
		CollateralQuantity: quantityKg,
		LTV:                ltv,
		TermDays:           termDays,
		InterestRate:       apr,
		Principal:          principal,
		InterestAmount:     interest,
		OriginationFee:     origFee,
		ProcessingFee:      processingFee,
		TotalFees:          totalFees,
		TotalDue:           money.Sum(principal, interest, totalFees),
		NetDisbursement:    money.SubFloor(principal, totalFees),
	}
}

// Apply runs valuation, eligibility and term computation, then persists a
// pending loan. A declined application is a normal result (Eligible=false),
// not an error; callers must branch on it.
func (u *Usecase) Apply(ctx context.Context, in ApplyInput) (*ApplyResult, error) {
	if in.FarmerID == "" || in.ProduceID == "" {
		return nil, errors.New("farmer_id and produce_id are required")
	}

	if _, err := u.farmers.Resolve(ctx, in.FarmerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, domainFarmer.ErrNotFound) {
			return nil, domainFarmer.ErrNotFound
		}
		return nil, err
	}
	p, err := u.produce.Resolve(ctx, in.ProduceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || errors.Is(err, domainProduce.ErrNotFound) {
			return nil, domainProduce.ErrNotFound
		}
		return nil, err
	}
	if p.FarmerID != in.FarmerID {
		return nil, domainLoan.ErrForbidden
	}

	if res := CheckEligibility(p, u.policy); !res.Eligible {
		return &ApplyResult{Eligible: false, Reasons: res.Reasons}, nil
	}

	ltv := in.RequestedLTV
	if ltv <= 0 {
		ltv = u.policy.DefaultLTV
	}
	termDays := in.TermDays
	if termDays <= 0 {
		termDays = u.policy.DefaultTermDays
	}
	if termDays < u.policy.MinTermDays || termDays > u.policy.MaxTermDays {
		return nil, fmt.Errorf("term_days %d outside [%d, %d]", termDays, u.policy.MinTermDays, u.policy.MaxTermDays)
	}

	value := valuation.ComputeCollateralValue(p.QuantityKg, p.CurrentMarketPrice)
	terms := ComputeTerms(value, p.QuantityKg, ltv, termDays,
		u.policy.AnnualInterestRate, u.policy.OriginationFeeRate, u.policy.ProcessingFee, u.policy)

	now := time.Now().UTC()
	l := &domainLoan.Loan{
		LoanID:    id.NewID32(),
		FarmerID:  in.FarmerID,
		ProduceID: in.ProduceID,

		CollateralValue:    terms.CollateralValue,
		CollateralQuantity: terms.CollateralQuantity,
		Principal:          terms.Principal,
		LTV:                terms.LTV,
		TermDays:           terms.TermDays,
		InterestRate:       terms.InterestRate,
		OriginationFee:     terms.OriginationFee,
		ProcessingFee:      terms.ProcessingFee,

		Status:    domainLoan.StatusPending,
		Purpose:   in.Purpose,
		Notes:     in.Notes,
		AppliedAt: now,
	}
	domainLoan.RecomputeDerived(l, nil)

	if err := u.loans.Create(ctx, l); err != nil {
		return nil, err
	}

	u.gateway.Publish(ctx, notify.NewEvent(notify.EventApplicationReceived, l, nil))

	return &ApplyResult{Eligible: true, Loan: l}, nil
}
