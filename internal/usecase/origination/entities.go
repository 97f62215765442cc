package origination

import "agripledge-backend/internal/domain/loan"

type ApplyInput struct {
	FarmerID     string  `json:"farmer_id"`
	ProduceID    string  `json:"produce_id"`
	RequestedLTV float64 `json:"requested_ltv"`
	TermDays     int     `json:"term_days"`
	Purpose      string  `json:"purpose"`
	Notes        string  `json:"notes"`
}

// EligibilityResult is a normal negative outcome, not an error: an ineligible
// produce item yields Eligible=false with every applicable reason collected.
type EligibilityResult struct {
	Eligible bool     `json:"eligible"`
	Reasons  []string `json:"reasons,omitempty"`
}

// TermsSummary is the deterministic output of the term computation; every
// monetary field is already 2-dp rounded.
type TermsSummary struct {
	CollateralValue    float64 `json:"collateral_value"`
	CollateralQuantity float64 `json:"collateral_quantity_kg"`
	LTV                float64 `json:"ltv"`
	TermDays           int     `json:"term_days"`
	InterestRate       float64 `json:"interest_rate"`
	Principal          float64 `json:"principal"`
	InterestAmount     float64 `json:"interest_amount"`
	OriginationFee     float64 `json:"origination_fee"`
	ProcessingFee      float64 `json:"processing_fee"`
	TotalFees          float64 `json:"total_fees"`
	TotalDue           float64 `json:"total_due"`
	NetDisbursement    float64 `json:"net_disbursement"`
}

// ApplyResult carries either the created pending loan or the decline detail.
type ApplyResult struct {
	Eligible bool       `json:"eligible"`
	Reasons  []string   `json:"reasons,omitempty"`
	Loan     *loan.Loan `json:"loan,omitempty"`
}
