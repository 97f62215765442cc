package loan

import (
	"time"

	"gorm.io/gorm"
)

type Status string

const (
	StatusDraft       Status = "draft"
	StatusPending     Status = "pending"
	StatusActive      Status = "active"
	StatusRepaid      Status = "repaid"
	StatusDefaulted   Status = "defaulted"
	StatusLiquidation Status = "liquidation"
	StatusCancelled   Status = "cancelled"
)

type PaymentMethod string

const (
	MethodCash         PaymentMethod = "cash"
	MethodMobileMoney  PaymentMethod = "mobile_money"
	MethodBankTransfer PaymentMethod = "bank_transfer"
	MethodCard         PaymentMethod = "card"
	MethodOther        PaymentMethod = "other"
)

// Loan is the aggregate root of the collateral lending engine. The collateral
// snapshot (value, quantity) is frozen at origination and never touched by
// later revaluation; CurrentCollateralValue carries the re-priced figure
// separately.
type Loan struct {
	ID        uint64 `gorm:"primaryKey;column:id" json:"-"`
	LoanID    string `gorm:"size:32;uniqueIndex:ux_loans_loan_id_active" json:"loan_id"`
	FarmerID  string `gorm:"size:32;index:idx_loans_farmer_active" json:"farmer_id"`
	ProduceID string `gorm:"size:32;index" json:"produce_id"`

	CollateralValue    float64 `gorm:"type:decimal(18,2)" json:"collateral_value"`
	CollateralQuantity float64 `gorm:"type:decimal(12,2)" json:"collateral_quantity_kg"`

	Principal    float64 `gorm:"type:decimal(18,2)" json:"principal"`
	LTV          float64 `gorm:"type:decimal(6,4)" json:"ltv"`
	TermDays     int     `gorm:"type:int" json:"term_days"`
	InterestRate float64 `gorm:"type:decimal(6,4)" json:"interest_rate"`

	OriginationFee float64 `gorm:"type:decimal(18,2)" json:"origination_fee"`
	ProcessingFee  float64 `gorm:"type:decimal(18,2)" json:"processing_fee"`
	TotalFees      float64 `gorm:"type:decimal(18,2)" json:"total_fees"`

	// Derived, always recomputable from the terms above plus the payment
	// history. RecomputeDerived is the single writer.
	InterestAmount     float64 `gorm:"type:decimal(18,2)" json:"interest_amount"`
	TotalDue           float64 `gorm:"type:decimal(18,2)" json:"total_due"`
	NetDisbursement    float64 `gorm:"type:decimal(18,2)" json:"net_disbursement"`
	AmountPaid         float64 `gorm:"type:decimal(18,2)" json:"amount_paid"`
	OutstandingBalance float64 `gorm:"type:decimal(18,2)" json:"outstanding_balance"`

	Status  Status `gorm:"type:enum('draft','pending','active','repaid','defaulted','liquidation','cancelled');default:'pending'" json:"status"`
	Purpose string `gorm:"type:text" json:"purpose,omitempty"`
	Notes   string `gorm:"type:text" json:"notes,omitempty"`

	RejectionReason string `gorm:"type:text" json:"rejection_reason,omitempty"`

	AppliedAt   time.Time  `json:"applied_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	ApprovedBy  string     `gorm:"size:32" json:"approved_by,omitempty"`
	DisbursedAt *time.Time `json:"disbursed_at,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	RepaidAt    *time.Time `json:"repaid_at,omitempty"`
	DefaultedAt *time.Time `json:"defaulted_at,omitempty"`

	CurrentCollateralValue *float64   `gorm:"type:decimal(18,2)" json:"current_collateral_value,omitempty"`
	RevaluationDate        *time.Time `json:"revaluation_date,omitempty"`
	MarginCallTriggered    bool       `json:"margin_call_triggered"`
	MarginCallDate         *time.Time `json:"margin_call_date,omitempty"`

	CreatedAt time.Time      `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Loan) TableName() string { return "loans" }

// Payment is an append-only repayment record. Balances are always recomputed
// from the full list, never incremented in place.
type Payment struct {
	ID         uint64        `gorm:"primaryKey;column:id" json:"-"`
	PaymentID  string        `gorm:"size:32;uniqueIndex:ux_payments_payment_id" json:"payment_id"`
	LoanID     uint64        `gorm:"not null;index:idx_payments_loan" json:"-"`
	Amount     float64       `gorm:"type:decimal(18,2)" json:"amount"`
	PaidAt     time.Time     `json:"paid_at"`
	Method     PaymentMethod `gorm:"size:16" json:"method"`
	Reference  string        `gorm:"size:64;index:idx_payments_loan_ref" json:"reference,omitempty"`
	Note       string        `gorm:"type:text" json:"note,omitempty"`
	RecordedBy string        `gorm:"size:32" json:"recorded_by"`
	CreatedAt  time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

func (Payment) TableName() string { return "loan_payments" }
