package produce

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("produce not found")

// Inventory statuses and condition grades the surrounding application assigns.
// The engine reads them during eligibility screening and writes nothing on the
// produce record except the pledge fields.
const (
	StatusActive     = "active"
	StatusListed     = "listed"
	StatusMonitoring = "monitoring"
	StatusStocked    = "stocked"
	StatusSold       = "sold"
)

type Produce struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	ProduceID string `gorm:"column:produce_id;type:char(32);not null;uniqueIndex:ux_produce_produce_id" json:"produce_id"`
	FarmerID  string `gorm:"column:farmer_id;type:char(32);not null;index" json:"farmer_id"`
	CropType  string `gorm:"column:crop_type;size:64" json:"crop_type"`

	QuantityKg         float64 `gorm:"column:quantity_kg;type:decimal(12,2)" json:"quantity_kg"`
	CurrentMarketPrice float64 `gorm:"column:current_market_price;type:decimal(18,2)" json:"current_market_price"`
	Condition          string  `gorm:"column:condition;size:32" json:"condition"`
	Status             string  `gorm:"column:status;size:32" json:"status"`
	IsSold             bool    `gorm:"column:is_sold" json:"is_sold"`

	// Pledge fields, mutated only by the loan engine inside the loan
	// transaction.
	IsPledged       bool       `gorm:"column:is_pledged" json:"is_pledged"`
	PledgedToLoan   *string    `gorm:"column:pledged_to_loan;type:char(32)" json:"pledged_to_loan,omitempty"`
	PledgedQuantity float64    `gorm:"column:pledged_quantity;type:decimal(12,2)" json:"pledged_quantity"`
	PledgedAt       *time.Time `gorm:"column:pledged_at" json:"pledged_at,omitempty"`

	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Produce) TableName() string { return "produce" }
