package farmer

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

var ErrNotFound = errors.New("farmer not found")

// Farmer is owned by the surrounding application; the loan engine only ever
// resolves it by id to attribute applications and repayments.
type Farmer struct {
	ID        uint64         `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	FarmerID  string         `gorm:"column:farmer_id;type:char(32);not null;uniqueIndex:ux_farmers_farmer_id" json:"farmer_id"`
	Name      string         `gorm:"column:name;size:128;not null" json:"name"`
	Phone     string         `gorm:"column:phone;size:32" json:"phone"`
	Region    string         `gorm:"column:region;size:64" json:"region"`
	CreatedAt time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"column:deleted_at;index" json:"-"`
}

func (Farmer) TableName() string { return "farmers" }
