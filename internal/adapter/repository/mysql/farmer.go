package mysql

import (
	"context"

	"gorm.io/gorm"

	farmerDomain "agripledge-backend/internal/domain/farmer"
)

type FarmerRepository struct{ db *gorm.DB }

func NewFarmerRepository(db *gorm.DB) *FarmerRepository { return &FarmerRepository{db: db} }

func (r *FarmerRepository) Resolve(ctx context.Context, farmerID string) (*farmerDomain.Farmer, error) {
	var out farmerDomain.Farmer
	res := r.db.WithContext(ctx).Where("farmer_id = ?", farmerID).First(&out)
	return &out, res.Error
}
