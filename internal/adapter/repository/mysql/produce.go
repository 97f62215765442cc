package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	produceDomain "agripledge-backend/internal/domain/produce"
)

func nowUTC() time.Time { return time.Now().UTC() }

// lockForUpdate adds a row lock on engines that support it. SQLite (used by
// the test suite) has no FOR UPDATE; its writes serialize on the database
// lock instead.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "mysql" {
		return db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}

type ProduceRepository struct{ db *gorm.DB }

func NewProduceRepository(db *gorm.DB) *ProduceRepository { return &ProduceRepository{db: db} }

func (r *ProduceRepository) Resolve(ctx context.Context, produceID string) (*produceDomain.Produce, error) {
	var out produceDomain.Produce
	res := r.db.WithContext(ctx).Where("produce_id = ?", produceID).First(&out)
	return &out, res.Error
}

// Pledge reserves the item for loanID, locking the row so two approvals
// racing for the same collateral cannot both win.
func (r *ProduceRepository) Pledge(ctx context.Context, produceID, loanID string, quantity float64) error {
	var p produceDomain.Produce
	if err := lockForUpdate(r.db.WithContext(ctx)).
		Where("produce_id = ?", produceID).
		First(&p).Error; err != nil {
		return err
	}
	if p.IsPledged {
		if p.PledgedToLoan != nil && *p.PledgedToLoan == loanID {
			return nil // already held by this loan
		}
		return produceDomain.ErrAlreadyPledged
	}
	now := nowUTC()
	p.IsPledged = true
	p.PledgedToLoan = &loanID
	p.PledgedQuantity = quantity
	p.PledgedAt = &now
	return r.db.WithContext(ctx).Save(&p).Error
}

// Release clears a pledge held by loanID. Already-free items, or items held
// by a different loan, are left untouched.
func (r *ProduceRepository) Release(ctx context.Context, produceID, loanID string) error {
	var p produceDomain.Produce
	if err := lockForUpdate(r.db.WithContext(ctx)).
		Where("produce_id = ?", produceID).
		First(&p).Error; err != nil {
		return err
	}
	if !p.IsPledged || p.PledgedToLoan == nil || *p.PledgedToLoan != loanID {
		return nil
	}
	return r.db.WithContext(ctx).Model(&p).
		Select("is_pledged", "pledged_to_loan", "pledged_quantity", "pledged_at").
		Updates(map[string]any{
			"is_pledged":       false,
			"pledged_to_loan":  nil,
			"pledged_quantity": 0,
			"pledged_at":       nil,
		}).Error
}
