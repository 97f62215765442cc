package produce

import (
	"context"
	"errors"
)

var ErrAlreadyPledged = errors.New("produce already pledged to another loan")

// Repository is the narrow boundary to the produce inventory. Pledge and
// Release participate in the loan transaction so a loan can never be active
// without its collateral reserved, or vice versa.
type Repository interface {
	Resolve(ctx context.Context, produceID string) (*Produce, error)

	// Pledge reserves the produce for loanID. Fails with ErrAlreadyPledged
	// when the item is held by a different loan.
	Pledge(ctx context.Context, produceID, loanID string, quantity float64) error

	// Release clears the pledge held by loanID. Releasing an already-free
	// item is a no-op.
	Release(ctx context.Context, produceID, loanID string) error
}
