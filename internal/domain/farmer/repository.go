package farmer

import "context"

type Repository interface {
	Resolve(ctx context.Context, farmerID string) (*Farmer, error)
}
