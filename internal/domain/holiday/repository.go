package holiday

import "context"

type Repository interface {
	GetAll(ctx context.Context) ([]Holiday, error)
	ReplaceAll(ctx context.Context, holidays []Holiday) error
}
