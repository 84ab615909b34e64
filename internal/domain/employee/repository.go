package employee

import "context"

type Repository interface {
	GetAll(ctx context.Context, activeOnly bool) ([]Employee, error)
	// ReplaceAll deletes and re-inserts the full employee set. Runs inside
	// the transaction carried on ctx when one is present.
	ReplaceAll(ctx context.Context, employees []Employee) error
}
