package postgresql

import (
	"context"
	"time"

	"github.com/bureauhq/gripp-backend-go/internal/domain/hours"
	"github.com/bureauhq/gripp-backend-go/internal/pkg/database"
)

type hoursRepositoryImpl struct {
	db *database.DB
}

func NewHoursRepository(db *database.DB) hours.Repository {
	return &hoursRepositoryImpl{db: db}
}

func (r *hoursRepositoryImpl) GetByRange(ctx context.Context, start, end time.Time) ([]hours.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, date, amount, project_id, synced_at
		FROM hour_entries
		WHERE date >= $1 AND date <= $2
		ORDER BY employee_id, date
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []hours.Entry
	for rows.Next() {
		var e hours.Entry
		if err := rows.Scan(&e.ID, &e.EmployeeID, &e.Date, &e.Amount, &e.ProjectID, &e.SyncedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *hoursRepositoryImpl) ReplaceAll(ctx context.Context, entries []hours.Entry) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM hour_entries`); err != nil {
		return err
	}

	query := `
		INSERT INTO hour_entries (id, employee_id, date, amount, project_id, synced_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
	`
	for _, e := range entries {
		if _, err := q.Exec(ctx, query, e.ID, e.EmployeeID, e.Date, e.Amount, e.ProjectID); err != nil {
			return err
		}
	}
	return nil
}
