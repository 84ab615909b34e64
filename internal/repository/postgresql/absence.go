package postgresql

import (
	"context"
	"time"

	"github.com/bureauhq/gripp-backend-go/internal/domain/absence"
	"github.com/bureauhq/gripp-backend-go/internal/pkg/database"
)

type absenceRepositoryImpl struct {
	db *database.DB
}

func NewAbsenceRepository(db *database.DB) absence.Repository {
	return &absenceRepositoryImpl{db: db}
}

func (r *absenceRepositoryImpl) GetLinesByRange(ctx context.Context, start, end time.Time) ([]absence.Line, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, request_id, employee_id, date, hours, status, synced_at
		FROM absence_lines
		WHERE date >= $1 AND date <= $2
		ORDER BY employee_id, date
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []absence.Line
	for rows.Next() {
		var l absence.Line
		if err := rows.Scan(&l.ID, &l.RequestID, &l.EmployeeID, &l.Date, &l.Hours, &l.Status, &l.SyncedAt); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

func (r *absenceRepositoryImpl) ReplaceAll(ctx context.Context, lines []absence.Line) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM absence_lines`); err != nil {
		return err
	}

	query := `
		INSERT INTO absence_lines (id, request_id, employee_id, date, hours, status, synced_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
	`
	for _, l := range lines {
		if _, err := q.Exec(ctx, query, l.ID, l.RequestID, l.EmployeeID, l.Date, l.Hours, l.Status); err != nil {
			return err
		}
	}
	return nil
}
