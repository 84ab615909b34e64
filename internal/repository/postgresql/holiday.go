package postgresql

import (
	"context"

	"github.com/bureauhq/gripp-backend-go/internal/domain/holiday"
	"github.com/bureauhq/gripp-backend-go/internal/pkg/database"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.Repository {
	return &holidayRepositoryImpl{db: db}
}

func (r *holidayRepositoryImpl) GetAll(ctx context.Context) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, date, name, synced_at
		FROM holidays
		ORDER BY date
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []holiday.Holiday
	for rows.Next() {
		var h holiday.Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name, &h.SyncedAt); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	return holidays, rows.Err()
}

func (r *holidayRepositoryImpl) ReplaceAll(ctx context.Context, holidays []holiday.Holiday) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM holidays`); err != nil {
		return err
	}

	query := `
		INSERT INTO holidays (id, date, name, synced_at)
		VALUES ($1, $2, $3, NOW())
	`
	for _, h := range holidays {
		if _, err := q.Exec(ctx, query, h.ID, h.Date, h.Name); err != nil {
			return err
		}
	}
	return nil
}
