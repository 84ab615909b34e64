package postgresql

import (
	"context"
	"time"

	"github.com/bureauhq/gripp-backend-go/internal/domain/contract"
	"github.com/bureauhq/gripp-backend-go/internal/pkg/database"
)

type contractRepositoryImpl struct {
	db *database.DB
}

func NewContractRepository(db *database.DB) contract.Repository {
	return &contractRepositoryImpl{db: db}
}

func (r *contractRepositoryImpl) GetByRange(ctx context.Context, start, end time.Time) ([]contract.Contract, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, employee_id, start_date, end_date,
			   even_mon, even_tue, even_wed, even_thu, even_fri,
			   odd_mon, odd_tue, odd_wed, odd_thu, odd_fri,
			   synced_at
		FROM contracts
		WHERE start_date <= $2
		  AND (end_date IS NULL OR end_date >= $1)
		ORDER BY employee_id, start_date
	`

	rows, err := q.Query(ctx, query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []contract.Contract
	for rows.Next() {
		var c contract.Contract
		err := rows.Scan(
			&c.ID,
			&c.EmployeeID,
			&c.StartDate,
			&c.EndDate,
			&c.EvenHours[0], &c.EvenHours[1], &c.EvenHours[2], &c.EvenHours[3], &c.EvenHours[4],
			&c.OddHours[0], &c.OddHours[1], &c.OddHours[2], &c.OddHours[3], &c.OddHours[4],
			&c.SyncedAt,
		)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, c)
	}
	return contracts, rows.Err()
}

func (r *contractRepositoryImpl) ReplaceAll(ctx context.Context, contracts []contract.Contract) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM contracts`); err != nil {
		return err
	}

	query := `
		INSERT INTO contracts (
			id, employee_id, start_date, end_date,
			even_mon, even_tue, even_wed, even_thu, even_fri,
			odd_mon, odd_tue, odd_wed, odd_thu, odd_fri,
			synced_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
	`
	for _, c := range contracts {
		_, err := q.Exec(ctx, query,
			c.ID, c.EmployeeID, c.StartDate, c.EndDate,
			c.EvenHours[0], c.EvenHours[1], c.EvenHours[2], c.EvenHours[3], c.EvenHours[4],
			c.OddHours[0], c.OddHours[1], c.OddHours[2], c.OddHours[3], c.OddHours[4],
		)
		if err != nil {
			return err
		}
	}
	return nil
}
