package postgresql

import (
	"context"

	"github.com/bureauhq/gripp-backend-go/internal/domain/employee"
	"github.com/bureauhq/gripp-backend-go/internal/pkg/database"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.Repository {
	return &employeeRepositoryImpl{db: db}
}

func (r *employeeRepositoryImpl) GetAll(ctx context.Context, activeOnly bool) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, function, active, synced_at
		FROM employees
	`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name, id`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		var e employee.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Function, &e.Active, &e.SyncedAt); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *employeeRepositoryImpl) ReplaceAll(ctx context.Context, employees []employee.Employee) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM employees`); err != nil {
		return err
	}

	query := `
		INSERT INTO employees (id, name, function, active, synced_at)
		VALUES ($1, $2, $3, $4, NOW())
	`
	for _, e := range employees {
		if _, err := q.Exec(ctx, query, e.ID, e.Name, e.Function, e.Active); err != nil {
			return err
		}
	}
	return nil
}
