package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	listEmployeesQuery = `
		SELECT id, first_name, last_name, birth_date, position, hire_date, gross_salary::text, employment_type
		FROM employees
		ORDER BY id`
	findEmployeeQuery = `
		SELECT id, first_name, last_name, birth_date, position, hire_date, gross_salary::text, employment_type
		FROM employees
		WHERE id = $1`
	existsEmployeeQuery = `SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1)`
	insertEmployeeQuery = `
		INSERT INTO employees (first_name, last_name, birth_date, position, hire_date, gross_salary, employment_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	updateEmployeeQuery = `
		UPDATE employees
		SET first_name = $2, last_name = $3, birth_date = $4, position = $5, hire_date = $6,
			gross_salary = $7, employment_type = $8, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1`
	deleteEmployeeQuery = `DELETE FROM employees WHERE id = $1`
)

// EmployeeContext is the PostgreSQL unit of work for employees.
// It is cheap to build and must not be shared between requests.
type EmployeeContext struct {
	changeSet

	db      Database
	metrics *metrics.Metrics
}

// NewEmployeeRepository returns a fresh unit of work on top of the given database.
func NewEmployeeRepository(db Database, metrics *metrics.Metrics) *EmployeeContext {
	return &EmployeeContext{db: db, metrics: metrics}
}

func (r *EmployeeContext) observe(queryType string, startTime time.Time) {
	r.metrics.DBQueryDuration.WithLabelValues(queryType).Observe(time.Since(startTime).Seconds())
}

// ListAll returns every employee ordered by identifier.
func (r *EmployeeContext) ListAll(ctx context.Context) ([]models.Employee, error) {
	defer r.observe("list_employees", time.Now())

	rows, err := r.db.Query(ctx, listEmployeesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	employees := make([]models.Employee, 0)
	for rows.Next() {
		employee, scanErr := scanEmployee(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan employee row: %w", scanErr)
		}
		employees = append(employees, employee)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employee rows: %w", err)
	}

	return employees, nil
}

// FindByID retrieves an employee by its identifier.
func (r *EmployeeContext) FindByID(ctx context.Context, identifier int) (*models.Employee, error) {
	defer r.observe("get_employee_by_id", time.Now())

	employee, err := scanEmployee(r.db.QueryRow(ctx, findEmployeeQuery, identifier))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, fmt.Errorf("failed to get employee by id: %w", err)
	}

	return &employee, nil
}

// Exists reports whether an employee with the identifier is stored.
func (r *EmployeeContext) Exists(ctx context.Context, identifier int) (bool, error) {
	defer r.observe("employee_exists", time.Now())

	var exists bool
	if err := r.db.QueryRow(ctx, existsEmployeeQuery, identifier).Scan(&exists); err != nil {
		return false, fmt.Errorf("error checking the existence of the employee: %w", err)
	}

	return exists, nil
}

// SaveChanges applies all queued changes inside one transaction.
// Identifiers of inserted employees are written back only after the commit succeeds.
// On failure the transaction is rolled back and the queue is kept.
func (r *EmployeeContext) SaveChanges(ctx context.Context) error {
	if len(r.pending) == 0 {
		return nil
	}
	defer r.observe("save_changes", time.Now())

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	assigned := make(map[*models.Employee]int)
	for _, change := range r.pending {
		if err = applyChange(ctx, tx, change, assigned); err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				err = errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
			}
			return fmt.Errorf("failed to %s employee: %w", change.kind, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit employee changes: %w", err)
	}

	for employee, identifier := range assigned {
		employee.ID = identifier
	}
	r.pending = nil

	return nil
}

func applyChange(ctx context.Context, tx pgx.Tx, change pendingChange, assigned map[*models.Employee]int) error {
	employee := change.employee

	switch change.kind {
	case changeInsert:
		var identifier int
		err := tx.QueryRow(ctx, insertEmployeeQuery,
			employee.FirstName,
			employee.LastName,
			employee.BirthDate.Time,
			employee.Position,
			employee.HireDate.Time,
			employee.GrossSalary.String(),
			employee.EmploymentType,
		).Scan(&identifier)
		if err != nil {
			return err
		}
		assigned[employee] = identifier
	case changeUpdate:
		tag, err := tx.Exec(ctx, updateEmployeeQuery,
			employee.ID,
			employee.FirstName,
			employee.LastName,
			employee.BirthDate.Time,
			employee.Position,
			employee.HireDate.Time,
			employee.GrossSalary.String(),
			employee.EmploymentType,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrEmployeeNotFound
		}
	case changeRemove:
		tag, err := tx.Exec(ctx, deleteEmployeeQuery, employee.ID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrEmployeeNotFound
		}
	}

	return nil
}

func scanEmployee(row pgx.Row) (models.Employee, error) {
	var (
		employee models.Employee
		salary   string
	)

	err := row.Scan(
		&employee.ID,
		&employee.FirstName,
		&employee.LastName,
		&employee.BirthDate.Time,
		&employee.Position,
		&employee.HireDate.Time,
		&salary,
		&employee.EmploymentType,
	)
	if err != nil {
		return models.Employee{}, err
	}

	employee.GrossSalary, err = decimal.NewFromString(salary)
	if err != nil {
		return models.Employee{}, fmt.Errorf("invalid gross salary %q: %w", salary, err)
	}

	return employee, nil
}
