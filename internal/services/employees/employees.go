package employees

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/UnknownOlympus/hestia/internal/lib/logger/sl"
	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/repository"
)

var (
	// ErrIDMismatch is returned by Update when the path and body identifiers differ.
	ErrIDMismatch = errors.New("identifier in path differs from identifier in body")
	// ErrUpdateFailed wraps any unexpected failure while merging or committing an update.
	ErrUpdateFailed = errors.New("employee update failed")
)

// RepoFactory opens a fresh unit of work. Registry calls it once per operation.
type RepoFactory func() repository.EmployeeRepoIface

type Registry struct {
	log     *slog.Logger
	newRepo RepoFactory
	metrics *metrics.Metrics
}

func NewRegistry(log *slog.Logger, newRepo RepoFactory, metrics *metrics.Metrics) *Registry {
	return &Registry{log: log, newRepo: newRepo, metrics: metrics}
}

func (r *Registry) initLogger(opn string) *slog.Logger {
	return r.log.With(
		sl.Op(opn),
		slog.String("division", "employee"),
	)
}

// List returns all stored employees.
func (r *Registry) List(ctx context.Context) ([]models.Employee, error) {
	employees, err := r.newRepo().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	return employees, nil
}

// Get returns the employee with the given identifier or repository.ErrEmployeeNotFound.
func (r *Registry) Get(ctx context.Context, identifier int) (*models.Employee, error) {
	employee, err := r.newRepo().FindByID(ctx, identifier)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee %d: %w", identifier, err)
	}

	return employee, nil
}

// Create stores a new employee. Any identifier in the input is ignored.
func (r *Registry) Create(ctx context.Context, input EmployeeInput) (*models.Employee, error) {
	const opn = "Employee.Create"
	log := r.initLogger(opn)

	employee := input.NewEmployee()

	repo := r.newRepo()
	repo.Insert(&employee)
	if err := repo.SaveChanges(ctx); err != nil {
		return nil, fmt.Errorf("failed to create employee: %w", err)
	}

	r.metrics.EmployeeMutations.WithLabelValues("create").Inc()
	log.InfoContext(ctx, "Employee created", "id", employee.ID)

	return &employee, nil
}

// Delete removes the employee with the given identifier.
func (r *Registry) Delete(ctx context.Context, identifier int) error {
	const opn = "Employee.Delete"
	log := r.initLogger(opn)

	repo := r.newRepo()
	employee, err := repo.FindByID(ctx, identifier)
	if err != nil {
		return fmt.Errorf("failed to find employee %d: %w", identifier, err)
	}

	repo.Remove(employee)
	if err = repo.SaveChanges(ctx); err != nil {
		return fmt.Errorf("failed to delete employee %d: %w", identifier, err)
	}

	r.metrics.EmployeeMutations.WithLabelValues("delete").Inc()
	log.InfoContext(ctx, "Employee deleted", "id", identifier)

	return nil
}

// Search returns employees whose first or last name contains query.
// Matching is case-sensitive and an empty query matches every employee.
func (r *Registry) Search(ctx context.Context, query string) ([]models.Employee, error) {
	employees, err := r.newRepo().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to search employees: %w", err)
	}

	matches := make([]models.Employee, 0, len(employees))
	for _, employee := range employees {
		if strings.Contains(employee.FirstName, query) || strings.Contains(employee.LastName, query) {
			matches = append(matches, employee)
		}
	}

	return matches, nil
}

// Update merges input into the stored employee, see EmployeeInput.MergeInto.
// It fails with ErrIDMismatch before touching the store when the identifiers differ.
func (r *Registry) Update(ctx context.Context, identifier int, input EmployeeInput) (*models.Employee, error) {
	const opn = "Employee.Update"
	log := r.initLogger(opn)

	if input.BodyID() != identifier {
		return nil, fmt.Errorf("%w: path %d, body %d", ErrIDMismatch, identifier, input.BodyID())
	}

	repo := r.newRepo()
	existing, err := repo.FindByID(ctx, identifier)
	if errors.Is(err, repository.ErrEmployeeNotFound) {
		return nil, fmt.Errorf("failed to find employee %d: %w", identifier, err)
	}
	if err != nil {
		log.ErrorContext(ctx, "Failed to load employee for update", "id", identifier, sl.Err(err))
		return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	input.MergeInto(existing)
	repo.Update(existing)

	if err = repo.SaveChanges(ctx); err != nil {
		log.ErrorContext(ctx, "Failed to save employee update", "id", identifier, sl.Err(err))
		return nil, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	r.metrics.EmployeeMutations.WithLabelValues("update").Inc()
	log.DebugContext(ctx, "Employee updated", "id", identifier)

	return existing, nil
}

// Exists reports whether an employee with the identifier is stored.
func (r *Registry) Exists(ctx context.Context, identifier int) bool {
	return IsEmployeeExists(ctx, identifier, r.newRepo())
}

// IsEmployeeExists checks if an employee with the given ID exists in the repository.
// Lookup errors are treated as absence.
func IsEmployeeExists(ctx context.Context, employeeID int, repo repository.EmployeeRepoIface) bool {
	exists, err := repo.Exists(ctx, employeeID)
	if err != nil {
		return false
	}

	return exists
}
