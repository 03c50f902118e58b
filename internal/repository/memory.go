package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/UnknownOlympus/hestia/internal/models"
)

// MemoryStore keeps employees in process memory. It backs the "memory" storage
// driver used for local runs and handler tests.
type MemoryStore struct {
	mu     sync.RWMutex
	rows   map[int]models.Employee
	nextID int
}

// NewMemoryStore returns an empty store whose first identifier is 1.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[int]models.Employee), nextID: 1}
}

// NewContext opens a unit of work on the store.
func (s *MemoryStore) NewContext() *MemoryContext {
	return &MemoryContext{store: s}
}

// MemoryContext is the in-memory unit of work. Reads return copies,
// so callers mutate their own records until SaveChanges.
type MemoryContext struct {
	changeSet

	store *MemoryStore
}

func (m *MemoryContext) ListAll(_ context.Context) ([]models.Employee, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	employees := make([]models.Employee, 0, len(m.store.rows))
	for _, employee := range m.store.rows {
		employees = append(employees, employee)
	}
	sort.Slice(employees, func(i, j int) bool { return employees[i].ID < employees[j].ID })

	return employees, nil
}

func (m *MemoryContext) FindByID(_ context.Context, identifier int) (*models.Employee, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	employee, ok := m.store.rows[identifier]
	if !ok {
		return nil, ErrEmployeeNotFound
	}

	return &employee, nil
}

func (m *MemoryContext) Exists(_ context.Context, identifier int) (bool, error) {
	m.store.mu.RLock()
	defer m.store.mu.RUnlock()

	_, ok := m.store.rows[identifier]

	return ok, nil
}

// SaveChanges validates the whole queue first and applies it only if every change can succeed.
func (m *MemoryContext) SaveChanges(ctx context.Context) error {
	if len(m.pending) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("failed to save employee changes: %w", err)
	}

	m.store.mu.Lock()
	defer m.store.mu.Unlock()

	live := make(map[int]bool, len(m.store.rows))
	for identifier := range m.store.rows {
		live[identifier] = true
	}
	inserted := make(map[*models.Employee]bool)
	for _, change := range m.pending {
		switch change.kind {
		case changeInsert:
			inserted[change.employee] = true
		case changeUpdate:
			if !live[change.employee.ID] && !inserted[change.employee] {
				return fmt.Errorf("failed to %s employee: %w", change.kind, ErrEmployeeNotFound)
			}
		case changeRemove:
			if !live[change.employee.ID] && !inserted[change.employee] {
				return fmt.Errorf("failed to %s employee: %w", change.kind, ErrEmployeeNotFound)
			}
			delete(live, change.employee.ID)
			delete(inserted, change.employee)
		}
	}

	for _, change := range m.pending {
		switch change.kind {
		case changeInsert:
			change.employee.ID = m.store.nextID
			m.store.nextID++
			m.store.rows[change.employee.ID] = *change.employee
		case changeUpdate:
			m.store.rows[change.employee.ID] = *change.employee
		case changeRemove:
			delete(m.store.rows, change.employee.ID)
		}
	}
	m.pending = nil

	return nil
}
