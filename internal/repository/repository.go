package repository

import (
	"context"
	"errors"

	"github.com/UnknownOlympus/hestia/internal/models"
)

// ErrEmployeeNotFound is returned when no row matches the requested identifier.
var ErrEmployeeNotFound = errors.New("employee not found")

// EmployeeRepoIface is a unit of work over the employees table.
// Insert, Update and Remove only queue a change; nothing reaches the store
// until SaveChanges applies the whole queue at once.
type EmployeeRepoIface interface {
	ListAll(ctx context.Context) ([]models.Employee, error)
	FindByID(ctx context.Context, identifier int) (*models.Employee, error)
	Exists(ctx context.Context, identifier int) (bool, error)
	Insert(employee *models.Employee)
	Update(employee *models.Employee)
	Remove(employee *models.Employee)
	SaveChanges(ctx context.Context) error
}

type changeKind int

const (
	changeInsert changeKind = iota
	changeUpdate
	changeRemove
)

func (k changeKind) String() string {
	switch k {
	case changeInsert:
		return "insert"
	case changeUpdate:
		return "update"
	case changeRemove:
		return "remove"
	default:
		return "unknown"
	}
}

type pendingChange struct {
	kind     changeKind
	employee *models.Employee
}

// changeSet is the queue of mutations shared by both unit of work implementations.
type changeSet struct {
	pending []pendingChange
}

func (c *changeSet) Insert(employee *models.Employee) {
	c.pending = append(c.pending, pendingChange{kind: changeInsert, employee: employee})
}

func (c *changeSet) Update(employee *models.Employee) {
	c.pending = append(c.pending, pendingChange{kind: changeUpdate, employee: employee})
}

func (c *changeSet) Remove(employee *models.Employee) {
	c.pending = append(c.pending, pendingChange{kind: changeRemove, employee: employee})
}

// Pending reports how many changes wait for SaveChanges.
func (c *changeSet) Pending() int {
	return len(c.pending)
}
