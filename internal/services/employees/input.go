package employees

import (
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/shopspring/decimal"
)

// EmployeeInput is the request body of create and update calls.
// A nil field was not sent by the client.
type EmployeeInput struct {
	ID             *int             `json:"id"`
	FirstName      *string          `json:"firstName"`
	LastName       *string          `json:"lastName"`
	BirthDate      *models.Date     `json:"birthDate"`
	Position       *string          `json:"position"`
	HireDate       *models.Date     `json:"hireDate"`
	GrossSalary    *decimal.Decimal `json:"grossSalary"`
	EmploymentType *string          `json:"employmentType"`
}

// BodyID returns the identifier carried by the body, 0 when absent.
func (in EmployeeInput) BodyID() int {
	if in.ID == nil {
		return 0
	}

	return *in.ID
}

// NewEmployee builds a record from the input. The identifier is left for the store to assign.
func (in EmployeeInput) NewEmployee() models.Employee {
	var employee models.Employee

	setText(&employee.FirstName, in.FirstName)
	setText(&employee.LastName, in.LastName)
	setText(&employee.Position, in.Position)
	setText(&employee.EmploymentType, in.EmploymentType)
	if in.BirthDate != nil {
		employee.BirthDate = *in.BirthDate
	}
	if in.HireDate != nil {
		employee.HireDate = *in.HireDate
	}
	if in.GrossSalary != nil {
		employee.GrossSalary = *in.GrossSalary
	}

	return employee
}

// MergeInto overwrites the fields of existing that carry a usable value:
// text must be non-empty, dates must not be the zero date, salary must be above zero.
// Everything else is left untouched, so a client cannot clear a field this way.
func (in EmployeeInput) MergeInto(existing *models.Employee) {
	mergeText(&existing.FirstName, in.FirstName)
	mergeText(&existing.LastName, in.LastName)
	mergeDate(&existing.BirthDate, in.BirthDate)
	mergeText(&existing.Position, in.Position)
	mergeDate(&existing.HireDate, in.HireDate)
	if in.GrossSalary != nil && in.GrossSalary.IsPositive() {
		existing.GrossSalary = *in.GrossSalary
	}
	mergeText(&existing.EmploymentType, in.EmploymentType)
}

func setText(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func mergeText(dst *string, src *string) {
	if src != nil && *src != "" {
		*dst = *src
	}
}

func mergeDate(dst *models.Date, src *models.Date) {
	if src != nil && !src.IsZero() {
		*dst = *src
	}
}
