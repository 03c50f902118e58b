package models

import "github.com/shopspring/decimal"

//nolint:gochecknoinits // money is rendered as a JSON number across the whole service
func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// Employee represents an employee entity.
type Employee struct {
	ID             int             `json:"id"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	BirthDate      Date            `json:"birthDate"`
	Position       string          `json:"position"`
	HireDate       Date            `json:"hireDate"`
	GrossSalary    decimal.Decimal `json:"grossSalary"`
	EmploymentType string          `json:"employmentType"`
}
