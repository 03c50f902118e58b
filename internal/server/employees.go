package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/UnknownOlympus/hestia/internal/lib/logger/sl"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/repository"
	"github.com/UnknownOlympus/hestia/internal/services/employees"
	"github.com/gin-gonic/gin"
)

const (
	msgIDMismatch    = "ID in URL differs from ID in body."
	msgUpdateFailed  = "An error occurred while updating the employee."
	msgInternalError = "Internal Server Error"
	msgInvalidID     = "The employee ID must be an integer."
)

// EmployeeService is what the HTTP layer needs from the employee registry.
type EmployeeService interface {
	List(ctx context.Context) ([]models.Employee, error)
	Get(ctx context.Context, identifier int) (*models.Employee, error)
	Create(ctx context.Context, input employees.EmployeeInput) (*models.Employee, error)
	Update(ctx context.Context, identifier int, input employees.EmployeeInput) (*models.Employee, error)
	Delete(ctx context.Context, identifier int) error
	Search(ctx context.Context, query string) ([]models.Employee, error)
}

type EmployeeHandler struct {
	service EmployeeService
	log     *slog.Logger
}

func NewEmployeeHandler(service EmployeeService, log *slog.Logger) *EmployeeHandler {
	return &EmployeeHandler{service: service, log: log.With(slog.String("division", "http"))}
}

// Register mounts the employee routes on the group. The collection is served
// with and without a trailing slash.
func (h *EmployeeHandler) Register(group *gin.RouterGroup) {
	for _, root := range []string{"", "/"} {
		group.GET(root, h.List)
		group.POST(root, h.Create)
	}
	group.GET("/search", h.Search)
	group.GET("/:id", h.Get)
	group.PUT("/:id", h.Update)
	group.DELETE("/:id", h.Delete)
}

// List handles GET /api/employees.
func (h *EmployeeHandler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		h.internalError(c, "Employee.List", err)
		return
	}

	c.JSON(http.StatusOK, nonNil(list))
}

// Get handles GET /api/employees/:id.
func (h *EmployeeHandler) Get(c *gin.Context) {
	identifier, ok := h.pathID(c)
	if !ok {
		return
	}

	employee, err := h.service.Get(c.Request.Context(), identifier)
	switch {
	case errors.Is(err, repository.ErrEmployeeNotFound):
		c.Status(http.StatusNotFound)
	case err != nil:
		h.internalError(c, "Employee.Get", err)
	default:
		c.JSON(http.StatusOK, employee)
	}
}

// Create handles POST /api/employees.
func (h *EmployeeHandler) Create(c *gin.Context) {
	var input employees.EmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.log.DebugContext(c.Request.Context(), "Invalid create request body", sl.Err(err))
		c.String(http.StatusBadRequest, bindingMessage(err))
		return
	}

	employee, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		h.internalError(c, "Employee.Create", err)
		return
	}

	c.Header("Location", fmt.Sprintf("%s/%d", BasePath, employee.ID))
	c.JSON(http.StatusCreated, employee)
}

// Delete handles DELETE /api/employees/:id.
func (h *EmployeeHandler) Delete(c *gin.Context) {
	identifier, ok := h.pathID(c)
	if !ok {
		return
	}

	err := h.service.Delete(c.Request.Context(), identifier)
	switch {
	case errors.Is(err, repository.ErrEmployeeNotFound):
		c.Status(http.StatusNotFound)
	case err != nil:
		h.internalError(c, "Employee.Delete", err)
	default:
		c.Status(http.StatusNoContent)
	}
}

// Search handles GET /api/employees/search?query=.
func (h *EmployeeHandler) Search(c *gin.Context) {
	matches, err := h.service.Search(c.Request.Context(), c.Query("query"))
	if err != nil {
		h.internalError(c, "Employee.Search", err)
		return
	}

	c.JSON(http.StatusOK, nonNil(matches))
}

// Update handles PUT /api/employees/:id.
func (h *EmployeeHandler) Update(c *gin.Context) {
	identifier, ok := h.pathID(c)
	if !ok {
		return
	}

	var input employees.EmployeeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.log.DebugContext(c.Request.Context(), "Invalid update request body", sl.Err(err))
		c.String(http.StatusBadRequest, bindingMessage(err))
		return
	}

	employee, err := h.service.Update(c.Request.Context(), identifier, input)
	switch {
	case errors.Is(err, employees.ErrIDMismatch):
		c.String(http.StatusBadRequest, msgIDMismatch)
	case errors.Is(err, repository.ErrEmployeeNotFound):
		c.String(http.StatusNotFound, "Employee with ID %d was not found.", identifier)
	case err != nil:
		h.log.ErrorContext(c.Request.Context(), "Error while updating employee", sl.Op("Employee.Update"),
			"id", identifier, sl.Err(err))
		c.String(http.StatusInternalServerError, msgUpdateFailed)
	default:
		c.JSON(http.StatusOK, employee)
	}
}

func (h *EmployeeHandler) pathID(c *gin.Context) (int, bool) {
	identifier, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.String(http.StatusBadRequest, msgInvalidID)
		return 0, false
	}

	return identifier, true
}

func (h *EmployeeHandler) internalError(c *gin.Context, opn string, err error) {
	h.log.ErrorContext(c.Request.Context(), "Request failed", sl.Op(opn), sl.Err(err))
	c.String(http.StatusInternalServerError, msgInternalError)
}

func nonNil(list []models.Employee) []models.Employee {
	if list == nil {
		return []models.Employee{}
	}

	return list
}
