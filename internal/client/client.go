package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/UnknownOlympus/hestia/internal/lib/logger/sl"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/services/employees"
)

const employeesPath = "/api/employees"

// ErrNotFound matches any StatusError carrying 404.
var ErrNotFound = errors.New("employee not found")

// StatusError is returned when the API answers with a non-success status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.Code)
	}

	return fmt.Sprintf("unexpected status %d: %s", e.Code, e.Message)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.Code == http.StatusNotFound
}

// Client talks to the employee API.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// New builds a Client for the service at baseURL, e.g. "http://localhost:8080".
// A nil log disables client logging.
func New(baseURL string, log *slog.Logger) *Client {
	if log == nil {
		log = sl.Discard()
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    CreateHTTPClient(log),
		log:     log,
	}
}

// List fetches every employee.
func (c *Client) List(ctx context.Context) ([]models.Employee, error) {
	var list []models.Employee
	if _, err := c.do(ctx, http.MethodGet, employeesPath, nil, http.StatusOK, &list); err != nil {
		return nil, err
	}

	return list, nil
}

// Get fetches one employee by identifier.
func (c *Client) Get(ctx context.Context, identifier int) (*models.Employee, error) {
	var employee models.Employee
	if _, err := c.do(ctx, http.MethodGet, employeePath(identifier), nil, http.StatusOK, &employee); err != nil {
		return nil, err
	}

	return &employee, nil
}

// Create stores a new employee and returns it along with its Location header.
func (c *Client) Create(ctx context.Context, input employees.EmployeeInput) (*models.Employee, string, error) {
	var employee models.Employee
	header, err := c.do(ctx, http.MethodPost, employeesPath, input, http.StatusCreated, &employee)
	if err != nil {
		return nil, "", err
	}

	return &employee, header.Get("Location"), nil
}

// Update merges input into the employee with the given identifier.
func (c *Client) Update(
	ctx context.Context,
	identifier int,
	input employees.EmployeeInput,
) (*models.Employee, error) {
	var employee models.Employee
	if _, err := c.do(ctx, http.MethodPut, employeePath(identifier), input, http.StatusOK, &employee); err != nil {
		return nil, err
	}

	return &employee, nil
}

// Delete removes the employee with the given identifier.
func (c *Client) Delete(ctx context.Context, identifier int) error {
	_, err := c.do(ctx, http.MethodDelete, employeePath(identifier), nil, http.StatusNoContent, nil)

	return err
}

// Search returns employees whose first or last name contains query.
func (c *Client) Search(ctx context.Context, query string) ([]models.Employee, error) {
	var list []models.Employee
	path := employeesPath + "/search?" + url.Values{"query": {query}}.Encode()
	if _, err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &list); err != nil {
		return nil, err
	}

	return list, nil
}

func employeePath(identifier int) string {
	return employeesPath + "/" + strconv.Itoa(identifier)
}

func (c *Client) do(
	ctx context.Context,
	method, path string,
	body any,
	wantStatus int,
	out any,
) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.DebugContext(ctx, "API response", "method", method, "path", path, "status", resp.StatusCode)

	if resp.StatusCode != wantStatus {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096)) //nolint:mnd // error bodies are short
		return nil, &StatusError{Code: resp.StatusCode, Message: strings.TrimSpace(string(msg))}
	}

	if out != nil {
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("failed to decode response body: %w", err)
		}
	}

	return resp.Header, nil
}
