package employees_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/UnknownOlympus/hestia/internal/metrics"
	"github.com/UnknownOlympus/hestia/internal/models"
	"github.com/UnknownOlympus/hestia/internal/repository"
	"github.com/UnknownOlympus/hestia/internal/services/employees"
	mocks "github.com/UnknownOlympus/hestia/mock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func intPtr(i int) *int { return &i }

func storedEmployee() models.Employee {
	return models.Employee{
		ID:             1,
		FirstName:      "Anna",
		LastName:       "Kowalska",
		BirthDate:      models.NewDate(1990, time.January, 1),
		Position:       "Analyst",
		HireDate:       models.NewDate(2020, time.January, 1),
		GrossSalary:    decimal.NewFromInt(5000),
		EmploymentType: "FullTime",
	}
}

func newRegistry(t *testing.T) (*employees.Registry, *mocks.EmployeeRepoIface, *metrics.Metrics) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockRepo := mocks.NewEmployeeRepoIface(t)
	appMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	factory := func() repository.EmployeeRepoIface { return mockRepo }

	return employees.NewRegistry(logger, factory, appMetrics), mockRepo, appMetrics
}

func TestNewRegistry(t *testing.T) {
	t.Parallel()

	registry, _, _ := newRegistry(t)

	assert.NotNil(t, registry)
}

func TestRegistry_List(t *testing.T) {
	t.Parallel()

	t.Run("returns every employee", func(t *testing.T) {
		t.Parallel()

		registry, mockRepo, _ := newRegistry(t)
		mockRepo.On("ListAll", mock.Anything).Return([]models.Employee{storedEmployee()}, nil).Once()

		list, err := registry.List(context.Background())

		require.NoError(t, err)
		assert.Len(t, list, 1)
	})

	t.Run("empty store is not an error", func(t *testing.T) {
		t.Parallel()

		registry, mockRepo, _ := newRegistry(t)
		mockRepo.On("ListAll", mock.Anything).Return([]models.Employee{}, nil).Once()

		list, err := registry.List(context.Background())

		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("store error is wrapped", func(t *testing.T) {
		t.Parallel()

		registry, mockRepo, _ := newRegistry(t)
		mockRepo.On("ListAll", mock.Anything).Return(nil, assert.AnError).Once()

		_, err := registry.List(context.Background())

		require.ErrorIs(t, err, assert.AnError)
	})
}

func TestRegistry_Get(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		registry, mockRepo, _ := newRegistry(t)
		expected := storedEmployee()
		mockRepo.On("FindByID", mock.Anything, 1).Return(&expected, nil).Once()

		actual, err := registry.Get(context.Background(), 1)

		require.NoError(t, err)
		assert.Equal(t, expected, *actual)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		registry, mockRepo, _ := newRegistry(t)
		mockRepo.On("FindByID", mock.Anything, 5).Return(nil, repository.ErrEmployeeNotFound).Once()

		_, err := registry.Get(context.Background(), 5)

		require.ErrorIs(t, err, repository.ErrEmployeeNotFound)
	})
}

func TestRegistry_Create(t *testing.T) {
	t.Parallel()

	t.Run("ignores client id and returns store id", func(t *testing.T) {
		t.Parallel()

		registry, mockRepo, appMetrics := newRegistry(t)
		salary := decimal.NewFromInt(5000)
		input := employees.EmployeeInput{
			ID:          intPtr(77),
			FirstName:   strPtr("Anna"),
			LastName:    strPtr("Kowalska"),
			GrossSalary: &salary,
		}

		var inserted *models.Employee
		mockRepo.On("Insert", mock.AnythingOfType("*models.Employee")).
			Run(func(args mock.Arguments) {
				inserted = args.Get(0).(*models.Employee)
				assert.Equal(t, 0, inserted.ID)
			}).Once()
		mockRepo.On("SaveChanges", mock.Anything).
			Run(func(_ mock.Arguments) { inserted.ID = 1 }).
			Return(nil).Once()

		created, err := registry.Create(context.Background(), input)

		require.NoError(t, err)
		assert.Equal(t, 1, created.ID)
		assert.Equal(t, "Anna", created.FirstName)
		assert.True(t, salary.Equal(created.GrossSalary))
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.EmployeeMutations.WithLabelValues("create")), 0)
	})

	t.Run("save error", func(t *testing.T) {
		t.Parallel()

		registry, mockRepo, appMetrics := newRegistry(t)
		mockRepo.On("Insert", mock.Anything).Once()
		mockRepo.On("SaveChanges", mock.Anything).Return(assert.AnError).Once()

		_, err := registry.Create(context.Background(), employees.EmployeeInput{})

		require.ErrorIs(t, err, assert.AnError)
		require.ErrorContains(t, err, "failed to create employee")
		assert.InDelta(t, 0, testutil.ToFloat64(appMetrics.EmployeeMutations.WithLabelValues("create")), 0)
	})
}

func TestRegistry_Delete(t *testing.T) {
	t.Parallel()

	t.Run("existing employee", func(t *testing.T) {
		t.Parallel()

		registry, mockRepo, _ := newRegistry(t)
		existing := storedEmployee()
		mockRepo.On("FindByID", mock.Anything, 1).Return(&existing, nil).Once()
		mockRepo.On("Remove", &existing).Once()
		mockRepo.On("SaveChanges", mock.Anything).Return(nil).Once()

		require.NoError(t, registry.Delete(context.Background(), 1))
	})

	t.Run("missing employee never reaches the store", func(t *testing.T) {
		t.Parallel()

		registry, mockRepo, _ := newRegistry(t)
		mockRepo.On("FindByID", mock.Anything, 9).Return(nil, repository.ErrEmployeeNotFound).Once()

		err := registry.Delete(context.Background(), 9)

		require.ErrorIs(t, err, repository.ErrEmployeeNotFound)
		mockRepo.AssertNotCalled(t, "Remove", mock.Anything)
		mockRepo.AssertNotCalled(t, "SaveChanges", mock.Anything)
	})
}

func TestRegistry_Search(t *testing.T) {
	t.Parallel()

	anna := storedEmployee()
	jan := storedEmployee()
	jan.ID, jan.FirstName, jan.LastName = 2, "Jan", "Nowak"
	ewa := storedEmployee()
	ewa.ID, ewa.FirstName, ewa.LastName = 3, "Ewa", "Annowska"
	all := []models.Employee{anna, jan, ewa}

	tests := []struct {
		name    string
		query   string
		wantIDs []int
	}{
		{name: "empty query returns all", query: "", wantIDs: []int{1, 2, 3}},
		{name: "first name substring", query: "Ann", wantIDs: []int{1, 3}},
		{name: "last name substring", query: "owa", wantIDs: []int{1, 2}},
		{name: "case sensitive", query: "anna", wantIDs: []int{}},
		{name: "no match", query: "Zbigniew", wantIDs: []int{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			registry, mockRepo, _ := newRegistry(t)
			mockRepo.On("ListAll", mock.Anything).Return(all, nil).Once()

			matches, err := registry.Search(context.Background(), tt.query)

			require.NoError(t, err)
			ids := make([]int, 0, len(matches))
			for _, employee := range matches {
				ids = append(ids, employee.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestRegistry_Update(t *testing.T) {
	t.Parallel()

	t.Run("mismatched ids fail before any lookup", func(t *testing.T) {
		t.Parallel()

		registry, mockRepo, _ := newRegistry(t)

		_, err := registry.Update(context.Background(), 1, employees.EmployeeInput{ID: intPtr(2)})

		require.ErrorIs(t, err, employees.ErrIDMismatch)
		mockRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("missing body id is a mismatch", func(t *testing.T) {
		t.Parallel()

		registry, _, _ := newRegistry(t)

		_, err := registry.Update(context.Background(), 1, employees.EmployeeInput{})

		require.ErrorIs(t, err, employees.ErrIDMismatch)
	})

	t.Run("not found", func(t *testing.T) {
		t.Parallel()

		registry, mockRepo, _ := newRegistry(t)
		mockRepo.On("FindByID", mock.Anything, 3).Return(nil, repository.ErrEmployeeNotFound).Once()

		_, err := registry.Update(context.Background(), 3, employees.EmployeeInput{ID: intPtr(3)})

		require.ErrorIs(t, err, repository.ErrEmployeeNotFound)
		require.NotErrorIs(t, err, employees.ErrUpdateFailed)
	})

	t.Run("merges only present values", func(t *testing.T) {
		t.Parallel()

		registry, mockRepo, appMetrics := newRegistry(t)
		existing := storedEmployee()
		zero := decimal.Zero
		mockRepo.On("FindByID", mock.Anything, 1).Return(&existing, nil).Once()
		mockRepo.On("Update", &existing).Once()
		mockRepo.On("SaveChanges", mock.Anything).Return(nil).Once()

		updated, err := registry.Update(context.Background(), 1, employees.EmployeeInput{
			ID:          intPtr(1),
			Position:    strPtr("SeniorAnalyst"),
			GrossSalary: &zero,
		})

		require.NoError(t, err)
		assert.Equal(t, "SeniorAnalyst", updated.Position)
		assert.Equal(t, "Anna", updated.FirstName)
		assert.Equal(t, "Kowalska", updated.LastName)
		assert.True(t, decimal.NewFromInt(5000).Equal(updated.GrossSalary))
		assert.InDelta(t, 1, testutil.ToFloat64(appMetrics.EmployeeMutations.WithLabelValues("update")), 0)
	})

	t.Run("lookup failure is an update failure", func(t *testing.T) {
		t.Parallel()

		registry, mockRepo, _ := newRegistry(t)
		mockRepo.On("FindByID", mock.Anything, 1).Return(nil, assert.AnError).Once()

		_, err := registry.Update(context.Background(), 1, employees.EmployeeInput{ID: intPtr(1)})

		require.ErrorIs(t, err, employees.ErrUpdateFailed)
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("commit failure is an update failure", func(t *testing.T) {
		t.Parallel()

		registry, mockRepo, _ := newRegistry(t)
		existing := storedEmployee()
		mockRepo.On("FindByID", mock.Anything, 1).Return(&existing, nil).Once()
		mockRepo.On("Update", &existing).Once()
		mockRepo.On("SaveChanges", mock.Anything).Return(assert.AnError).Once()

		_, err := registry.Update(context.Background(), 1, employees.EmployeeInput{ID: intPtr(1)})

		require.ErrorIs(t, err, employees.ErrUpdateFailed)
	})
}

func TestIsEmployeeExists(t *testing.T) {
	t.Parallel()

	t.Run("exists", func(t *testing.T) {
		t.Parallel()

		mockRepo := mocks.NewEmployeeRepoIface(t)
		mockRepo.On("Exists", mock.Anything, 123).Return(true, nil).Once()

		assert.True(t, employees.IsEmployeeExists(context.Background(), 123, mockRepo))
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()

		mockRepo := mocks.NewEmployeeRepoIface(t)
		mockRepo.On("Exists", mock.Anything, 123).Return(false, nil).Once()

		assert.False(t, employees.IsEmployeeExists(context.Background(), 123, mockRepo))
	})

	t.Run("error counts as missing", func(t *testing.T) {
		t.Parallel()

		mockRepo := mocks.NewEmployeeRepoIface(t)
		mockRepo.On("Exists", mock.Anything, 123).Return(false, assert.AnError).Once()

		assert.False(t, employees.IsEmployeeExists(context.Background(), 123, mockRepo))
	})
}

func TestRegistry_Exists(t *testing.T) {
	t.Parallel()

	registry, mockRepo, _ := newRegistry(t)
	mockRepo.On("Exists", mock.Anything, 1).Return(true, nil).Once()

	assert.True(t, registry.Exists(context.Background(), 1))
}
