package dashboard

import (
	"context"
	"errors"
	"math"
	"testing"

	"invoice-dashboard-backend/internal/models"
	"invoice-dashboard-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockQueries struct {
	mock.Mock
}

func (m *MockQueries) Revenue(ctx context.Context) ([]models.Revenue, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Revenue), args.Error(1)
}

func (m *MockQueries) LatestInvoices(ctx context.Context, limit int) ([]repository.LatestInvoiceRaw, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.LatestInvoiceRaw), args.Error(1)
}

func (m *MockQueries) CountInvoices(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueries) CountCustomers(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockQueries) StatusTotals(ctx context.Context) (repository.StatusTotals, error) {
	args := m.Called(ctx)
	return args.Get(0).(repository.StatusTotals), args.Error(1)
}

func (m *MockQueries) InvoiceByID(ctx context.Context, id uuid.UUID) (*models.InvoiceForm, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InvoiceForm), args.Error(1)
}

func (m *MockQueries) FilteredCustomers(ctx context.Context, search string) ([]models.CustomerTotals, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CustomerTotals), args.Error(1)
}

type MockInvoiceSearcher struct {
	mock.Mock
}

func (m *MockInvoiceSearcher) Search(ctx context.Context, query string, limit, offset int) ([]models.InvoiceRow, error) {
	args := m.Called(ctx, query, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.InvoiceRow), args.Error(1)
}

func (m *MockInvoiceSearcher) CountMatching(ctx context.Context, query string) (int64, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(int64), args.Error(1)
}

type MockCustomerLister struct {
	mock.Mock
}

func (m *MockCustomerLister) ListFields(ctx context.Context) ([]models.CustomerField, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CustomerField), args.Error(1)
}

func newTestService() (*Service, *MockQueries, *MockInvoiceSearcher, *MockCustomerLister) {
	q := new(MockQueries)
	inv := new(MockInvoiceSearcher)
	cust := new(MockCustomerLister)
	return NewService(q, inv, cust, nil), q, inv, cust
}

func TestCardData(t *testing.T) {
	svc, q, _, _ := newTestService()
	q.On("CountInvoices", mock.Anything).Return(int64(13), nil)
	q.On("CountCustomers", mock.Anything).Return(int64(6), nil)
	q.On("StatusTotals", mock.Anything).Return(repository.StatusTotals{Paid: 123456, Pending: 500}, nil)

	card, err := svc.CardData(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.CardData{
		NumberOfInvoices:     13,
		NumberOfCustomers:    6,
		TotalPaidInvoices:    "$1,234.56",
		TotalPendingInvoices: "$5.00",
	}, card)
	q.AssertExpectations(t)
}

func TestCardData_AnyQueryFailing(t *testing.T) {
	svc, q, _, _ := newTestService()
	q.On("CountInvoices", mock.Anything).Return(int64(13), nil)
	q.On("CountCustomers", mock.Anything).Return(int64(0), errors.New("connection reset"))
	q.On("StatusTotals", mock.Anything).Return(repository.StatusTotals{}, nil)

	_, err := svc.CardData(context.Background())
	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.NotContains(t, err.Error(), "connection reset")
}

func TestLatestInvoices_FormatsAmounts(t *testing.T) {
	svc, q, _, _ := newTestService()
	id := uuid.New()
	q.On("LatestInvoices", mock.Anything, 5).Return([]repository.LatestInvoiceRaw{
		{ID: id, Name: "Lee Robinson", Email: "lee@robinson.com", ImageURL: "/customers/lee.png", Amount: 15795},
	}, nil)

	latest, err := svc.LatestInvoices(context.Background())
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, "$157.95", latest[0].Amount)
	assert.Equal(t, id, latest[0].ID)
}

func TestRevenue_Error(t *testing.T) {
	svc, q, _, _ := newTestService()
	q.On("Revenue", mock.Anything).Return(nil, errors.New("boom"))

	_, err := svc.Revenue(context.Background())
	assert.ErrorIs(t, err, ErrFetchFailed)
}

func TestFilteredInvoices_Paging(t *testing.T) {
	cases := []struct {
		name   string
		page   int
		offset int
	}{
		{"first page", 1, 0},
		{"third page", 3, 12},
		{"zero treated as first", 0, 0},
		{"negative treated as first", -4, 0},
		{"last allowed page", MaxPage, (MaxPage - 1) * ItemsPerPage},
		{"huge page capped", math.MaxInt, (MaxPage - 1) * ItemsPerPage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, inv, _ := newTestService()
			inv.On("Search", mock.Anything, "lee", ItemsPerPage, tc.offset).Return(nil, nil).Once()

			rows, err := svc.FilteredInvoices(context.Background(), "lee", tc.page)
			require.NoError(t, err)
			assert.NotNil(t, rows)
			assert.Empty(t, rows)
			inv.AssertExpectations(t)
		})
	}
}

func TestInvoicePages(t *testing.T) {
	cases := []struct {
		count int64
		pages int
	}{
		{0, 0},
		{1, 1},
		{6, 1},
		{7, 2},
		{13, 3},
	}
	for _, tc := range cases {
		svc, _, inv, _ := newTestService()
		inv.On("CountMatching", mock.Anything, "").Return(tc.count, nil)

		pages, err := svc.InvoicePages(context.Background(), "")
		require.NoError(t, err)
		assert.Equal(t, tc.pages, pages, "count %d", tc.count)
	}
}

func TestInvoiceByID(t *testing.T) {
	id := uuid.New()

	t.Run("converts cents to units", func(t *testing.T) {
		svc, q, _, _ := newTestService()
		q.On("InvoiceByID", mock.Anything, id).Return(&models.InvoiceForm{
			ID:         id,
			CustomerID: "c-42",
			Amount:     decimal.NewFromInt(15795),
			Status:     "pending",
		}, nil)

		form, err := svc.InvoiceByID(context.Background(), id.String())
		require.NoError(t, err)
		assert.True(t, decimal.RequireFromString("157.95").Equal(form.Amount), "amount %s", form.Amount)
	})

	t.Run("not found", func(t *testing.T) {
		svc, q, _, _ := newTestService()
		q.On("InvoiceByID", mock.Anything, id).Return(nil, repository.ErrNotFound)

		_, err := svc.InvoiceByID(context.Background(), id.String())
		assert.ErrorIs(t, err, ErrInvoiceNotFound)
	})

	t.Run("malformed id", func(t *testing.T) {
		svc, q, _, _ := newTestService()

		_, err := svc.InvoiceByID(context.Background(), "not-a-uuid")
		assert.ErrorIs(t, err, ErrInvalidID)
		q.AssertNotCalled(t, "InvoiceByID", mock.Anything, mock.Anything)
	})
}

func TestCustomers(t *testing.T) {
	svc, _, _, cust := newTestService()
	fields := []models.CustomerField{{ID: uuid.New(), Name: "Amy Burns"}}
	cust.On("ListFields", mock.Anything).Return(fields, nil)

	got, err := svc.Customers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fields, got)
}

func TestFilteredCustomers_FormatsTotals(t *testing.T) {
	svc, q, _, _ := newTestService()
	id := uuid.New()
	q.On("FilteredCustomers", mock.Anything, "del").Return([]models.CustomerTotals{
		{ID: id, Name: "Delba de Oliveira", Email: "delba@oliveira.com", TotalInvoices: 2, TotalPending: 500, TotalPaid: 8945},
	}, nil)

	rows, err := svc.FilteredCustomers(context.Background(), "del")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "$5.00", rows[0].TotalPending)
	assert.Equal(t, "$89.45", rows[0].TotalPaid)
	assert.Equal(t, int64(2), rows[0].TotalInvoices)
}

func TestAggregatesUnavailableWithoutPool(t *testing.T) {
	inv := new(MockInvoiceSearcher)
	svc := NewService(nil, inv, new(MockCustomerLister), nil)

	_, err := svc.CardData(context.Background())
	assert.ErrorIs(t, err, ErrFetchFailed)
	_, err = svc.FilteredCustomers(context.Background(), "")
	assert.ErrorIs(t, err, ErrFetchFailed)

	inv.On("CountMatching", mock.Anything, "").Return(int64(7), nil)
	pages, err := svc.InvoicePages(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
}
