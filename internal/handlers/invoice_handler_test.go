package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"invoice-dashboard-backend/internal/clock"
	"invoice-dashboard-backend/internal/models"
	"invoice-dashboard-backend/internal/services/intake"
	"invoice-dashboard-backend/internal/services/invoicing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Insert(ctx context.Context, invoice *models.Invoice) error {
	return m.Called(ctx, invoice).Error(0)
}

func setupInvoiceRouter(store invoicing.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := invoicing.NewService(
		intake.NewValidator(nil),
		store,
		nil,
		clock.NewFakeClock(time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)),
		nil,
		invoicing.Config{},
		nil,
	)
	r := gin.New()
	r.POST("/dashboard/invoices/create", NewInvoiceHandler(svc, nil).Create)
	return r
}

func postForm(r *gin.Engine, form url.Values, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/dashboard/invoices/create", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func postMultipart(t *testing.T, r *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for key, values := range form {
		for _, v := range values {
			require.NoError(t, mw.WriteField(key, v))
		}
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/dashboard/invoices/create", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validForm() url.Values {
	return url.Values{
		"customerId": {"3958dc9e-712f-4377-85e9-fec4b6a6442a"},
		"amount":     {"250.00"},
		"status":     {"pending"},
	}
}

func TestCreateInvoice_RedirectsBrowser(t *testing.T) {
	store := new(MockStore)
	store.On("Insert", mock.Anything, mock.Anything).Return(nil).Once()

	w := postForm(setupInvoiceRouter(store), validForm(), "text/html")

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/dashboard/invoices", w.Header().Get("Location"))
	store.AssertExpectations(t)
}

func TestCreateInvoice_JSONClient(t *testing.T) {
	store := new(MockStore)
	store.On("Insert", mock.Anything, mock.MatchedBy(func(inv *models.Invoice) bool {
		return inv.CustomerID == "3958dc9e-712f-4377-85e9-fec4b6a6442a"
	})).Return(nil).Once()

	w := postForm(setupInvoiceRouter(store), validForm(), "application/json")
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Data struct {
			CustomerID string `json:"customer_id"`
			Amount     string `json:"amount"`
			Status     string `json:"status"`
			Date       string `json:"date"`
		} `json:"data"`
		Redirect string `json:"redirect"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/dashboard/invoices", body.Redirect)
	assert.Equal(t, "3958dc9e-712f-4377-85e9-fec4b6a6442a", body.Data.CustomerID)
	assert.Equal(t, "250", body.Data.Amount)
	assert.Equal(t, "pending", body.Data.Status)
	assert.Equal(t, "2024-03-15", body.Data.Date)
}

func TestCreateInvoice_ValidationErrors(t *testing.T) {
	store := new(MockStore)

	form := url.Values{"amount": {"abc"}, "status": {"overdue"}}
	w := postForm(setupInvoiceRouter(store), form, "")

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation_error", body.Error.Type)
	require.Len(t, body.Error.Errors, 3)
	assert.Equal(t, "customerId", body.Error.Errors[0].Field)
	assert.Equal(t, intake.CodeRequired, body.Error.Errors[0].Code)
	assert.Equal(t, "amount", body.Error.Errors[1].Field)
	assert.Equal(t, intake.CodeInvalidNumber, body.Error.Errors[1].Code)
	assert.Equal(t, "status", body.Error.Errors[2].Field)
	assert.Equal(t, intake.CodeInvalidEnum, body.Error.Errors[2].Code)

	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestCreateInvoice_StoreFailureIsGeneric(t *testing.T) {
	store := new(MockStore)
	store.On("Insert", mock.Anything, mock.Anything).
		Return(errors.New(`ERROR: invalid input syntax for type uuid: "c-42"`)).Once()

	w := postForm(setupInvoiceRouter(store), validForm(), "")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":{"type":"internal_error","message":"could not create invoice"}}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "uuid")
}

func TestCreateInvoice_MultipartForm(t *testing.T) {
	store := new(MockStore)
	store.On("Insert", mock.Anything, mock.MatchedBy(func(inv *models.Invoice) bool {
		return inv.CustomerID == "3958dc9e-712f-4377-85e9-fec4b6a6442a" &&
			inv.Amount.String() == "250" &&
			inv.Status == "pending"
	})).Return(nil).Once()

	w := postMultipart(t, setupInvoiceRouter(store), validForm())

	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	store.AssertExpectations(t)
}
