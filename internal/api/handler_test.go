package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ticket-selling/internal/api"
	"ticket-selling/internal/logger"
	"ticket-selling/internal/models"
	"ticket-selling/internal/qr"
	"ticket-selling/internal/utils"
)

type MockLifecycle struct {
	mock.Mock
}

func (m *MockLifecycle) Reserve(ctx context.Context, req models.ReservationRequest) (*models.ReserveResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReserveResponse), args.Error(1)
}

func (m *MockLifecycle) ConfirmOrExpire(ctx context.Context, paymentID int64) error {
	return m.Called(paymentID).Error(0)
}

func (m *MockLifecycle) Cancel(ctx context.Context, paymentID int64) error {
	return m.Called(paymentID).Error(0)
}

func (m *MockLifecycle) GetPayment(ctx context.Context, id int64) (*models.Payment, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

func (m *MockLifecycle) ListReservations(ctx context.Context, page, limit int) ([]models.ReservationSummary, error) {
	args := m.Called(page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReservationSummary), args.Error(1)
}

func newRouter(svc *MockLifecycle, cfg api.RouterConfig) http.Handler {
	h := &api.Handler{
		Service: svc,
		QR:      qr.NewGenerator(),
		Logger:  logger.NewWithWriter(io.Discard),
		APIPath: "api",
		AppURL:  "http://tickets.test",
	}
	return api.NewRouter(h, cfg)
}

var roomy = api.RouterConfig{RPS: 1000, Burst: 1000}

func do(t *testing.T, h http.Handler, method, path string, body interface{}) (*httptest.ResponseRecorder, utils.APIResponse) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp utils.APIResponse
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	}
	return rec, resp
}

func TestCreateReservation(t *testing.T) {
	svc := new(MockLifecycle)
	router := newRouter(svc, roomy)

	req := models.ReservationRequest{TicketStockIDs: []int64{5, 6}, UserID: 3}
	svc.On("Reserve", req).Return(&models.ReserveResponse{ReservationID: 1, TicketID: 2, TotalPrice: 30, PaymentID: 9}, nil)

	rec, resp := do(t, router, http.MethodPost, "/api/reservations", req)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(30), data["total_price"])
	assert.Equal(t, float64(9), data["payment_id"])
	assert.Equal(t, "http://tickets.test/api/payments/9", data["payment_url"])
}

func TestCreateReservationRejectsBadInput(t *testing.T) {
	svc := new(MockLifecycle)
	router := newRouter(svc, roomy)

	req := httptest.NewRequest(http.MethodPost, "/api/reservations", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp := do(t, router, http.MethodPost, "/api/reservations", models.ReservationRequest{TicketStockIDs: []int64{1}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "InvalidRequest", resp.Error)

	svc.AssertNotCalled(t, "Reserve", mock.Anything)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{models.ErrOnlyEvenQuantity, http.StatusBadRequest, "OnlyEvenQuantity"},
		{models.ErrOnlyAllTogether, http.StatusBadRequest, "OnlyAllTogether"},
		{models.ErrAvoidOne, http.StatusBadRequest, "AvoidOne"},
		{fmt.Errorf("%w: %w", models.ErrUnableToCreateReservation, models.ErrConflict), http.StatusBadRequest, "UnableToCreateReservation"},
		{models.ErrReservationCompleted, http.StatusConflict, "ReservationAlreadyCompleted"},
		{models.ErrReservationExpired, http.StatusConflict, "ReservationExpired"},
		{models.ErrReservationCancelled, http.StatusConflict, "ReservationCancelled"},
		{models.ErrNotFound, http.StatusNotFound, "NotFound"},
		{errors.New("connection refused"), http.StatusInternalServerError, "InternalError"},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			svc := new(MockLifecycle)
			router := newRouter(svc, roomy)
			svc.On("ConfirmOrExpire", int64(4)).Return(tt.err)

			rec, resp := do(t, router, http.MethodPut, "/api/payments/4", nil)
			assert.Equal(t, tt.status, rec.Code)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.kind, resp.Error)
		})
	}
}

func TestInternalErrorsDoNotLeakDetails(t *testing.T) {
	svc := new(MockLifecycle)
	router := newRouter(svc, roomy)
	svc.On("Cancel", int64(4)).Return(errors.New("pq: password authentication failed"))

	rec, resp := do(t, router, http.MethodDelete, "/api/payments/4", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, resp.Message, "password")
}

func TestConfirmAndCancelReturnPayment(t *testing.T) {
	svc := new(MockLifecycle)
	router := newRouter(svc, roomy)

	svc.On("ConfirmOrExpire", int64(7)).Return(nil)
	svc.On("Cancel", int64(8)).Return(nil)
	svc.On("GetPayment", int64(7)).Return(&models.Payment{ID: 7, Status: models.PaymentCompleted}, nil)
	svc.On("GetPayment", int64(8)).Return(&models.Payment{ID: 8, Status: models.PaymentCancelled}, nil)

	rec, resp := do(t, router, http.MethodPut, "/api/payments/7", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "completed", resp.Data.(map[string]interface{})["status"])

	rec, resp = do(t, router, http.MethodDelete, "/api/payments/8", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cancelled", resp.Data.(map[string]interface{})["status"])
}

func TestGetPayment(t *testing.T) {
	svc := new(MockLifecycle)
	router := newRouter(svc, roomy)

	svc.On("GetPayment", int64(3)).Return(&models.Payment{ID: 3, Amount: 45, Status: models.PaymentPending}, nil)
	svc.On("GetPayment", int64(4)).Return(nil, models.ErrNotFound)

	rec, resp := do(t, router, http.MethodGet, "/api/payments/3", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(45), resp.Data.(map[string]interface{})["amount"])

	rec, _ = do(t, router, http.MethodGet, "/api/payments/4", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, router, http.MethodGet, "/api/payments/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPaymentQR(t *testing.T) {
	svc := new(MockLifecycle)
	router := newRouter(svc, roomy)
	svc.On("GetPayment", int64(3)).Return(&models.Payment{ID: 3}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/payments/3/qr", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))
}

func TestListReservationsPaging(t *testing.T) {
	svc := new(MockLifecycle)
	router := newRouter(svc, roomy)

	svc.On("ListReservations", 0, 20).Return([]models.ReservationSummary{{ID: 1}}, nil)
	svc.On("ListReservations", 2, 5).Return([]models.ReservationSummary{}, nil)

	rec, resp := do(t, router, http.MethodGet, "/api/reservations", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, resp.Data, 1)

	rec, _ = do(t, router, http.MethodGet, "/api/reservations?page=2&limit=5", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	svc.On("ListReservations", 21474836, 100).Return([]models.ReservationSummary{}, nil)
	rec, _ = do(t, router, http.MethodGet, "/api/reservations?page=21474836&limit=100", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "the last page that fits a 32-bit offset")

	for _, q := range []string{"page=-1", "limit=0", "limit=101", "page=x", "page=21474837", "page=99999999999", "page=9223372036854775807&limit=100"} {
		rec, _ = do(t, router, http.MethodGet, "/api/reservations?"+q, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
	svc.AssertNumberOfCalls(t, "ListReservations", 3)
}

func TestRateLimitOnMutatingRoutes(t *testing.T) {
	svc := new(MockLifecycle)
	router := newRouter(svc, api.RouterConfig{RPS: 0.001, Burst: 1})

	svc.On("ConfirmOrExpire", int64(1)).Return(nil)
	svc.On("GetPayment", int64(1)).Return(&models.Payment{ID: 1}, nil)

	rec, _ := do(t, router, http.MethodPut, "/api/payments/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, resp := do(t, router, http.MethodPut, "/api/payments/1", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "RateLimitExceeded", resp.Error)

	rec, _ = do(t, router, http.MethodGet, "/api/payments/1", nil)
	assert.Equal(t, http.StatusOK, rec.Code, "reads are not limited")
}

func TestHealth(t *testing.T) {
	rec, resp := do(t, newRouter(new(MockLifecycle), roomy), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
}
