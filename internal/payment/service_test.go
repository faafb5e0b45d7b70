package payment_test

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ticket-selling/internal/clock"
	"ticket-selling/internal/logger"
	"ticket-selling/internal/models"
	"ticket-selling/internal/payment"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) InsertPayment(ctx context.Context, p *models.Payment) error {
	args := m.Called(ctx, p)
	if args.Error(0) == nil {
		p.ID = 55
	}
	return args.Error(0)
}

func (m *MockDBLayer) UpdatePaymentStatus(ctx context.Context, id int64, status models.PaymentStatus) (int64, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDBLayer) LookupPayment(ctx context.Context, id int64) (*models.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payment), args.Error(1)
}

var now = time.Date(2026, 5, 4, 18, 30, 0, 0, time.UTC)

func newService() (*payment.Service, *MockDBLayer) {
	db := new(MockDBLayer)
	return payment.NewService(db, clock.NewFixed(now), logger.NewWithWriter(io.Discard)), db
}

func TestCreatePayment(t *testing.T) {
	ctx := context.Background()
	svc, db := newService()

	db.On("InsertPayment", ctx, mock.MatchedBy(func(p *models.Payment) bool {
		return p.ReservationID == 3 && p.UserID == 7 && p.Amount == 45 &&
			p.Status == models.PaymentPending && p.Date.Equal(now)
	})).Return(nil)

	id, err := svc.Create(ctx, 3, 7, 45)
	require.NoError(t, err)
	assert.Equal(t, int64(55), id)
}

func TestCreatePaymentFailure(t *testing.T) {
	ctx := context.Background()
	svc, db := newService()
	boom := errors.New("insert failed")

	db.On("InsertPayment", ctx, mock.Anything).Return(boom)

	_, err := svc.Create(ctx, 3, 7, 45)
	assert.ErrorIs(t, err, boom)
}

func TestPaymentTransitions(t *testing.T) {
	ctx := context.Background()
	svc, db := newService()

	db.On("UpdatePaymentStatus", ctx, int64(1), models.PaymentCompleted).Return(int64(10), nil)
	db.On("UpdatePaymentStatus", ctx, int64(2), models.PaymentCancelled).Return(int64(0), models.ErrInvalidTransition)
	db.On("UpdatePaymentStatus", ctx, int64(3), models.PaymentCancelled).Return(int64(0), models.ErrNotFound)

	reservationID, err := svc.Complete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(10), reservationID)

	_, err = svc.Cancel(ctx, 2)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = svc.Cancel(ctx, 3)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestGetPayment(t *testing.T) {
	ctx := context.Background()
	svc, db := newService()

	p := &models.Payment{ID: 1, ReservationID: 10, Amount: 30, Status: models.PaymentPending}
	db.On("LookupPayment", ctx, int64(1)).Return(p, nil)
	db.On("LookupPayment", ctx, int64(2)).Return(nil, models.ErrNotFound)

	got, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = svc.Get(ctx, 2)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
