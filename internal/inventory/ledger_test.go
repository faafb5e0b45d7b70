package inventory_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"ticket-selling/internal/inventory"
	"ticket-selling/internal/logger"
	"ticket-selling/internal/models"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) LookupSeatUnitsByIDs(ctx context.Context, ids []int64) ([]models.SeatUnitRow, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SeatUnitRow), args.Error(1)
}

func (m *MockDBLayer) UpdateSeatUnitsStatus(ctx context.Context, ids []int64, from, to models.SeatUnitStatus) error {
	args := m.Called(ctx, ids, from, to)
	return args.Error(0)
}

func (m *MockDBLayer) UpdateSeatUnitsStatusReturningTicket(ctx context.Context, ids []int64, from, to models.SeatUnitStatus) (int64, error) {
	args := m.Called(ctx, ids, from, to)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDBLayer) AdjustTicketStock(ctx context.Context, ticketID int64, delta int) error {
	args := m.Called(ctx, ticketID, delta)
	return args.Error(0)
}

func newLedger() (*inventory.Ledger, *MockDBLayer) {
	db := new(MockDBLayer)
	return inventory.NewLedger(db, logger.NewWithWriter(io.Discard)), db
}

func TestMarkPendingAndSold(t *testing.T) {
	ctx := context.Background()
	ledger, db := newLedger()
	ids := []int64{1, 2}

	db.On("UpdateSeatUnitsStatus", ctx, ids, models.SeatInStock, models.SeatPending).Return(nil)
	db.On("UpdateSeatUnitsStatusReturningTicket", ctx, ids, models.SeatPending, models.SeatSold).Return(int64(9), nil)

	require.NoError(t, ledger.MarkPending(ctx, ids))
	ticketID, err := ledger.MarkSold(ctx, ids)
	require.NoError(t, err)
	assert.Equal(t, int64(9), ticketID)
	db.AssertExpectations(t)
}

func TestMarkPendingConflict(t *testing.T) {
	ctx := context.Background()
	ledger, db := newLedger()

	db.On("UpdateSeatUnitsStatus", ctx, []int64{3}, models.SeatInStock, models.SeatPending).Return(models.ErrConflict)

	err := ledger.MarkPending(ctx, []int64{3})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestReleaseToStockReturnsTicket(t *testing.T) {
	ctx := context.Background()
	ledger, db := newLedger()

	db.On("UpdateSeatUnitsStatusReturningTicket", ctx, []int64{4, 5}, models.SeatPending, models.SeatInStock).Return(int64(9), nil)

	ticketID, err := ledger.ReleaseToStock(ctx, []int64{4, 5})
	require.NoError(t, err)
	assert.Equal(t, int64(9), ticketID)
}

func TestReleaseToStockError(t *testing.T) {
	ctx := context.Background()
	ledger, db := newLedger()
	boom := errors.New("connection reset")

	db.On("UpdateSeatUnitsStatusReturningTicket", ctx, []int64{4}, models.SeatPending, models.SeatInStock).Return(int64(0), boom)

	_, err := ledger.ReleaseToStock(ctx, []int64{4})
	assert.ErrorIs(t, err, boom)
}

func TestStockAdjustments(t *testing.T) {
	ctx := context.Background()
	ledger, db := newLedger()

	db.On("AdjustTicketStock", ctx, int64(1), -2).Return(nil)
	db.On("AdjustTicketStock", ctx, int64(1), 2).Return(nil)

	require.NoError(t, ledger.DecrementStock(ctx, 1, 2))
	require.NoError(t, ledger.IncrementStock(ctx, 1, 2))
	db.AssertExpectations(t)
}

func TestStockAdjustmentsRejectNonPositiveCounts(t *testing.T) {
	ctx := context.Background()
	ledger, db := newLedger()

	assert.Error(t, ledger.DecrementStock(ctx, 1, 0))
	assert.Error(t, ledger.IncrementStock(ctx, 1, -3))
	db.AssertNotCalled(t, "AdjustTicketStock", mock.Anything, mock.Anything, mock.Anything)
}

func TestDecrementStockBelowZero(t *testing.T) {
	ctx := context.Background()
	ledger, db := newLedger()

	db.On("AdjustTicketStock", ctx, int64(1), -5).Return(models.ErrConflict)

	assert.ErrorIs(t, ledger.DecrementStock(ctx, 1, 5), models.ErrConflict)
}
