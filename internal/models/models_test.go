package models_test

import (
	"errors"
	"fmt"
	"testing"

	"ticket-selling/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationStatusTransitions(t *testing.T) {
	assert.True(t, models.ReservationPending.CanTransitionTo(models.ReservationCompleted))
	assert.True(t, models.ReservationPending.CanTransitionTo(models.ReservationCancelled))
	assert.True(t, models.ReservationPending.CanTransitionTo(models.ReservationExpired))
	assert.False(t, models.ReservationPending.CanTransitionTo(models.ReservationPending))

	for _, terminal := range []models.ReservationStatus{models.ReservationCompleted, models.ReservationCancelled, models.ReservationExpired} {
		assert.True(t, terminal.IsTerminal())
		assert.False(t, terminal.CanTransitionTo(models.ReservationPending), "%s must not revisit pending", terminal)
		assert.False(t, terminal.CanTransitionTo(models.ReservationCompleted))
	}
	assert.False(t, models.ReservationStatus("bogus").IsTerminal())
}

func TestPaymentStatusTransitions(t *testing.T) {
	assert.True(t, models.PaymentPending.CanTransitionTo(models.PaymentCompleted))
	assert.True(t, models.PaymentPending.CanTransitionTo(models.PaymentCancelled))
	assert.False(t, models.PaymentCompleted.CanTransitionTo(models.PaymentCancelled))
	assert.False(t, models.PaymentCancelled.CanTransitionTo(models.PaymentPending))
}

func TestSeatUnitStatusTransitions(t *testing.T) {
	assert.True(t, models.SeatInStock.CanTransitionTo(models.SeatPending))
	assert.False(t, models.SeatInStock.CanTransitionTo(models.SeatSold), "sold requires passing through pending")
	assert.True(t, models.SeatPending.CanTransitionTo(models.SeatSold))
	assert.True(t, models.SeatPending.CanTransitionTo(models.SeatInStock))
	assert.False(t, models.SeatSold.CanTransitionTo(models.SeatInStock))
}

func TestIDListValueAndScan(t *testing.T) {
	v, err := models.IDList{3, 1, 2}.Value()
	require.NoError(t, err)
	assert.Equal(t, "[3,1,2]", v)

	var fromString models.IDList
	require.NoError(t, fromString.Scan("[3,1,2]"))
	assert.Equal(t, models.IDList{3, 1, 2}, fromString)

	var fromBytes models.IDList
	require.NoError(t, fromBytes.Scan([]byte("[7]")))
	assert.Equal(t, models.IDList{7}, fromBytes)

	var bad models.IDList
	assert.Error(t, bad.Scan(42))
}

func TestReason(t *testing.T) {
	wrapped := fmt.Errorf("reserve: %w", models.ErrAvoidOne)
	assert.Equal(t, "AvoidOne", models.Reason(wrapped))
	assert.Equal(t, "ReservationAlreadyCompleted", models.Reason(models.ErrReservationCompleted))
	assert.Equal(t, "", models.Reason(errors.New("connection refused")))
	assert.True(t, models.IsValidationReason(wrapped))
	assert.False(t, models.IsValidationReason(models.ErrReservationExpired))
}

func TestTerminalStatusError(t *testing.T) {
	assert.ErrorIs(t, models.TerminalStatusError(models.ReservationCompleted), models.ErrReservationCompleted)
	assert.ErrorIs(t, models.TerminalStatusError(models.ReservationCancelled), models.ErrReservationCancelled)
	assert.ErrorIs(t, models.TerminalStatusError(models.ReservationExpired), models.ErrReservationExpired)
	assert.NoError(t, models.TerminalStatusError(models.ReservationPending))
}
