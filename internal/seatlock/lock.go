// Package seatlock keeps short-lived Redis claims on seat units while a
// reservation holds them. The database stays the source of truth; a claim
// only turns concurrent requests away before they reach it.
package seatlock

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"

	"ticket-selling/internal/logger"
)

type Locker struct {
	Client *redis.Client
	TTL    time.Duration
	Logger *logger.Logger
}

func NewLocker(client *redis.Client, ttl time.Duration, log *logger.Logger) *Locker {
	return &Locker{Client: client, TTL: ttl, Logger: log}
}

// Owner is the claim value stored for a reservation's seat units.
func Owner(reservationID int64) string {
	return "reservation:" + strconv.FormatInt(reservationID, 10)
}

func key(seatUnitID int64) string {
	return fmt.Sprintf("seat_lock:%d", seatUnitID)
}

// CheckSeatAvailability reports whether nobody claims the seat unit.
func (l *Locker) CheckSeatAvailability(ctx context.Context, seatUnitID int64) (bool, error) {
	_, err := l.Client.Get(ctx, key(seatUnitID)).Result()
	if err == redis.Nil {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}

// CheckSeatsAvailability returns the claimed seat units among ids.
func (l *Locker) CheckSeatsAvailability(ctx context.Context, ids []int64) (bool, []int64, error) {
	var unavailable []int64
	for _, id := range ids {
		available, err := l.CheckSeatAvailability(ctx, id)
		if err != nil {
			return false, nil, err
		}
		if !available {
			unavailable = append(unavailable, id)
		}
	}
	return len(unavailable) == 0, unavailable, nil
}

func (l *Locker) LockSeat(ctx context.Context, seatUnitID int64, owner string) (bool, error) {
	return l.Client.SetNX(ctx, key(seatUnitID), owner, l.TTL).Result()
}

// UnlockSeat drops the claim only when owner holds it.
func (l *Locker) UnlockSeat(ctx context.Context, seatUnitID int64, owner string) error {
	k := key(seatUnitID)
	val, err := l.Client.Get(ctx, k).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	if val != owner {
		return nil
	}
	return l.Client.Del(ctx, k).Err()
}

// LockSeats claims every seat unit or none of them.
func (l *Locker) LockSeats(ctx context.Context, ids []int64, owner string) (bool, error) {
	locked := make([]int64, 0, len(ids))
	release := func() {
		for _, id := range locked {
			_ = l.UnlockSeat(ctx, id, owner)
		}
	}

	for _, id := range ids {
		ok, err := l.LockSeat(ctx, id, owner)
		if err != nil {
			release()
			return false, err
		}
		if !ok {
			release()
			l.Logger.Info("REDIS", fmt.Sprintf("seat unit %d already claimed, %s turned away", id, owner))
			return false, nil
		}
		locked = append(locked, id)
	}
	return true, nil
}

// UnlockSeats releases owner's claims and returns the first error met.
func (l *Locker) UnlockSeats(ctx context.Context, ids []int64, owner string) error {
	var firstErr error
	for _, id := range ids {
		if err := l.UnlockSeat(ctx, id, owner); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
