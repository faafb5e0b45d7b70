// Package sse fans committed lifecycle events out to Server-Sent Events clients.
package sse

import (
	"context"
	"sync"

	"ticket-selling/internal/models"
)

// AllTickets subscribes to events of every ticket.
const AllTickets int64 = 0

const clientBuffer = 10

// Emitter keeps one buffered channel per connected client, keyed by ticket id.
type Emitter struct {
	mu      sync.RWMutex
	clients map[int64][]chan models.LifecycleEvent
}

func NewEmitter() *Emitter {
	return &Emitter{clients: make(map[int64][]chan models.LifecycleEvent)}
}

// Subscribe registers a client for ticketID (or AllTickets). The channel is
// closed once ctx is done.
func (e *Emitter) Subscribe(ctx context.Context, ticketID int64) <-chan models.LifecycleEvent {
	ch := make(chan models.LifecycleEvent, clientBuffer)

	e.mu.Lock()
	e.clients[ticketID] = append(e.clients[ticketID], ch)
	e.mu.Unlock()

	go func() {
		<-ctx.Done()
		e.remove(ticketID, ch)
	}()

	return ch
}

// PublishLifecycleEvent never blocks: a client whose buffer is full misses the event.
func (e *Emitter) PublishLifecycleEvent(_ context.Context, event models.LifecycleEvent) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	e.broadcast(e.clients[AllTickets], event)
	if event.TicketID != AllTickets {
		e.broadcast(e.clients[event.TicketID], event)
	}
	return nil
}

func (e *Emitter) broadcast(clients []chan models.LifecycleEvent, event models.LifecycleEvent) {
	for _, ch := range clients {
		select {
		case ch <- event:
		default:
		}
	}
}

func (e *Emitter) remove(ticketID int64, ch chan models.LifecycleEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()

	clients := e.clients[ticketID]
	for i, c := range clients {
		if c == ch {
			e.clients[ticketID] = append(clients[:i], clients[i+1:]...)
			close(ch)
			break
		}
	}
	if len(e.clients[ticketID]) == 0 {
		delete(e.clients, ticketID)
	}
}

// ClientCount returns the number of clients subscribed to ticketID.
func (e *Emitter) ClientCount(ticketID int64) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.clients[ticketID])
}
