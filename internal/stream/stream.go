package stream

import (
	"context"
	"sync"
	"time"

	"github.com/josemulyungi-cpu/staff-housing-information-system/internal/housing"
)

// OccupancyEvent describes one allocation transition for the live dashboard.
type OccupancyEvent struct {
	UnitID       string                  `json:"unit_id"`
	TownLocation string                  `json:"town_location"`
	BlockName    string                  `json:"block_name"`
	Action       string                  `json:"action"`
	Status       housing.OccupancyStatus `json:"occupancy_status"`
	Timestamp    time.Time               `json:"timestamp"`
}

// Stream fan-outs occupancy events to all active subscribers (SSE clients).
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan OccupancyEvent
	next int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan OccupancyEvent)}
}

// Subscribe registers a subscriber and returns a channel which will receive
// events. The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan OccupancyEvent {
	ch := make(chan OccupancyEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt OccupancyEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}
