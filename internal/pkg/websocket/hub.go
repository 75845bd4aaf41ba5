package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/edutrack/edutrack/internal/app/models"
)

// SeatUpdate is pushed to every client watching a course. Version grows with
// every committed counter change of the course.
type SeatUpdate struct {
	CourseID      int64     `json:"course_id"`
	EnrolledCount int       `json:"enrolled_count"`
	MaxCapacity   int       `json:"max_capacity"`
	Available     int       `json:"available"`
	Version       int64     `json:"version"`
	Timestamp     time.Time `json:"timestamp"`
}

// NewSeatUpdate snapshots a course's seat counts
func NewSeatUpdate(course *models.Course) *SeatUpdate {
	available := course.MaxCapacity - course.EnrolledCount
	if available < 0 {
		available = 0
	}
	return &SeatUpdate{
		CourseID:      course.ID,
		EnrolledCount: course.EnrolledCount,
		MaxCapacity:   course.MaxCapacity,
		Available:     available,
		Version:       course.SeatVersion,
		Timestamp:     time.Now(),
	}
}

// Hub fans seat updates out to the clients subscribed to each course
type Hub struct {
	// Registered clients organized by course ID
	clients map[int64]map[*Client]bool

	broadcast  chan *SeatUpdate
	unregister chan *Client
	done       chan struct{}

	mu     sync.RWMutex
	closed bool
	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		broadcast:  make(chan *SeatUpdate, 64),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run serves unregistrations and broadcasts until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.unregister:
			h.unregisterClient(client)
		case update := <-h.broadcast:
			h.broadcastUpdate(update)
		}
	}
}

// PublishSeats queues an update for course's watchers. It never blocks the
// caller; when the queue is full the update is dropped.
func (h *Hub) PublishSeats(course *models.Course) {
	if course == nil {
		return
	}
	select {
	case h.broadcast <- NewSeatUpdate(course):
	default:
		h.logger.Warn().Int64("course_id", course.ID).Msg("Seat update queue full, dropping update")
	}
}

// join registers client unless the hub has stopped. The client is registered
// when join returns, so every update published afterwards reaches it.
func (h *Hub) join(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return false
	}
	if _, ok := h.clients[client.courseID]; !ok {
		h.clients[client.courseID] = make(map[*Client]bool)
	}
	h.clients[client.courseID][client] = true

	h.logger.Debug().
		Int64("course_id", client.courseID).
		Str("addr", client.remoteAddr).
		Msg("Seat watcher registered")
	return true
}

// leave unregisters client unless the hub has stopped
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// ClientsCount returns the number of connected clients for a course
func (h *Hub) ClientsCount(courseID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[courseID])
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops client and closes its send channel. h.mu must be held.
func (h *Hub) removeLocked(client *Client) {
	watchers, ok := h.clients[client.courseID]
	if !ok {
		return
	}
	if _, ok := watchers[client]; !ok {
		return
	}

	delete(watchers, client)
	close(client.send)
	if len(watchers) == 0 {
		delete(h.clients, client.courseID)
	}

	h.logger.Debug().
		Int64("course_id", client.courseID).
		Str("addr", client.remoteAddr).
		Msg("Seat watcher unregistered")
}

func (h *Hub) broadcastUpdate(update *SeatUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		h.logger.Error().Err(err).Int64("course_id", update.CourseID).Msg("Failed to marshal seat update")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[update.CourseID] {
		h.sendLocked(client, update.Version, data)
	}
}

// deliver sends update to one registered client, e.g. its initial snapshot.
// It reports false when the client is no longer registered.
func (h *Hub) deliver(client *Client, update *SeatUpdate) bool {
	data, err := json.Marshal(update)
	if err != nil {
		h.logger.Error().Err(err).Int64("course_id", update.CourseID).Msg("Failed to marshal seat update")
		return false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client.courseID][client] {
		return false
	}
	h.sendLocked(client, update.Version, data)
	return true
}

// sendLocked queues data unless the client already has a newer version.
// Publishers run on their own goroutines, so updates may arrive out of order.
// h.mu must be held.
func (h *Hub) sendLocked(client *Client, version int64, data []byte) {
	if client.sent && version <= client.version {
		return
	}

	select {
	case client.send <- data:
		client.version = version
		client.sent = true
	default:
		// slow consumer
		h.removeLocked(client)
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for _, watchers := range h.clients {
		for client := range watchers {
			h.removeLocked(client)
		}
	}
}
