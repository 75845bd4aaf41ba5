package websocket

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/edutrack/edutrack/internal/app/models"
	"github.com/edutrack/edutrack/internal/middleware"
	"github.com/edutrack/edutrack/internal/pkg/apperrors"
	"github.com/edutrack/edutrack/internal/pkg/helpers"
)

// CourseGetter loads the course a watcher subscribes to
type CourseGetter interface {
	GetCourseByID(ctx context.Context, id int64) (*models.Course, error)
}

// Handler upgrades seat-feed requests to websocket connections
type Handler struct {
	hub     *Hub
	courses CourseGetter
	logger  zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, courses CourseGetter, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:     hub,
		courses: courses,
		logger:  logger,
	}
}

// WatchSeats streams a course's seat counts
// @Summary Watch course seats
// @Description Upgrades to a WebSocket that receives the current seat counts, then one message per committed enrollment change
// @Tags courses
// @Param id path int true "Course ID"
// @Success 101 {object} SeatUpdate "Switching Protocols to WebSocket"
// @Failure 400 {object} dto.ErrorResponse "Invalid course ID"
// @Failure 404 {object} dto.ErrorResponse "Course not found"
// @Router /courses/{id}/seats/ws [get]
func (h *Handler) WatchSeats(c *gin.Context) {
	courseID, ok := helpers.ParseIDParam(c, "id")
	if !ok {
		middleware.HandleAPIError(c, apperrors.NewValidationError("course id must be a positive integer"))
		return
	}

	// Reply with a proper status before upgrading
	if _, err := h.courses.GetCourseByID(c.Request.Context(), courseID); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already replied
		h.logger.Warn().Err(err).Int64("course_id", courseID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:        h.hub,
		conn:       conn,
		send:       make(chan []byte, 16),
		courseID:   courseID,
		remoteAddr: conn.RemoteAddr().String(),
		logger:     h.logger,
	}
	if !h.hub.join(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()

	// The snapshot is read only after joining, so a change committed in
	// between reaches the client either in the snapshot or as an update.
	course, err := h.courses.GetCourseByID(c.Request.Context(), courseID)
	if err != nil {
		h.logger.Warn().Err(err).Int64("course_id", courseID).Msg("Failed to load seat snapshot")
		conn.Close()
		return
	}
	h.hub.deliver(client, NewSeatUpdate(course))
}
