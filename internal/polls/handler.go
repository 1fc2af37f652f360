package polls

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/classpulse/backend/internal/models"
	"github.com/classpulse/backend/pkg/response"
)

// HistoryEntry is a poll history item: the derived results plus the poll's
// own metadata.
type HistoryEntry struct {
	models.AggregatedResult
	TimerSeconds int       `json:"timer_seconds"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// Handler serves the read-only poll projections. No coordination logic
// lives here.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a polls HTTP handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// List handles GET /polls: all polls with derived results, newest first.
func (h *Handler) List(c *gin.Context) {
	all, err := h.store.ListAll(c.Request.Context())
	if err != nil {
		h.logger.Error("list polls", zap.Error(err))
		response.Internal(c, "Failed to fetch polls")
		return
	}
	out := make([]HistoryEntry, 0, len(all))
	for i := range all {
		p := &all[i]
		status := models.ResultStatusFinal
		if p.Active {
			status = models.ResultStatusLive
		}
		out = append(out, HistoryEntry{
			AggregatedResult: Aggregate(p, status),
			TimerSeconds:     p.TimerSeconds,
			IsActive:         p.Active,
			CreatedAt:        p.CreatedAt,
		})
	}
	response.OK(c, out)
}

// GetByID handles GET /polls/:id.
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid poll id")
		return
	}
	p, err := h.store.Get(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("get poll", zap.Error(err), zap.String("poll_id", id.String()))
		response.Internal(c, "Failed to fetch poll")
		return
	}
	if p == nil {
		response.NotFound(c, "Poll not found")
		return
	}
	response.OK(c, p)
}
