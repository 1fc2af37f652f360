package chat

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/classpulse/backend/pkg/response"
)

// httpHistoryLimit is the history depth of the HTTP projection. The
// realtime chat_history event uses DefaultHistoryLimit.
const httpHistoryLimit = 100

// Handler serves the read-only chat projection.
type Handler struct {
	store  Store
	logger *zap.Logger
}

// NewHandler creates a chat HTTP handler.
func NewHandler(store Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// List handles GET /chat: recent history, oldest first.
func (h *Handler) List(c *gin.Context) {
	messages, err := h.store.Recent(c.Request.Context(), httpHistoryLimit)
	if err != nil {
		h.logger.Error("list chat", zap.Error(err))
		response.Internal(c, "Failed to fetch chat messages")
		return
	}
	response.OK(c, messages)
}
