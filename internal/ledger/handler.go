package ledger

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"secretary-backend/internal/shared/server/respond"
)

// Handler exposes the usage snapshot endpoint.
type Handler struct {
	svc *Service
}

// NewHandler constructs a ledger handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the usage routes on the given group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/usage", h.today)
}

func (h *Handler) today(c *gin.Context) {
	l, err := h.svc.Today(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load usage", nil)
		return
	}
	respond.OK(c, l)
}
