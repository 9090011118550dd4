package stations

import (
	"net/http"

	"wayfinder_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

const defaultLookupLimit = 10

// Handler exposes the station directory lookup endpoint.
type Handler struct {
	directory *Directory
}

func NewHandler(directory *Directory) *Handler {
	return &Handler{directory: directory}
}

// Lookup handles GET /api/v1/stations?q=...&limit=...
func (h *Handler) Lookup(c *gin.Context) {
	var req LookupRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "query 'q' is required", nil)
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultLookupLimit
	}

	httpkit.OK(c, h.directory.Match(req.Query, limit))
}
