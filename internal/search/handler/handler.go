// Package handler exposes the search endpoint.
package handler

import (
	"errors"
	"net/http"

	"wayfinder_backend/internal/search/service"
	"wayfinder_backend/internal/search/transport"
	"wayfinder_backend/platform/httpkit"
	"wayfinder_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const msgInvalidRequest = "invalid request"

// Handler exposes the search endpoint.
type Handler struct {
	coordinator *service.Coordinator
	val         *validator.Validator
}

func New(coordinator *service.Coordinator, val *validator.Validator) *Handler {
	return &Handler{coordinator: coordinator, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Search)
}

// Search handles GET /api/v1/search?q=...&lat=...&lon=...&address=...
func (h *Handler) Search(c *gin.Context) {
	var req transport.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}

	result, err := h.coordinator.Submit(c.Request.Context(), req.Query, req.Origin(), req.Address)
	if errors.Is(err, service.ErrSuperseded) {
		// A newer submission took over; this response carries nothing.
		c.Status(http.StatusNoContent)
		return
	}
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, result)
}
