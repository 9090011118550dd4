// Package search wires the search orchestration pipeline: coordinator,
// intent payload normalization, geocode enrichment, and the HTTP endpoint.
package search

import (
	"wayfinder_backend/internal/events"
	apphttp "wayfinder_backend/internal/http"
	"wayfinder_backend/internal/search/handler"
	"wayfinder_backend/internal/search/service"
	"wayfinder_backend/platform/config"
	"wayfinder_backend/platform/logger"
	"wayfinder_backend/platform/validator"
)

type Module struct {
	handler     *handler.Handler
	coordinator *service.Coordinator
}

func NewModule(
	cfg config.SearchConfig,
	intent service.IntentParser,
	enricher service.CandidateEnricher,
	stations service.StationMatcher,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Module {
	coordinator := service.NewCoordinator(cfg, intent, enricher, stations, bus, log)
	h := handler.New(coordinator, val)

	return &Module{handler: h, coordinator: coordinator}
}

func (m *Module) Name() string {
	return "search"
}

// Coordinator exposes the coordinator for the verification module's
// cache write-back.
func (m *Module) Coordinator() *service.Coordinator {
	return m.coordinator
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.V1.Group("/search"))
}

var _ apphttp.Module = (*Module)(nil)
