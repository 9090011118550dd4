package geocode

import (
	apphttp "wayfinder_backend/internal/http"
	"wayfinder_backend/platform/config"
	"wayfinder_backend/platform/logger"
)

// Module wires the geocoding client, the candidate enricher, and the
// address lookup HTTP route.
type Module struct {
	client   *Client
	enricher *Enricher
	handler  *Handler
}

func NewModule(cfg config.GeocodeConfig, log *logger.Logger) *Module {
	client := NewClient(cfg, log)
	return &Module{
		client:   client,
		enricher: NewEnricher(client, cfg.GetGeocodeConcurrency(), log),
		handler:  NewHandler(client),
	}
}

func (m *Module) Name() string {
	return "geocode"
}

// Enricher exposes the candidate enricher for the search coordinator.
func (m *Module) Enricher() *Enricher {
	return m.enricher
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/geocode", m.handler.Lookup)
}

var _ apphttp.Module = (*Module)(nil)
