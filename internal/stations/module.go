package stations

import (
	apphttp "wayfinder_backend/internal/http"
)

// Module wires the station directory HTTP routes.
type Module struct {
	handler   *Handler
	directory *Directory
}

func NewModule(directory *Directory) *Module {
	return &Module{
		handler:   NewHandler(directory),
		directory: directory,
	}
}

func (m *Module) Name() string {
	return "stations"
}

// Directory exposes the snapshot for the search coordinator.
func (m *Module) Directory() *Directory {
	return m.directory
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.V1.GET("/stations", m.handler.Lookup)
}

var _ apphttp.Module = (*Module)(nil)
