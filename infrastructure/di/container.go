package di

import (
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/mediator"
	"github.com/pranavrajput12/PRSNL-sub011/application/ports"
	appservices "github.com/pranavrajput12/PRSNL-sub011/application/services"
	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/config"
	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/observability"
	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/projections/neo4j"
)

// Container holds all application dependencies. Optional components are
// nil when disabled by configuration.
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *observability.Collector
	Tracer    *observability.TracerProvider
	Store     ports.GraphStore
	Registry  *appservices.EngineRegistry
	Mediator  *mediator.Mediator
	Router    *chi.Mux
	Watcher   *config.ConfigWatcher
	Projector *neo4j.Projector
}
