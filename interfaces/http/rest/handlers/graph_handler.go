package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/commands"
	"github.com/pranavrajput12/PRSNL-sub011/application/mediator"
	"github.com/pranavrajput12/PRSNL-sub011/application/queries"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

// GraphHandler serves graph reads and the entity write API
type GraphHandler struct {
	base
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(m mediator.IMediator, errs *apperrors.ErrorHandler, logger *zap.Logger) *GraphHandler {
	return &GraphHandler{base: newBase(m, errs, logger)}
}

// GetFullGraph handles GET /graph/full
func (h *GraphHandler) GetFullGraph(w http.ResponseWriter, r *http.Request) {
	q := queries.NewGetFullGraphQuery()
	params := r.URL.Query()
	q.ContentType = params.Get("content_type")
	q.RelationshipType = params.Get("relationship_type")
	q.Domain = params.Get("domain")

	var err error
	if q.Limit, err = queryInt(r, "limit", q.Limit); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if q.MinConfidence, err = queryFloat(r, "min_confidence", q.MinConfidence); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	view, err := h.mediator.Query(r.Context(), q)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// GetSubgraph handles GET /graph/entities/{entityID}/subgraph
func (h *GraphHandler) GetSubgraph(w http.ResponseWriter, r *http.Request) {
	q := queries.NewGetSubgraphQuery(chi.URLParam(r, "entityID"))

	var err error
	if q.Depth, err = queryInt(r, "depth", q.Depth); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if q.Limit, err = queryInt(r, "limit", q.Limit); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if q.MinConfidence, err = queryFloat(r, "min_confidence", q.MinConfidence); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	view, err := h.mediator.Query(r.Context(), q)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// GetEntity handles GET /graph/entities/{entityID}
func (h *GraphHandler) GetEntity(w http.ResponseWriter, r *http.Request) {
	entity, err := h.mediator.Query(r.Context(), queries.GetEntityQuery{ID: chi.URLParam(r, "entityID")})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entity)
}

// UpsertEntity handles PUT /graph/entities/{entityID}. The path id wins
// over any id in the body.
func (h *GraphHandler) UpsertEntity(w http.ResponseWriter, r *http.Request) {
	var cmd commands.UpsertEntityCommand
	if err := decodeBody(r, &cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	cmd.ID = chi.URLParam(r, "entityID")

	if err := h.mediator.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	entity, err := h.mediator.Query(r.Context(), queries.GetEntityQuery{ID: cmd.ID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, entity)
}

// DeleteEntity handles DELETE /graph/entities/{entityID}
func (h *GraphHandler) DeleteEntity(w http.ResponseWriter, r *http.Request) {
	cmd := commands.DeleteEntityCommand{ID: chi.URLParam(r, "entityID")}
	if err := h.mediator.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetStats handles GET /graph/stats
func (h *GraphHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.mediator.Query(r.Context(), queries.GetGraphStatsQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}
