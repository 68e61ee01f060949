package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/mediator"
	"github.com/pranavrajput12/PRSNL-sub011/application/queries"
	querybus "github.com/pranavrajput12/PRSNL-sub011/application/queries/bus"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

// AnalyticsHandler serves path discovery, clustering and gap analysis
type AnalyticsHandler struct {
	base
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(m mediator.IMediator, errs *apperrors.ErrorHandler, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{base: newBase(m, errs, logger)}
}

// DiscoverPaths handles POST /graph/paths/discover
func (h *AnalyticsHandler) DiscoverPaths(w http.ResponseWriter, r *http.Request) {
	q := queries.NewDiscoverPathsQuery("", "")
	h.run(w, r, &q, func() querybus.Query { return q })
}

// ClusterEntities handles POST /graph/clustering
func (h *AnalyticsHandler) ClusterEntities(w http.ResponseWriter, r *http.Request) {
	q := queries.NewClusterEntitiesQuery()
	h.run(w, r, &q, func() querybus.Query { return q })
}

// AnalyzeGaps handles POST /graph/analysis/gaps
func (h *AnalyticsHandler) AnalyzeGaps(w http.ResponseWriter, r *http.Request) {
	q := queries.NewAnalyzeGapsQuery()
	h.run(w, r, &q, func() querybus.Query { return q })
}

// run decodes the body over the defaults held by target, then dispatches
// the query value returned by build. Queries are registered by value type.
func (h *AnalyticsHandler) run(w http.ResponseWriter, r *http.Request, target interface{}, build func() querybus.Query) {
	if err := decodeBody(r, target); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	result, err := h.mediator.Query(r.Context(), build())
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}
