package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/commands"
	"github.com/pranavrajput12/PRSNL-sub011/application/mediator"
	"github.com/pranavrajput12/PRSNL-sub011/application/queries"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

// RelationshipHandler serves relationship writes and suggestions
type RelationshipHandler struct {
	base
}

// NewRelationshipHandler creates a new relationship handler
func NewRelationshipHandler(m mediator.IMediator, errs *apperrors.ErrorHandler, logger *zap.Logger) *RelationshipHandler {
	return &RelationshipHandler{base: newBase(m, errs, logger)}
}

// CreateRelationship handles POST /graph/relationships
func (h *RelationshipHandler) CreateRelationship(w http.ResponseWriter, r *http.Request) {
	var cmd commands.UpsertRelationshipCommand
	if err := decodeBody(r, &cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := h.mediator.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondStored(w, r, cmd.SourceID, cmd.TargetID, cmd.Type)
}

// DeleteRelationship handles DELETE /graph/relationships
func (h *RelationshipHandler) DeleteRelationship(w http.ResponseWriter, r *http.Request) {
	var cmd commands.DeleteRelationshipCommand
	if err := decodeBody(r, &cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := h.mediator.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SuggestRelationships handles POST /graph/relationships/suggest
func (h *RelationshipHandler) SuggestRelationships(w http.ResponseWriter, r *http.Request) {
	q := queries.NewSuggestRelationshipsQuery("")
	if err := decodeBody(r, &q); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	result, err := h.mediator.Query(r.Context(), q)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ApplySuggestion handles POST /graph/relationships/suggest/apply
func (h *RelationshipHandler) ApplySuggestion(w http.ResponseWriter, r *http.Request) {
	var cmd commands.ApplySuggestionCommand
	if err := decodeBody(r, &cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	if err := h.mediator.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	h.respondStored(w, r, cmd.SourceID, cmd.TargetID, cmd.Type)
}

// respondStored reads back the relationship a command just wrote.
func (h *RelationshipHandler) respondStored(w http.ResponseWriter, r *http.Request, source, target, typ string) {
	rel, err := h.mediator.Query(r.Context(), queries.GetRelationshipQuery{
		SourceID: source,
		TargetID: target,
		Type:     typ,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rel)
}
