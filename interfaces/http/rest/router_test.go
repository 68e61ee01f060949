package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/application/commands"
	"github.com/pranavrajput12/PRSNL-sub011/application/queries"
	"github.com/pranavrajput12/PRSNL-sub011/domain/core/entities"
	"github.com/pranavrajput12/PRSNL-sub011/domain/services"
	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/observability"
	"github.com/pranavrajput12/PRSNL-sub011/internal/testutil/mocks"
	apperrors "github.com/pranavrajput12/PRSNL-sub011/pkg/errors"
)

func newTestRouter(m *mocks.MockMediator, checks ...ReadinessCheck) http.Handler {
	return NewRouter(m, observability.NewCollector("prsnl_test"), checks, RouterConfig{
		ServiceName:    "test",
		EnableCORS:     true,
		AllowedOrigins: []string{"*"},
	}, zap.NewNop()).Setup()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_Health(t *testing.T) {
	rec := do(t, newTestRouter(new(mocks.MockMediator)), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestRouter_Ready(t *testing.T) {
	tests := []struct {
		name       string
		check      func(ctx context.Context) error
		wantStatus int
		wantState  string
	}{
		{"all ok", func(ctx context.Context) error { return nil }, http.StatusOK, "ready"},
		{"dependency down", func(ctx context.Context) error { return errors.New("redis down") }, http.StatusServiceUnavailable, "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(new(mocks.MockMediator), ReadinessCheck{Name: "cache", Check: tt.check})
			rec := do(t, h, http.MethodGet, "/ready", "")
			assert.Equal(t, tt.wantStatus, rec.Code)

			var body healthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantState, body.Status)
			assert.Contains(t, body.Checks, "cache")
		})
	}
}

func TestRouter_FullGraphParsesQueryParameters(t *testing.T) {
	m := new(mocks.MockMediator)
	want := queries.NewGetFullGraphQuery()
	want.Domain = "Technology"
	want.Limit = 25
	want.MinConfidence = 0.7
	m.On("Query", mock.Anything, want).Return(map[string]string{"ok": "yes"}, nil)

	rec := do(t, newTestRouter(m), http.MethodGet, "/api/v1/graph/full?domain=Technology&limit=25&min_confidence=0.7", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	m.AssertExpectations(t)
}

func TestRouter_BadQueryParameterIsValidationError(t *testing.T) {
	rec := do(t, newTestRouter(new(mocks.MockMediator)), http.MethodGet, "/api/v1/graph/entities/a/subgraph?depth=deep", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body apperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, string(apperrors.ErrorTypeValidation), body.Type)
}

func TestRouter_UpsertEntityUsesPathID(t *testing.T) {
	m := new(mocks.MockMediator)
	m.On("Send", mock.Anything, mock.MatchedBy(func(cmd commands.UpsertEntityCommand) bool {
		return cmd.ID == "e1" && cmd.Title == "Go channels"
	})).Return(nil)
	m.On("Query", mock.Anything, queries.GetEntityQuery{ID: "e1"}).
		Return(entities.NewEntity("e1", "Go channels", entities.ContentTypeArticle), nil)

	rec := do(t, newTestRouter(m), http.MethodPut, "/api/v1/graph/entities/e1", `{"id":"ignored","title":"Go channels"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Go channels"`)
	m.AssertExpectations(t)
}

func TestRouter_DeleteEntity(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"deleted", nil, http.StatusNoContent},
		{"unknown", apperrors.NewNotFoundError("entity x"), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(mocks.MockMediator)
			m.On("Send", mock.Anything, commands.DeleteEntityCommand{ID: "x"}).Return(tt.err)

			rec := do(t, newTestRouter(m), http.MethodDelete, "/api/v1/graph/entities/x", "")
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestRouter_CreateRelationshipReturnsStoredEdge(t *testing.T) {
	m := new(mocks.MockMediator)
	m.On("Send", mock.Anything, mock.AnythingOfType("commands.UpsertRelationshipCommand")).Return(nil)
	m.On("Query", mock.Anything, queries.GetRelationshipQuery{SourceID: "a", TargetID: "b", Type: "extends"}).
		Return(&entities.Relationship{SourceID: "a", TargetID: "b", Type: entities.RelationshipExtends, Confidence: 0.8}, nil)

	rec := do(t, newTestRouter(m), http.MethodPost, "/api/v1/graph/relationships",
		`{"source_id":"a","target_id":"b","relationship_type":"extends"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got entities.Relationship
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 0.8, got.Confidence)
	m.AssertExpectations(t)
}

func TestRouter_CreateRelationshipValidationError(t *testing.T) {
	m := new(mocks.MockMediator)
	m.On("Send", mock.Anything, mock.Anything).Return(apperrors.NewValidationError("self-loop"))

	rec := do(t, newTestRouter(m), http.MethodPost, "/api/v1/graph/relationships",
		`{"source_id":"a","target_id":"a","relationship_type":"extends"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	m.AssertNotCalled(t, "Query", mock.Anything, mock.Anything)
}

func TestRouter_MalformedBody(t *testing.T) {
	rec := do(t, newTestRouter(new(mocks.MockMediator)), http.MethodPost, "/api/v1/graph/clustering", `{"algorithm":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_AnalyticsDecodeOverDefaults(t *testing.T) {
	m := new(mocks.MockMediator)
	want := queries.NewDiscoverPathsQuery("a", "c")
	want.MaxDepth = 2
	m.On("Query", mock.Anything, want).Return(&services.PathResult{Paths: []services.Path{}}, nil)

	rec := do(t, newTestRouter(m), http.MethodPost, "/api/v1/graph/paths/discover",
		`{"start_entity_id":"a","end_entity_id":"c","max_depth":2}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"paths":[]`)
	m.AssertExpectations(t)
}

func TestRouter_EmptyBodyUsesDefaults(t *testing.T) {
	m := new(mocks.MockMediator)
	m.On("Query", mock.Anything, queries.NewAnalyzeGapsQuery()).Return(&services.GapAnalysis{}, nil)
	m.On("Query", mock.Anything, queries.NewClusterEntitiesQuery()).Return(&services.ClusterResult{}, nil)

	h := newTestRouter(m)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/v1/graph/analysis/gaps", "").Code)
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/api/v1/graph/clustering", "").Code)
	m.AssertExpectations(t)
}

func TestRouter_MetricsAndUnknownRoute(t *testing.T) {
	h := newTestRouter(new(mocks.MockMediator))

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/api/v1/nope", "").Code)

	rec := do(t, h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "prsnl_test_http_requests_total")
}
