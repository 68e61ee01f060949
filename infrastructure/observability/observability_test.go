package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pranavrajput12/PRSNL-sub011/domain/core/aggregates"
	graphtest "github.com/pranavrajput12/PRSNL-sub011/internal/testutil"
	"github.com/pranavrajput12/PRSNL-sub011/internal/testutil/mocks"
)

func TestCollector_RecordsMediatorMetrics(t *testing.T) {
	c := NewCollector("prsnl_test")

	c.RecordCommand("UpsertEntityCommand", 5*time.Millisecond, nil)
	c.RecordCommand("UpsertEntityCommand", 5*time.Millisecond, errors.New("boom"))
	c.RecordQuery("ClusterEntitiesQuery", time.Millisecond, nil)
	c.RecordTruncation("clustering")

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues("UpsertEntityCommand", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Commands.WithLabelValues("UpsertEntityCommand", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Queries.WithLabelValues("ClusterEntitiesQuery", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Truncations.WithLabelValues("clustering")))
}

func TestCollector_HTTPMiddlewareUsesRoutePattern(t *testing.T) {
	c := NewCollector("prsnl_test")
	r := chi.NewRouter()
	r.Use(c.HTTPMiddleware)
	r.Get("/graph/entities/{id}/subgraph", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	r.Handle("/metrics", c.Handler())

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/graph/entities/abc/subgraph", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/graph/entities/{id}/subgraph", "418")))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "prsnl_test_http_requests_total"))
}

func TestTracedGraphStore_DelegatesAndRecords(t *testing.T) {
	ctx := context.Background()
	inner := new(mocks.MockGraphStore)
	snap := graphtest.NewGraphBuilder().WithEntities("a", "b").Snapshot()
	inner.On("Snapshot", mock.Anything).Return(snap, nil)
	inner.On("DeleteEntity", mock.Anything, "x").Return(nil, errors.New("not found"))

	c := NewCollector("prsnl_test")
	store := NewTracedGraphStore(inner, c)

	got, err := store.Snapshot(ctx)
	require.NoError(t, err)
	assert.Same(t, snap, got)
	assert.Equal(t, 2.0, testutil.ToFloat64(c.GraphEntities))

	_, err = store.DeleteEntity(ctx, "x")
	assert.Error(t, err)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StoreOperations.WithLabelValues("delete_entity", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StoreOperations.WithLabelValues("snapshot", "ok")))
	inner.AssertExpectations(t)
}

func TestTracedGraphStore_NilMetrics(t *testing.T) {
	inner := new(mocks.MockGraphStore)
	inner.On("Snapshot", mock.Anything).Return((*aggregates.Snapshot)(nil), errors.New("down"))

	_, err := NewTracedGraphStore(inner, nil).Snapshot(context.Background())
	assert.Error(t, err)
}
