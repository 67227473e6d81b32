package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	httpAdapter "github.com/aretw0/espalier/internal/adapters/http"
	"github.com/aretw0/espalier/internal/runtime"
	"github.com/aretw0/espalier/internal/workflows/review"
	"github.com/aretw0/espalier/pkg/adapters/memory"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/registry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (http.Handler, string) {
	t.Helper()

	nodes := registry.NewNodeRegistry()
	tools := registry.NewToolRegistry()
	require.NoError(t, review.Register(nodes, tools))

	engine := runtime.NewEngine(nodes, tools, memory.NewGraphStore(), memory.NewRunStore())
	graphID, err := engine.CreateGraph(context.Background(), review.NodeNames(), review.NodeExtractFunctions, review.Edges(), review.Description)
	require.NoError(t, err)

	return httpAdapter.NewHandler(engine, prometheus.NewRegistry()), graphID
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	return rr
}

func TestGetHealth(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := doJSON(t, handler, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
}

func TestListNodes(t *testing.T) {
	handler, _ := newTestHandler(t)

	rr := doJSON(t, handler, http.MethodGet, "/graph/nodes", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp httpAdapter.NodesResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Contains(t, resp.AvailableNodes, review.NodeCheckQuality)
	assert.Contains(t, resp.Tools, review.ToolDetectSmells)
}

func TestListGraphs(t *testing.T) {
	handler, graphID := newTestHandler(t)

	rr := doJSON(t, handler, http.MethodGet, "/graph/list", nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp httpAdapter.GraphListResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Graphs, 1)
	assert.Equal(t, graphID, resp.Graphs[0].GraphID)
	assert.Equal(t, review.NodeExtractFunctions, resp.Graphs[0].StartNode)
}

func TestCreateGraph(t *testing.T) {
	handler, _ := newTestHandler(t)

	t.Run("valid", func(t *testing.T) {
		rr := doJSON(t, handler, http.MethodPost, "/graph/create", httpAdapter.CreateGraphRequest{
			Nodes:     []string{review.NodeExtractFunctions, review.NodeCheckComplexity},
			StartNode: review.NodeExtractFunctions,
			Edges:     map[string]string{review.NodeExtractFunctions: review.NodeCheckComplexity},
		})
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp httpAdapter.CreateGraphResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.GraphID)
	})

	t.Run("unknown node", func(t *testing.T) {
		rr := doJSON(t, handler, http.MethodPost, "/graph/create", httpAdapter.CreateGraphRequest{
			Nodes:     []string{"ghost"},
			StartNode: "ghost",
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("start not in set", func(t *testing.T) {
		rr := doJSON(t, handler, http.MethodPost, "/graph/create", httpAdapter.CreateGraphRequest{
			Nodes:     []string{review.NodeExtractFunctions},
			StartNode: review.NodeCheckQuality,
		})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/graph/create", bytes.NewReader([]byte("{not json")))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestRunGraph(t *testing.T) {
	handler, graphID := newTestHandler(t)

	t.Run("happy path", func(t *testing.T) {
		rr := doJSON(t, handler, http.MethodPost, "/graph/run", httpAdapter.RunGraphRequest{
			GraphID:      graphID,
			InitialState: map[string]any{"code": "func Hello() {}\n"},
		})
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp httpAdapter.RunGraphResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.RunID)
		assert.Equal(t, string(domain.RunCompleted), resp.Status)
		assert.NotEmpty(t, resp.Trace)
		assert.NotEmpty(t, resp.Logs)
		assert.Contains(t, resp.FinalState, "quality_score")
	})

	t.Run("unknown graph", func(t *testing.T) {
		rr := doJSON(t, handler, http.MethodPost, "/graph/run", httpAdapter.RunGraphRequest{
			GraphID: "missing",
		})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestGetRunState(t *testing.T) {
	handler, graphID := newTestHandler(t)

	rr := doJSON(t, handler, http.MethodPost, "/graph/run", httpAdapter.RunGraphRequest{
		GraphID:      graphID,
		InitialState: map[string]any{"code": "func Hello() {}\n"},
	})
	require.Equal(t, http.StatusOK, rr.Code)

	var runResp httpAdapter.RunGraphResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &runResp))

	t.Run("found", func(t *testing.T) {
		rr := doJSON(t, handler, http.MethodGet, "/graph/state/"+runResp.RunID, nil)
		assert.Equal(t, http.StatusOK, rr.Code)

		var resp httpAdapter.RunStateResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, runResp.RunID, resp.RunID)
		assert.Equal(t, graphID, resp.GraphID)
		assert.Equal(t, string(domain.RunCompleted), resp.Status)
		assert.Empty(t, resp.CurrentNode)
	})

	t.Run("not found", func(t *testing.T) {
		rr := doJSON(t, handler, http.MethodGet, "/graph/state/missing", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	handler, _ := newTestHandler(t)

	// Metrics endpoint serves even before any run.
	rr := doJSON(t, handler, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}
