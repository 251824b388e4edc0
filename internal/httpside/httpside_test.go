package httpside

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	eventstreammemory "github.com/cuemby/fabriq/internal/eventstream/memory"
	storagememory "github.com/cuemby/fabriq/internal/storage/memory"
)

func newTestServer() *Server {
	return NewServer(storagememory.New(), eventstreammemory.New())
}

func TestHandleHealth_ReturnsOKStatus(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestHandleEventNotify_AcceptsPost(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodPost, "/event_handler", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestHandleEventNotify_RejectsNonPost(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/event_handler", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandler_MountsMetricsEndpoint(t *testing.T) {
	srv := newTestServer()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
