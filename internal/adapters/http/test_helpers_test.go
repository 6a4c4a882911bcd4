package httpserver

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/OliveiraNt/topic-scout/internal/application"
	"github.com/OliveiraNt/topic-scout/internal/testutil"
	"github.com/OliveiraNt/topic-scout/internal/utils"
	"github.com/go-chi/chi/v5"
)

// buildServer builds a Server over an in-memory repository holding cluster "dev" backed by
// a three broker fake.
func buildServer(t *testing.T) (*Server, *testutil.FakeKafkaClient, *testutil.FakeClusterRepository) {
	t.Helper()
	utils.InitLogger()
	fake := testutil.NewFakeKafkaClient(1, 2, 3)
	repo := testutil.NewFakeClusterRepository().WithCluster("dev", fake)
	return New(application.NewClusterService(repo)), fake, repo
}

// do sends a request through the full router.
func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

// chiCtxWithParams adds URL params to request context for handler funcs using chi.URLParam
func chiCtxWithParams(params map[string]string, req *http.Request) context.Context {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
}
