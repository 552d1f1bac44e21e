package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"freelancehub/tokens"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) (*httprouter.Router, *tokens.Manager) {
	t.Helper()
	m := tokens.NewManager([]byte("test"), time.Hour, nil)
	a := NewAuth(m)
	router := httprouter.New()
	router.PATCH("/profile/:userId", a.SelfOrAdmin("userId", func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		assert.NotNil(t, ClaimsFrom(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	}))
	return router, m
}

func do(router http.Handler, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSelfOrAdmin(t *testing.T) {
	router, m := newRouter(t)

	w := do(router, "/profile/u1", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Missing or invalid Authorization header"}`, w.Body.String())

	w = do(router, "/profile/u1", "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid or expired token"}`, w.Body.String())

	self, err := m.Issue("u1", "freelancer")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, do(router, "/profile/u1", self).Code)

	other, err := m.Issue("u2", "freelancer")
	require.NoError(t, err)
	w = do(router, "/profile/u1", other)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"error":"Forbidden"}`, w.Body.String())

	admin, err := m.Issue("root", "admin")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, do(router, "/profile/u1", admin).Code)
}

func TestRequestLoggerAndHeaders(t *testing.T) {
	h := RequestLogger(zap.NewNop())(SecurityHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
}
