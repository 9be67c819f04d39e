package api_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelterlink/welfare-homes-api/api"
)

func TestMiddlewareAcceptsOperatorToken(t *testing.T) {
	api.SetupGoGuardian("admin-token-123")

	handler := api.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/v1/homes", nil)
	req.Header.Set("Authorization", "Bearer admin-token-123")
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMiddlewareRejectsMissingToken(t *testing.T) {
	api.SetupGoGuardian("admin-token-123")

	handler := api.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("GET", "/api/v1/homes", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestIssueTokenIsAccepted(t *testing.T) {
	api.SetupGoGuardian("admin-token-123")

	req := httptest.NewRequest("POST", "/api/v1/admin/login", nil)
	token := api.IssueToken("root", "0", req)
	assert.NotEmpty(t, token)

	handler := api.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	authed := httptest.NewRequest("GET", "/api/v1/admins", nil)
	authed.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, authed)

	assert.Equal(t, http.StatusOK, rr.Code)
}
