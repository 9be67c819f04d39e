package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shaj13/go-guardian/auth"
	"github.com/shaj13/go-guardian/auth/strategies/bearer"
	"github.com/shaj13/go-guardian/store"
	"go.uber.org/zap"
)

var authenticator auth.Authenticator
var cache store.Cache

// Middleware adds some basic header authentication around accessing the routes
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		user, err := authenticator.Authenticate(r)
		if err != nil {
			zap.S().Errorw("unauthorized",
				"url", r.URL)
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error": "unauthorized"}`))
			return
		}
		zap.S().Debugf("User %s Authenticated\n", user.UserName())
		next.ServeHTTP(w, r)
	})
}

// SetupGoGuardian sets up the go-guardian middleware with a bearer strategy.
// The configured operator token is seeded into the cache so it is always
// accepted alongside tokens issued at login.
func SetupGoGuardian(operatorToken string) {
	authenticator = auth.New()
	cache = store.NewFIFO(context.Background(), time.Hour*24*365*100) // 100 years ttl
	tokenStrategy := bearer.New(bearer.NoOpAuthenticate, cache)

	authenticator.EnableStrategy(bearer.CachedStrategyKey, tokenStrategy)

	if operatorToken != "" {
		r, _ := http.NewRequest(http.MethodGet, "/", nil)
		auth.Append(tokenStrategy, operatorToken, auth.NewDefaultUser("operator", "0", nil, nil), r)
	}
}

// IssueToken mints a session token for an authenticated admin and registers
// it with the bearer strategy.
func IssueToken(username, id string, r *http.Request) string {
	token := uuid.New().String()
	tokenStrategy := authenticator.Strategy(bearer.CachedStrategyKey)
	auth.Append(tokenStrategy, token, auth.NewDefaultUser(username, id, nil, nil), r)
	return token
}
