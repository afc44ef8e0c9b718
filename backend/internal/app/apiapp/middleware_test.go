package apiapp

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	authsvc "github.com/driftapp/drift/backend/internal/services/auth"
)

func TestAuthMiddlewareSetsIdentity(t *testing.T) {
	tokens := authsvc.NewJWTManager("test-secret", "", time.Minute)
	userID := uuid.New()
	token, _, err := tokens.GenerateAccessToken(userID, "user")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	AuthMiddleware(tokens, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok || identity.UserID != userID || identity.Role != "user" {
			t.Fatalf("unexpected identity: %+v ok=%v", identity, ok)
		}
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	tokens := authsvc.NewJWTManager("test-secret", "", time.Minute)
	foreign := authsvc.NewJWTManager("other-secret", "", time.Minute)
	foreignToken, _, err := foreign.GenerateAccessToken(uuid.New(), "user")
	if err != nil {
		t.Fatalf("generate foreign token: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "empty bearer", header: "Bearer "},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "foreign signature", header: "Bearer " + foreignToken},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/v1/matches", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rr := httptest.NewRecorder()

			AuthMiddleware(tokens, zap.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				t.Fatalf("handler must not be called")
			})).ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
			}
		})
	}
}

type httpMetricsSpy struct {
	method string
	route  string
	status int
}

func (s *httpMetricsSpy) ObserveHTTPRequest(method, route string, status int, _ time.Duration) {
	s.method = method
	s.route = route
	s.status = status
}

func TestRequestLoggerRecordsRoutePattern(t *testing.T) {
	spy := &httpMetricsSpy{}
	r := chi.NewRouter()
	ApplyMiddlewares(r, zap.NewNop(), spy, time.Second)
	r.Post("/v1/friends/requests/{id}/respond", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/friends/requests/"+uuid.NewString()+"/respond", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if spy.route != "/v1/friends/requests/{id}/respond" {
		t.Fatalf("unexpected route label: %q", spy.route)
	}
	if spy.method != http.MethodPost || spy.status != http.StatusConflict {
		t.Fatalf("unexpected observation: %+v", spy)
	}
}
