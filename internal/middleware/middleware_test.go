package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/finaurial/finance-tracker/internal/auth"
	"github.com/finaurial/finance-tracker/internal/models"
	"github.com/finaurial/finance-tracker/internal/service"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	identity *auth.Identity
	err      error
	token    string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*auth.Identity, error) {
	s.token = token
	return s.identity, s.err
}

func okHandler(t *testing.T, want *auth.Identity) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if want != nil {
			got, ok := auth.FromContext(r.Context())
			require.True(t, ok)
			assert.Equal(t, *want, got)
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestAuthMiddleware(t *testing.T) {
	log, _ := test.NewNullLogger()
	identity := &auth.Identity{ID: uuid.New(), Role: models.RoleUser}

	tests := []struct {
		name       string
		headers    map[string]string
		authErr    error
		wantStatus int
		wantToken  string
	}{
		{"missing token", nil, nil, http.StatusUnauthorized, ""},
		{"x-auth-token", map[string]string{"x-auth-token": "abc"}, nil, http.StatusNoContent, "abc"},
		{"bearer", map[string]string{"Authorization": "Bearer xyz"}, nil, http.StatusNoContent, "xyz"},
		{"basic scheme ignored", map[string]string{"Authorization": "Basic xyz"}, nil, http.StatusUnauthorized, ""},
		{"invalid token", map[string]string{"x-auth-token": "abc"}, service.ErrUnauthorized, http.StatusUnauthorized, "abc"},
		{"suspended", map[string]string{"x-auth-token": "abc"}, service.ErrForbidden, http.StatusForbidden, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			authn := &stubAuthenticator{identity: identity, err: tt.authErr}
			var want *auth.Identity
			if tt.authErr == nil {
				want = identity
			}
			h := AuthMiddleware(authn, log)(okHandler(t, want))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantToken, authn.token)
		})
	}
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(models.RoleAdmin)(okHandler(t, nil))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	for role, status := range map[models.Role]int{models.RoleUser: http.StatusForbidden, models.RoleAdmin: http.StatusNoContent} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(auth.NewContext(req.Context(), auth.Identity{ID: uuid.New(), Role: role}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, status, rec.Code, string(role))
	}
}

func TestRequestLogger(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := RequestLogger(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/x", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, "req-1", rec.Header().Get(RequestIDHeader))
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "req-1", entry.Data["request_id"])
	assert.Equal(t, http.StatusNotFound, entry.Data["status"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/x", nil))
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestRecoverer(t *testing.T) {
	log, hook := test.NewNullLogger()
	h := Recoverer(log)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(errors.New("boom"))
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"success":false,"error":"Server Error"}`, rec.Body.String())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
}
