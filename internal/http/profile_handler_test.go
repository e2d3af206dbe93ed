package http

import (
	"errors"
	"net/http"
	"testing"

	"jobsy/internal/backend"
	"jobsy/internal/domain"
)

var errTest = errors.New("boom")

func TestProfileHandler(t *testing.T) {
	env := newAPIEnv(t, envOptions{})
	user := env.confirmedUser(t, "sara@example.com", "secret1", domain.RoleWork)
	pair, err := env.jwt.GeneratePair(user)
	if err != nil {
		t.Fatalf("generate pair: %v", err)
	}
	auth := withBearer(pair.AccessToken)

	t.Run("missing token", func(t *testing.T) {
		rec := performRequest(env.router, http.MethodGet, "/api/profiles/"+user.ID, nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("not found uses PGRST116", func(t *testing.T) {
		rec := performRequest(env.router, http.MethodGet, "/api/profiles/"+user.ID, nil, auth)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		var resp errorResponse
		decodeBody(t, rec, &resp)
		if resp.Code != backend.CodeNotFound {
			t.Fatalf("expected code %s, got %q", backend.CodeNotFound, resp.Code)
		}
	})

	t.Run("other user forbidden", func(t *testing.T) {
		rec := performRequest(env.router, http.MethodGet, "/api/profiles/someone-else", nil, auth)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("create", func(t *testing.T) {
		rec := performRequest(env.router, http.MethodPost, "/api/profiles", map[string]any{
			"id":              user.ID,
			"user_type":       "work",
			"full_name":       "Sara",
			"known_languages": []string{"Arabic"},
		}, auth)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}

		rec = performRequest(env.router, http.MethodPost, "/api/profiles", map[string]any{"id": user.ID, "user_type": "work"}, auth)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409 on duplicate, got %d", rec.Code)
		}
	})

	t.Run("update keeps user type", func(t *testing.T) {
		rec := performRequest(env.router, http.MethodPatch, "/api/profiles/"+user.ID, map[string]any{"full_name": "Sara K."}, auth)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var resp struct {
			Profile domain.Profile `json:"profile"`
		}
		decodeBody(t, rec, &resp)
		if resp.Profile.FullName != "Sara K." || resp.Profile.UserType != domain.RoleWork {
			t.Fatalf("unexpected profile %+v", resp.Profile)
		}
	})

	t.Run("create for other user forbidden", func(t *testing.T) {
		rec := performRequest(env.router, http.MethodPost, "/api/profiles", map[string]any{"id": "someone-else", "user_type": "hire"}, auth)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})
}
