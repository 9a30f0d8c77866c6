package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testMiddleware() *Middleware {
	return NewMiddleware(HeaderProvider{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestRequireUser(t *testing.T) {
	t.Run("rejects anonymous request", func(t *testing.T) {
		handler := testMiddleware().RequireUser(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be reached")
		})

		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}

		var resp map[string]string
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp["error"] != "authentication required" {
			t.Errorf("unexpected error message: %s", resp["error"])
		}
	})

	t.Run("passes identity to handler", func(t *testing.T) {
		var got User
		handler := testMiddleware().RequireUser(func(w http.ResponseWriter, r *http.Request) {
			got, _ = UserFromContext(r.Context())
			w.WriteHeader(http.StatusOK)
		})

		req := httptest.NewRequest(http.MethodGet, "/cart", nil)
		req.Header.Set("X-User-Id", "user-1")
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("expected status 200, got %d", rec.Code)
		}
		if got.ID != "user-1" {
			t.Errorf("expected user-1 in context, got %q", got.ID)
		}
		if got.Role != RoleCustomer {
			t.Errorf("expected customer role by default, got %q", got.Role)
		}
	})
}

func TestRequireStaff(t *testing.T) {
	t.Run("rejects customer role", func(t *testing.T) {
		handler := testMiddleware().RequireStaff(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be reached")
		})

		req := httptest.NewRequest(http.MethodDelete, "/products/p1", nil)
		req.Header.Set("X-User-Id", "user-1")
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("expected status 403, got %d", rec.Code)
		}
	})

	t.Run("rejects anonymous request", func(t *testing.T) {
		handler := testMiddleware().RequireStaff(func(w http.ResponseWriter, r *http.Request) {
			t.Error("handler should not be reached")
		})

		req := httptest.NewRequest(http.MethodDelete, "/products/p1", nil)
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Errorf("expected status 401, got %d", rec.Code)
		}
	})

	t.Run("allows staff role", func(t *testing.T) {
		handler := testMiddleware().RequireStaff(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

		req := httptest.NewRequest(http.MethodDelete, "/products/p1", nil)
		req.Header.Set("X-User-Id", "admin-1")
		req.Header.Set("X-User-Role", "staff")
		rec := httptest.NewRecorder()
		handler(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("expected status 204, got %d", rec.Code)
		}
	})
}
