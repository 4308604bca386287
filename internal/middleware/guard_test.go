package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGuardMiddleware_Anonymous_RedirectsToLogin(t *testing.T) {
	mw := NewGuardMiddleware("", "/login", nil)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/roles", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Errorf("Location = %q, want %q", loc, "/login")
	}
}

func TestGuardMiddleware_Authenticated_NoRequiredPermission_Passes(t *testing.T) {
	mw := NewGuardMiddleware("", "/login", nil)

	handlerCalled := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/roles", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), testPrincipal()))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if !handlerCalled {
		t.Fatal("authenticated request should pass an auth-only guard")
	}
}

func TestGuardMiddleware_MissingPermission_RedirectsToLogin(t *testing.T) {
	mw := NewGuardMiddleware("tenant_members.assign", "/login", nil)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/members", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), testPrincipal()))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusSeeOther)
	}
}

func TestGuardMiddleware_HeldPermission_Passes(t *testing.T) {
	mw := NewGuardMiddleware("roles.edit", "/login", nil)

	handlerCalled := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/roles", nil)
	req = req.WithContext(ContextWithPrincipal(req.Context(), testPrincipal()))
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if !handlerCalled {
		t.Fatal("request with the required permission should pass")
	}
}

func TestRequireAuth_IsAuthOnlyGuard(t *testing.T) {
	mw := RequireAuth("/login", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	w := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called for anonymous request")
	})).ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusSeeOther {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusSeeOther)
	}
}
