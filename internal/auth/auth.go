// Package auth bridges the external identity provider into request handling.
// Authentication itself happens upstream; this service only consumes an
// already-established identity and an explicit role.
package auth

import (
	"context"
	"net/http"

	"github.com/joao-fontenele/storefront-core/internal/domain"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleStaff    Role = "staff"
)

type User struct {
	ID   string
	Role Role
}

// Provider resolves the authenticated user for a request, or
// domain.ErrUnauthorized when the request is anonymous.
type Provider interface {
	CurrentUser(r *http.Request) (User, error)
}

// HeaderProvider trusts identity headers stamped by the upstream gateway,
// which strips them from client traffic before forwarding.
type HeaderProvider struct{}

func (HeaderProvider) CurrentUser(r *http.Request) (User, error) {
	id := r.Header.Get("X-User-Id")
	if id == "" {
		return User{}, domain.ErrUnauthorized
	}

	role := RoleCustomer
	if r.Header.Get("X-User-Role") == string(RoleStaff) {
		role = RoleStaff
	}

	return User{ID: id, Role: role}, nil
}

type contextKey struct{}

func ContextWithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(contextKey{}).(User)
	return user, ok
}
