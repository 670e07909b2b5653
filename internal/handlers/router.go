package handlers

import (
	"net/http"

	"github.com/ndanilov/staffdesk/internal/handlers/middleware"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	auth *AuthHandler,
	staff *StaffHandler,
	authMiddleware *middleware.Auth,
	mds ...func(next http.Handler) http.Handler,
) http.Handler {
	withAuth := func(h http.HandlerFunc) http.Handler {
		return authMiddleware.Wrap(h)
	}

	api := http.NewServeMux()

	api.HandleFunc("POST /auth/register", auth.Register)
	api.HandleFunc("POST /auth/login", auth.Login)
	api.HandleFunc("POST /auth/refresh", auth.Refresh)
	api.Handle("POST /auth/logout", withAuth(auth.Logout))

	api.Handle("POST /staff", withAuth(staff.Create))
	api.Handle("GET /staff", withAuth(staff.List))
	api.Handle("GET /staff/{staff_id}", withAuth(staff.Get))
	api.Handle("PUT /staff/{staff_id}", withAuth(staff.Update))
	api.Handle("DELETE /staff/{staff_id}", withAuth(staff.Delete))

	root := http.NewServeMux()
	root.Handle("/api/v1/", http.StripPrefix("/api/v1", api))

	return chain(root, mds...)
}
