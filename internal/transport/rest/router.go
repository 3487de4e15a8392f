package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/rahmatagung/user-management/internal/auth"
	"github.com/rahmatagung/user-management/internal/department"
	"github.com/rahmatagung/user-management/internal/role"
	"github.com/rahmatagung/user-management/internal/transport/middleware"
	"github.com/rahmatagung/user-management/internal/transport/swagger"
	"github.com/rahmatagung/user-management/internal/user"
	"github.com/rahmatagung/user-management/internal/userdepartment"
)

// Handlers bundles every module handler the router wires up.
type Handlers struct {
	Auth           *auth.Handler
	User           *user.Handler
	Role           *role.Handler
	Department     *department.Handler
	UserDepartment *userdepartment.Handler
}

// RegisterAllRoutes mounts the whole HTTP surface. Signup and signin are
// public; everything else sits behind the auth middleware, and management
// endpoints additionally behind role gates.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))

	// OpenAPI spec and Swagger UI live outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/health/ping", healthHandler.pingHandler)

		// Public surface: account creation, signin, token refresh, and the
		// availability check signup forms poll
		r.Post("/users/signup", h.User.Signup)
		r.Post("/users/signin", h.Auth.Signin)
		r.Post("/users/refresh-token", h.Auth.Refresh)
		r.Get("/users/check-availability", h.User.CheckAvailability)

		// Everything below requires a valid access token
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Get("/users/me", h.User.GetProfile)
			pr.Post("/users/change-password", h.User.ChangePassword)

			pr.Get("/roles", h.Role.GetAll)
			pr.Get("/roles/{id}", h.Role.GetByID)

			pr.Get("/departments", h.Department.GetAll)
			pr.Get("/departments/hierarchy", h.Department.GetHierarchy)
			pr.Get("/departments/{id}", h.Department.GetByID)

			// Management surface, gated by role
			pr.Group(func(mr chi.Router) {
				mr.Use(h.Auth.RequireRoles(role.SuperAdmin, role.Admin, role.Manager))

				mr.Get("/users", h.User.GetAll)
				mr.Get("/users/{id}", h.User.GetByID)
				mr.Post("/users/change-role", h.User.ChangeRole)
				mr.Post("/users/{id}/assign-role", h.User.ChangeRole)
				mr.Get("/users/{id}/role-history", h.User.RoleHistory)
				mr.Put("/users/{id}/status", h.User.SetActive)

				mr.Get("/users/{id}/departments", h.UserDepartment.GetUserDepartments)
				mr.Put("/users/{id}/departments", h.UserDepartment.AssignDepartments)
				mr.Patch("/users/{id}/departments", h.UserDepartment.UpdateUserDepartments)
				mr.Delete("/users/{id}/departments", h.UserDepartment.ClearUserDepartments)
				mr.Put("/users/{id}/departments/primary", h.UserDepartment.SetPrimaryDepartment)
				mr.Get("/users/{id}/departments/check", h.UserDepartment.CheckMembership)

				mr.Get("/departments/stats", h.UserDepartment.GetDepartmentStats)
			})

			// Department creation is for admins only
			pr.Group(func(ar chi.Router) {
				ar.Use(h.Auth.RequireRoles(role.SuperAdmin, role.Admin))
				ar.Post("/departments", h.Department.Create)
			})
		})
	})
}
