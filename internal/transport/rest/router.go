package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	core "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/auth"
	"github.com/frahmantamala/org-directory/internal/company"
	"github.com/frahmantamala/org-directory/internal/department"
	"github.com/frahmantamala/org-directory/internal/geo"
	"github.com/frahmantamala/org-directory/internal/hierarchy"
	"github.com/frahmantamala/org-directory/internal/transport/middleware"
	"github.com/frahmantamala/org-directory/internal/transport/swagger"
	"github.com/frahmantamala/org-directory/internal/user"
)

type Handlers struct {
	Auth       *auth.Handler
	User       *user.Handler
	Department *department.Handler
	Hierarchy  *hierarchy.Handler
	Company    *company.Handler
	Geo        *geo.Handler
}

// RegisterAllRoutes wires the whole API under /api/v1. Route groups gate
// by privilege tier; the services re-check authorization with the
// hierarchy-scoped rules.
func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Public auth surface: registration, login and the email-driven
		// activation and password-reset flows.
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/register", h.Auth.Register)
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
			sr.Get("/activation", h.Auth.Activation)
			sr.Post("/activation/confirm", h.Auth.Confirm)
			sr.Post("/activation/resend", h.Auth.ResendActivation)
			sr.Post("/forgot-password", h.Auth.ForgotPassword)
			sr.Post("/activate-forgot-password", h.Auth.ResetPassword)
		})

		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			// Any authenticated user.
			pr.Get("/users/me", h.User.GetSelf)
			pr.Patch("/users/me", h.User.UpdateSelf)
			pr.Get("/companies", h.Company.List)
			pr.Get("/companies/{id}", h.Company.GetByID)
			pr.Get("/company-types", h.Company.ListTypes)
			pr.Get("/department-types", h.Department.ListTypes)
			pr.Get("/cities", h.Geo.ListCities)
			pr.Get("/regions", h.Geo.ListRegions)
			pr.Get("/towns", h.Geo.ListTowns)

			// Admin and Manager tier.
			pr.Group(func(mr chi.Router) {
				mr.Use(h.Auth.RequireRoles(core.RoleAdmin, core.RoleManager))

				mr.Post("/auth/register-by-manager", h.Auth.RegisterByManager)

				mr.Route("/users", func(ur chi.Router) {
					ur.Get("/", h.User.List)
					ur.Get("/detailed", h.User.ListDetailed)
					ur.Get("/{id}", h.User.GetByID)
					ur.Patch("/{id}", h.User.Update)
					ur.Put("/{id}/department", h.User.MoveDepartment)
					ur.Put("/{id}/role", h.User.ChangeRole)
					ur.Delete("/{id}", h.User.SoftDelete)
				})

				mr.Route("/departments", func(dr chi.Router) {
					dr.Get("/", h.Department.List)
					dr.Get("/by-name", h.Department.GetByName)
					dr.Get("/{id}", h.Department.GetByID)
					dr.Patch("/{id}", h.Department.Update)
					dr.Get("/{id}/users", h.User.ListByDepartment)
					dr.Get("/{id}/children", h.Hierarchy.Children)
					dr.Get("/{id}/parents", h.Hierarchy.Parents)
					dr.Get("/{id}/descendants", h.Hierarchy.Descendants)
					dr.Get("/{id}/ancestors", h.Hierarchy.Ancestors)
				})

				mr.Get("/hierarchy", h.Hierarchy.ListEdges)
			})

			// Admin only.
			pr.Group(func(ar chi.Router) {
				ar.Use(h.Auth.RequireRoles(core.RoleAdmin))

				ar.Delete("/users/{id}/permanent", h.User.HardDelete)

				ar.Post("/departments", h.Department.Create)
				ar.Delete("/departments/{id}", h.Department.SoftDelete)
				ar.Delete("/departments/{id}/permanent", h.Department.HardDelete)

				ar.Post("/hierarchy", h.Hierarchy.AddEdge)
				ar.Delete("/hierarchy", h.Hierarchy.RemoveEdge)

				ar.Post("/companies", h.Company.Create)
				ar.Patch("/companies/{id}", h.Company.Update)
				ar.Delete("/companies/{id}", h.Company.SoftDelete)

				ar.Post("/cities", h.Geo.CreateCity)
				ar.Post("/regions", h.Geo.CreateRegion)
				ar.Post("/towns", h.Geo.CreateTown)
				ar.Delete("/towns/{id}", h.Geo.DeleteTown)
			})
		})
	})
}
