package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/absence-ledger/internal/config"
	"github.com/cmlabs-hris/absence-ledger/internal/domain/user"
	"github.com/cmlabs-hris/absence-ledger/internal/handler/http/middleware"
	"github.com/cmlabs-hris/absence-ledger/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(cfg *config.Config, JWTService jwt.Service, absenceHandler AbsenceHandler, workLogHandler WorkLogHandler, eventHandler EventHandler) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.App.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       cfg.SlogLevel(),
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "absence-ledger"),
		slog.String("version", "v1.0.0"),
		slog.String("env", cfg.App.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.App.CORSOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.SlogLevel(),
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource cannot set headers, so the stream also accepts ?jwt=
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.Actor)

			r.Get("/events", eventHandler.Stream)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.Actor)

			r.Get("/absence-types", absenceHandler.ListTypes)

			r.Route("/absence-requests", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionAbsenceCreate)).Post("/", absenceHandler.CreateRequest)
				r.Get("/", absenceHandler.ListRequests)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", absenceHandler.GetRequest)
					r.Put("/", absenceHandler.UpdateRequest)
					r.Delete("/", absenceHandler.DeleteRequest)

					// Reviewers only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequirePermission(user.PermissionAbsenceReview))
						r.Post("/approve", absenceHandler.ApproveRequest)
						r.Post("/reject", absenceHandler.RejectRequest)
					})
				})
			})

			r.Route("/absences", func(r chi.Router) {
				r.Get("/", absenceHandler.ListAbsences)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequirePermission(user.PermissionAbsenceDirect))
					r.Post("/", absenceHandler.CreateAbsence)
					r.Delete("/{id}", absenceHandler.DeleteAbsence)
				})
			})

			r.Get("/employees/{id}/balance", absenceHandler.GetBalance)

			r.Route("/work-logs", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionWorkLogOwn))
				r.Post("/clock-in", workLogHandler.ClockIn)
				r.Post("/clock-out", workLogHandler.ClockOut)
				r.Get("/", workLogHandler.List)
			})
		})
	})
	return r
}
