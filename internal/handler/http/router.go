package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/hris-dataflow-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-dataflow-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterConfig struct {
	AllowedOrigins []string
	Env            string
	Version        string
}

type Handlers struct {
	Profile      ProfileHandler
	Leave        LeaveHandler
	Policy       PolicyHandler
	Meeting      MeetingHandler
	Notification NotificationHandler
	Activity     ActivityHandler
	Stream       StreamHandler
	Metrics      http.Handler
}

func NewRouter(cfg RouterConfig, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(cfg.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-dataflow"),
		slog.String("version", cfg.Version),
		slog.String("env", cfg.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource cannot send headers; the stream validates its own token
		r.Get("/stream/{topic}", h.Stream.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)
			r.Use(chiMiddleware.AllowContentType("application/json"))

			r.Post("/stream/token", h.Stream.Token)

			r.Route("/profile/{employeeID}", func(r chi.Router) {
				r.Get("/", h.Profile.Get)
				r.Put("/", h.Profile.Update)
			})

			r.Route("/leave", func(r chi.Router) {
				r.Route("/types", func(r chi.Router) {
					r.Get("/", h.Leave.ListTypes)

					// HR only
					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireHR)
						r.Post("/", h.Leave.CreateType)
						r.Delete("/{id}", h.Leave.DeactivateType)
					})
				})

				r.Route("/requests", func(r chi.Router) {
					r.Get("/", h.Leave.ListRequests)
					r.Post("/", h.Leave.CreateRequest)
					r.Get("/{id}", h.Leave.GetRequest)
					r.Post("/{id}/cancel", h.Leave.CancelRequest)

					r.Group(func(r chi.Router) {
						r.Use(middleware.RequireApprover)
						r.Post("/{id}/approve", h.Leave.ApproveRequest)
						r.Post("/{id}/reject", h.Leave.RejectRequest)
					})
				})

				r.Get("/balances", h.Leave.GetBalances)
			})

			r.Route("/policies", func(r chi.Router) {
				r.Get("/", h.Policy.List)
				r.Get("/pending", h.Policy.Pending)
				r.Post("/{id}/acknowledge", h.Policy.Acknowledge)
				r.With(middleware.RequireHR).Post("/", h.Policy.Create)
			})

			r.Route("/meetings", func(r chi.Router) {
				r.Get("/", h.Meeting.List)
				r.With(middleware.RequireApprover).Post("/", h.Meeting.Schedule)
				r.Post("/{id}/confirm", h.Meeting.Confirm)
				r.Put("/{id}/status", h.Meeting.UpdateStatus)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", h.Notification.List)
				r.Post("/{id}/read", h.Notification.MarkAsRead)
				r.With(middleware.RequireHR).Post("/", h.Notification.Send)
			})

			r.Route("/activity", func(r chi.Router) {
				r.Get("/me", h.Activity.Recent)
				r.With(middleware.RequireApprover).Get("/{entityType}/{entityID}", h.Activity.History)
			})
		})
	})
	return r
}
