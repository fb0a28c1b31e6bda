package api

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	deliverylist "github.com/magabrotheeeer/csa-backend/internal/http/handlers/delivery/list"
	"github.com/magabrotheeeer/csa-backend/internal/http/handlers/health"
	jokercancel "github.com/magabrotheeeer/csa-backend/internal/http/handlers/joker/cancel"
	jokerlist "github.com/magabrotheeeer/csa-backend/internal/http/handlers/joker/list"
	"github.com/magabrotheeeer/csa-backend/internal/http/handlers/joker/use"
	parameterlist "github.com/magabrotheeeer/csa-backend/internal/http/handlers/parameter/list"
	"github.com/magabrotheeeer/csa-backend/internal/http/handlers/parameter/set"
	"github.com/magabrotheeeer/csa-backend/internal/http/handlers/payment/build"
	"github.com/magabrotheeeer/csa-backend/internal/http/handlers/pickuplocation/earliest"
	subscriptioncancel "github.com/magabrotheeeer/csa-backend/internal/http/handlers/subscription/cancel"
	subscriptionlist "github.com/magabrotheeeer/csa-backend/internal/http/handlers/subscription/list"
	"github.com/magabrotheeeer/csa-backend/internal/http/middlewarectx"
	"github.com/magabrotheeeer/csa-backend/internal/lib/jwt"
	"github.com/magabrotheeeer/csa-backend/internal/services/delivery"
	"github.com/magabrotheeeer/csa-backend/internal/services/joker"
	"github.com/magabrotheeeer/csa-backend/internal/services/parameter"
	"github.com/magabrotheeeer/csa-backend/internal/services/payment"
	"github.com/magabrotheeeer/csa-backend/internal/services/scheduler"
	"github.com/magabrotheeeer/csa-backend/internal/services/subscription"
)

// Services сервисы, которые обслуживают маршруты.
type Services struct {
	Deliveries    *delivery.Service
	Jokers        *joker.Service
	Subscriptions *subscription.Service
	Parameters    *parameter.Service
	Payments      *payment.Builder
	Scheduler     *scheduler.Service
	Health        health.Checker
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, tokens middlewarectx.TokenParser, limiter *rate.Limiter, s Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Get("/health", health.New(logger, s.Health).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(tokens, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, limiter))

			r.Get("/deliveries", deliverylist.New(logger, s.Deliveries).ServeHTTP)
			r.Get("/jokers", jokerlist.New(logger, s.Jokers).ServeHTTP)
			r.Post("/jokers", use.New(logger, s.Jokers).ServeHTTP)
			r.Delete("/jokers/{id}", jokercancel.New(logger, s.Jokers).ServeHTTP)
			r.Get("/subscriptions", subscriptionlist.New(logger, s.Subscriptions).ServeHTTP)
			r.Post("/subscriptions/{id}/cancel", subscriptioncancel.New(logger, s.Subscriptions).ServeHTTP)
			r.Get("/pickup-location/earliest-change", earliest.New(logger, s.Subscriptions).ServeHTTP)

			// Администрирование
			r.Route("/admin", func(r chi.Router) {
				r.Use(middlewarectx.RequireRole(logger, jwt.RoleAdmin))
				r.Get("/parameters", parameterlist.New(logger, s.Parameters).ServeHTTP)
				r.Put("/parameters/{key}", set.New(logger, s.Parameters).ServeHTTP)
				r.Post("/payments/build", build.New(logger, s.Payments, s.Scheduler).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
