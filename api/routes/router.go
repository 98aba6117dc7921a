package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/trailteams-backend/api/controllers"
	teamcontrollers "github.com/angelmondragon/trailteams-backend/api/controllers/teams"
	"github.com/angelmondragon/trailteams-backend/api/middleware"
	"github.com/angelmondragon/trailteams-backend/internal/auth"
	"github.com/angelmondragon/trailteams-backend/internal/teams"
	"github.com/angelmondragon/trailteams-backend/pkg/auth/session"
	"github.com/angelmondragon/trailteams-backend/pkg/config"
	"github.com/angelmondragon/trailteams-backend/pkg/logger"
	"github.com/angelmondragon/trailteams-backend/pkg/metrics"
	"github.com/angelmondragon/trailteams-backend/pkg/redis"
)

// Params carries everything the HTTP surface needs from cmd/api.
type Params struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       *redis.Client
	Sessions    session.AccessSessionChecker
	Auth        auth.Service
	Teams       teams.Service
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
	)
	if p.HTTPMetrics != nil {
		r.Use(middleware.Metrics(p.HTTPMetrics))
	}

	readiness := map[string]controllers.Pinger{"db": p.DB}
	if p.Redis != nil {
		readiness["redis"] = p.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readiness))
	})
	if p.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	identity := middleware.Identity(middleware.IdentityOptions{
		JWT:                cfg.JWT,
		Sessions:           p.Sessions,
		AllowVisitorHeader: cfg.FeatureFlags.AllowVisitorIDHdr,
	}, logg)

	// A nil *redis.Client must not reach the middleware as a non-nil interface.
	var idempotencyStore redis.IdempotencyStore
	var limiter middleware.FixedWindowLimiter
	if p.Redis != nil {
		idempotencyStore = p.Redis
		limiter = p.Redis
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(p.Auth, logg))
		r.With(identity).Post("/logout", controllers.AuthLogout(p.Auth, logg))
		r.With(identity).Get("/me", controllers.AuthMe(p.Auth, logg))
	})

	r.Route("/api/v1/teams", func(r chi.Router) {
		r.Use(identity)
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Teams.IdempotencyTTL, logg))

		r.Post("/", teamcontrollers.Create(p.Teams, logg))
		r.Get("/", teamcontrollers.ListMine(p.Teams, logg))
		r.Get("/member-user-ids", teamcontrollers.MemberUserIDs(p.Teams, logg))
		r.With(middleware.RateLimit(middleware.JoinRateLimitPolicy(cfg.JoinRateLimit), limiter, logg)).
			Post("/join", teamcontrollers.Join(p.Teams, logg))

		r.Route("/{teamId}", func(r chi.Router) {
			r.Get("/", teamcontrollers.Get(p.Teams, logg))
			r.Put("/", teamcontrollers.Update(p.Teams, logg))
			r.Delete("/", teamcontrollers.Delete(p.Teams, logg))
			r.Post("/apply", teamcontrollers.Apply(p.Teams, logg))
			r.Post("/leave", teamcontrollers.Leave(p.Teams, logg))
			r.Post("/regenerate-invite-code", teamcontrollers.RegenerateInviteCode(p.Teams, logg))
			r.Get("/members", teamcontrollers.Members(p.Teams, logg))
			r.Get("/applications", teamcontrollers.Applications(p.Teams, logg))
			r.Put("/members/{membershipId}/approve", teamcontrollers.Review(p.Teams, logg))
			r.Delete("/members/{membershipId}", teamcontrollers.RemoveMember(p.Teams, logg))
		})
	})

	return r
}
