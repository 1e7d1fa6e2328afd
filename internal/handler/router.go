package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"guildchat/internal/pkg/auth/jwt"
	"guildchat/internal/pkg/limiter"
	"guildchat/internal/pkg/logx"
	"guildchat/internal/pkg/resp"
)

// Requests allowed per client IP: a sustained rate per second and a burst.
const (
	ConnectRate  = 1
	ConnectBurst = 10

	APIRate  = 5
	APIBurst = 20
)

// Router builds the HTTP routing table and the per-IP limiters guarding websocket
// handshakes and REST reads. The caller invokes the returned func on shutdown.
func Router(deps *AppDeps) (http.Handler, func()) {
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)
	apiLimiter := limiter.NewIPRateLimiter(rate.Limit(APIRate), APIBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{}, len(deps.Config.AllowedOrigins))
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	wsUpgrader := websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.IsDevelopment() {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := deps.Config.AllowedOrigins
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", SessionHeader},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", HandleHealth(deps))

	r.Route("/api", func(api chi.Router) {
		api.Use(apiLimiter.Middleware)
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))
		api.Use(jwt.RequireIdentity)

		api.Route("/channels/{channelId}", func(ch chi.Router) {
			ch.Get("/messages", HandleChannelMessages(deps))
			ch.Get("/presence", HandleChannelPresence(deps))
		})
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	return r, func() {
		connectLimiter.Stop()
		apiLimiter.Stop()
	}
}

// HandleHealth reports liveness, the live connection count and store reachability.
func HandleHealth(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := map[string]any{
			"status":      "ok",
			"service":     "guildchat",
			"connections": deps.Hub.ConnectionCount(),
			"store":       deps.Config.MessageStore,
		}

		if pinger, ok := deps.Store.(Pinger); ok {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()

			if err := pinger.Ping(ctx); err != nil {
				logx.Warn("Health check: message store unreachable", "error", err.Error())
				data["status"] = "degraded"
			}
		}

		resp.RespondSuccess(w, r, data)
	}
}
