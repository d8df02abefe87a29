package router

import (
	"net/http"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/config"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/enum"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/handler"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/localstore"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/menu"
	mw "github.com/Kabeer-Ahmad/POS-Gloria/internal/middleware"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/receipt"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/service"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/session"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/ws"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

// Deps are the long-lived components the routes are served from.
type Deps struct {
	Engine   *service.Engine
	Catalog  *menu.Catalog
	History  *localstore.History
	Auth     *session.Authenticator
	Sessions *session.Manager
	Hub      *ws.Hub
	Receipt  receipt.Options
	// RemoteMode is reported by /health: "remote" or "local-only".
	RemoteMode string
}

// New creates a Chi router with all application routes wired up.
// Applies authentication, session and role-based middleware as needed.
func New(cfg *config.Config, deps Deps, logger *zap.SugaredLogger) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","mode":"` + deps.RemoteMode + `"}`))
	})

	authHandler := handler.NewAuthHandler(deps.Auth, deps.Sessions, cfg.JWTSecret, logger)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(deps.Hub, cfg.JWTSecret, w, r)
	})

	// Protected routes (require a token for the terminal's current session)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))
		r.Use(mw.RequireSession(deps.Sessions))

		authHandler.RegisterProtectedRoutes(r)

		menuHandler := handler.NewMenuHandler(deps.Catalog, logger)
		r.Route("/menu", func(r chi.Router) {
			menuHandler.RegisterRoutes(r)
			r.Group(func(r chi.Router) {
				r.Use(mw.RequireRole(enum.StaffRoleAdmin))
				menuHandler.RegisterAdminRoutes(r)
			})
		})

		posHandler := handler.NewPOSHandler(deps.Engine, deps.Catalog, deps.Receipt, logger)
		posHandler.RegisterRoutes(r)

		historyHandler := handler.NewHistoryHandler(deps.History, deps.Receipt, logger)
		r.Route("/orders/history", historyHandler.RegisterRoutes)

		// Admin-only routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireRole(enum.StaffRoleAdmin))
			reportsHandler := handler.NewReportsHandler(deps.History, cfg.Location(), logger)
			r.Route("/reports", reportsHandler.RegisterRoutes)
		})
	})

	logger.Infow("router initialized", "mode", deps.RemoteMode)
	return r
}
