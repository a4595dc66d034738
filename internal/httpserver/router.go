package httpserver

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"lostfound/internal/blob"
	"lostfound/internal/config"
	"lostfound/internal/mailer"
	"lostfound/internal/security"
	"lostfound/internal/service"
	"lostfound/internal/store/sqlite"
	"lostfound/internal/ws"

	_ "lostfound/docs"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter constructs the main HTTP router and wires routes,
// services, and middleware.
func NewRouter(
	cfg *config.Config,
	db *sql.DB,
	hub *ws.Hub,
	tokenSvc *security.TokenService,
	passwordHasher *security.PasswordHasher,
	encryptor *security.Encryptor,
	mail mailer.Mailer,
	blobs blob.Store,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(MetricsMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Repositories
	userRepo := sqlite.NewUserRepo(db)
	itemRepo := sqlite.NewItemRepo(db)
	threadRepo := sqlite.NewThreadRepo(db)
	msgRepo := sqlite.NewMessageRepo(db)

	// Services
	authSvc := service.NewAuthService(userRepo, tokenSvc, passwordHasher, mail, cfg.BaseURL)
	itemSvc := service.NewItemService(itemRepo, userRepo, threadRepo)
	chatSvc := service.NewChatService(itemRepo, threadRepo, msgRepo, userRepo, encryptor, blobs, hub)

	secureCookies := cfg.Env == "production"

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": cfg.AppName,
			"docs":    "/docs",
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL("/docs/doc.json"),
	))

	r.Route("/api", func(r chi.Router) {
		// Session decoding is best-effort on every route; route groups
		// below decide whether anonymous is acceptable.
		r.Use(SessionMiddleware(tokenSvc, cfg.CookieName, userRepo))

		r.Route("/users", func(r chi.Router) {
			r.Post("/signup", handleSignup(authSvc))
			r.Get("/verify", handleVerify(authSvc))
			r.With(LoginRateLimit).Post("/login", handleLogin(authSvc, cfg.CookieName, tokenSvc.TTL(), secureCookies))
			r.Post("/logout", handleLogout(cfg.CookieName))

			r.Group(func(r chi.Router) {
				r.Use(RequireUser)
				r.Get("/me", handleMe())
				r.Get("/items", handleMyItems(itemSvc))
			})
		})

		r.Route("/items", func(r chi.Router) {
			r.Get("/", handlePublicFeed(itemSvc))
			r.Get("/{id:[0-9]+}", handleGetItem(itemSvc))

			r.Group(func(r chi.Router) {
				r.Use(RequireUser)
				r.Post("/", handleCreateItem(itemSvc))
				r.Patch("/{id:[0-9]+}/claim", handleClaimItem(itemSvc))
				r.Delete("/{id:[0-9]+}", handleDeleteItem(itemSvc))
			})

			r.Group(func(r chi.Router) {
				r.Use(RequireAdmin)
				r.Get("/unapproved", handleUnapprovedItems(itemSvc))
				r.Get("/approved", handleApprovedItems(itemSvc))
				r.Patch("/{id:[0-9]+}/approve", handleApproveItem(itemSvc))
				r.Patch("/{id:[0-9]+}/unclaim", handleUnclaimItem(itemSvc))
				r.Patch("/{id:[0-9]+}/resolve", handleResolveItem(itemSvc))
				r.Patch("/{id:[0-9]+}/status", handleSetItemStatus(itemSvc))
			})
		})

		r.Route("/chats", func(r chi.Router) {
			r.Use(RequireUser)
			r.Get("/{itemId}", handleListChat(chatSvc))
			r.Post("/{itemId}", handlePostChat(chatSvc))
		})

		r.Get("/uploads/{filename}", handleServeUpload(blobs))
	})

	// WebSocket endpoint for chat message push
	r.Get("/ws", ws.MakeHandler(hub, tokenSvc, cfg.CookieName, cfg.CORSOrigins))

	return r
}
