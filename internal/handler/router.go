package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/chiragjethva03/sarvam-backend/internal/auth"
	"github.com/chiragjethva03/sarvam-backend/internal/metrics"
	"github.com/chiragjethva03/sarvam-backend/internal/middleware"
	"github.com/chiragjethva03/sarvam-backend/internal/service"
)

// Deps bundles everything the router needs.
type Deps struct {
	Auth     *service.AuthService
	Users    *service.UserService
	Posts    *service.PostService
	Groups   *service.GroupService
	JWT      *auth.JWTManager
	Registry *prometheus.Registry
	Metrics  *metrics.Collector

	// AuthLimiter guards the unauthenticated auth endpoints; GeneralLimiter
	// guards everything else. Either may be nil to disable limiting.
	AuthLimiter    *middleware.RateLimiter
	GeneralLimiter *middleware.RateLimiter

	// CORSAllowedOrigin is the origin allowed to call the API, "*" for any.
	CORSAllowedOrigin string

	// UploadDir, when set, is served read-only under /uploads for the
	// local-disk uploader.
	UploadDir string
}

// NewRouter builds the HTTP routing table.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{d.CORSAllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.Logging(d.Metrics))

	authH := NewAuthHandler(d.Auth)
	userH := NewUserHandler(d.Users)
	postH := NewPostHandler(d.Posts)
	expenseH := NewExpenseHandler(d.Groups)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
	})
	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(d.Registry))
	}
	if d.UploadDir != "" {
		r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.UploadDir))))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if d.AuthLimiter != nil {
				r.Use(d.AuthLimiter.Middleware())
			}
			r.Post("/signup", authH.Signup)
			r.Post("/login", authH.Login)
			r.Post("/google-signin", authH.GoogleSignIn)
			r.Post("/validate-email", authH.ValidateEmail)
			r.Post("/verify-otp", authH.VerifyOTP)
			r.Post("/reset-password", authH.ResetPassword)
		})

		r.Group(func(r chi.Router) {
			if d.GeneralLimiter != nil {
				r.Use(d.GeneralLimiter.Middleware())
			}

			// The feed is readable without a token; liked flags light up
			// when one is supplied.
			r.With(middleware.OptionalAuth(d.JWT)).Get("/posts", postH.List)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth(d.JWT))

				r.Route("/users", func(r chi.Router) {
					r.Get("/me", userH.Me)
					r.Put("/update-details", userH.UpdateDetails)
					r.Put("/change-password", userH.ChangePassword)
					r.Post("/upload-profile-picture", userH.UploadProfilePicture)
					r.Delete("/delete", userH.Delete)
				})

				// Registered flat instead of via Route("/posts") because
				// GET /posts already lives outside this group.
				r.Post("/posts/create-post", postH.Create)
				r.Get("/posts/my", postH.My)
				r.Post("/posts/{postId}/like", postH.ToggleLike)
				r.Delete("/posts/{id}", postH.Delete)

				r.Route("/expenses", func(r chi.Router) {
					r.Post("/group-with-expense", expenseH.CreateGroupWithExpense)
					r.Get("/my-groups", expenseH.MyGroups)
					r.Get("/groups/{id}", expenseH.GetGroup)
					r.Get("/groups/{id}/balances", expenseH.GetGroupBalances)
					r.Delete("/delete/{id}", expenseH.DeleteGroup)
				})
			})
		})
	})

	return r
}
