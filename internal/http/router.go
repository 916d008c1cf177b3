package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/lebanesebrotherhood/brotherhood/internal/config"
	httpmiddleware "github.com/lebanesebrotherhood/brotherhood/internal/http/middleware"
	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
	"github.com/lebanesebrotherhood/brotherhood/internal/repo"
	"github.com/lebanesebrotherhood/brotherhood/internal/service"
)

type Handler struct {
	cfg           *config.ServerConfig
	store         *repo.Store
	authService   *service.AuthService
	rbac          *service.RBACService
	members       *service.MembershipService
	publicLimiter *httpmiddleware.RateLimiter
	authLimiter   *httpmiddleware.RateLimiter
}

// NewRouter returns the development API mounted under /api.
func NewRouter(cfg *config.ServerConfig, store *repo.Store, authService *service.AuthService) (http.Handler, error) {
	if cfg == nil || store == nil || authService == nil {
		return nil, errors.New("router: config, store and auth service are required")
	}

	h := &Handler{
		cfg:           cfg,
		store:         store,
		authService:   authService,
		rbac:          service.NewRBACService(authService),
		members:       service.NewMembershipService(store),
		publicLimiter: httpmiddleware.NewRateLimiter(cfg.RateLimitPublic.RequestsPerSecond, cfg.RateLimitPublic.Burst),
		authLimiter:   httpmiddleware.NewRateLimiter(cfg.RateLimitAuth.RequestsPerSecond, cfg.RateLimitAuth.Burst),
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(httpmiddleware.Logging)
	r.Use(httpmiddleware.Recover)
	r.Use(httpmiddleware.CORS(cfg.AllowOrigins))

	r.Route("/api", func(api chi.Router) {
		api.Group(func(public chi.Router) {
			public.Use(httpmiddleware.IPRateLimit(h.publicLimiter))

			public.Get("/health", h.Health)
			public.Post("/login", h.Login)
		})

		api.Group(func(private chi.Router) {
			private.Use(httpmiddleware.Auth(authService.JWT()))
			private.Use(httpmiddleware.UserRateLimit(h.authLimiter))

			private.Get("/me", h.Me)
			private.Get("/sections", h.Sections)
			for _, sec := range membership.Sections() {
				private.Get("/"+sec.ID.Slug()+"-role", h.Roster(sec.ID))
			}

			private.Get("/users", h.ListUsers)
			private.Post("/adduser", h.CreateUser)
			private.Delete("/user/delete/{id}", h.DeleteUser)

			private.Get("/events", h.ListEvents)
			private.Post("/addevent", h.CreateEvent)

			private.Get("/shops", h.ListShops)
			private.Post("/shops", h.CreateShop)

			private.Route("/drive-accounts", func(d chi.Router) {
				d.Get("/", h.ListDriveAccounts)
				d.Post("/", h.CreateDriveAccount)
				d.Get("/{id}", h.RevealDriveAccount)
				d.Delete("/{id}", h.DeleteDriveAccount)
			})

			private.Get("/meetings", h.ListMeetings)
			private.Post("/addmeetinglink", h.SaveMeetingLink)

			private.Group(func(admin chi.Router) {
				admin.Use(httpmiddleware.RequireRoleManager(h.rbac))

				for _, sec := range membership.Sections() {
					admin.Post("/"+sec.ID.Slug()+"/assign-role", h.AssignRole(sec.ID))
					admin.Post("/"+sec.ID.Slug()+"/remove-role", h.RemoveRole(sec.ID))
				}
				admin.Post("/user/{id}/add-to-section", h.AddToSection)
				admin.Post("/user/{id}/remove-from-section", h.RemoveFromSection)
			})
		})
	})

	return r, nil
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decodeJSON(w, r, &payload) {
		return
	}
	if strings.TrimSpace(payload.Email) == "" {
		WriteValidation(w, "email", "The email field is required.")
		return
	}
	if payload.Password == "" {
		WriteValidation(w, "password", "The password field is required.")
		return
	}

	token, err := h.authService.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			WriteError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		writeDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_in":   int(h.cfg.JWTAccessTTL.Seconds()),
	})
}

// Me returns the caller's profile with their current grants.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.authService.Profile(r.Context(), httpmiddleware.GetUserID(r.Context()))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			WriteError(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, profile)
}
