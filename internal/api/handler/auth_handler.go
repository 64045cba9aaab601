package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/DemisRincon/skill-up/internal/api/middleware"
	"github.com/DemisRincon/skill-up/internal/domain"
	"github.com/DemisRincon/skill-up/internal/pkg/logger"
	"github.com/DemisRincon/skill-up/internal/service"
	"github.com/go-chi/chi/v5"
)

type AuthHandler struct {
	authService *service.AuthService
	cookieName  string
	tokenTTL    time.Duration
	logger      *logger.Logger
}

func NewAuthHandler(authService *service.AuthService, cookieName string, tokenTTL time.Duration, logger *logger.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookieName:  cookieName,
		tokenTTL:    tokenTTL,
		logger:      logger.Component("handler/auth"),
	}
}

func (h *AuthHandler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	r.Post("/logout", h.Logout)
	r.Get("/me", h.Me)

	return r
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	profile, token, err := h.authService.Register(r.Context(), req)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusCreated, map[string]any{"profile": profile})
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid request body", "error", err)
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	profile, token, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}

	h.setSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]any{"profile": profile})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me exposes the {identity, role} pair the guard resolved for this request.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		WriteError(w, domain.ErrProfileNotFound, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"session": session})
}

// SearchProfiles backs the recipient autocomplete on the authoring form.
func (h *AuthHandler) SearchProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.authService.SearchProfiles(r.Context(), r.URL.Query().Get("q"), 10)
	if err != nil {
		WriteError(w, err, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.tokenTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
