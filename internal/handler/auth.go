package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Kabeer-Ahmad/POS-Gloria/internal/auth"
	"github.com/Kabeer-Ahmad/POS-Gloria/internal/session"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Credentials checks staff credentials.
// Satisfied by *session.Authenticator; narrow interface for testability.
type Credentials interface {
	QuickLogin(role, password string) (session.Staff, error)
	Login(ctx context.Context, email, password string) (session.Staff, error)
}

// SessionStore caches the signed-in staff member on the terminal.
// Satisfied by *session.Manager.
type SessionStore interface {
	Save(staff session.Staff) (session.Cached, error)
	Current() (session.Cached, error)
	Clear() error
}

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	creds     Credentials
	sessions  SessionStore
	jwtSecret string
	logger    *zap.SugaredLogger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(creds Credentials, sessions SessionStore, jwtSecret string, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{creds: creds, sessions: sessions, jwtSecret: jwtSecret, logger: logger}
}

// RegisterRoutes registers the public auth endpoints on the given Chi router.
func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/auth/quick-login", h.QuickLogin)
	r.Post("/auth/login", h.Login)
	r.Get("/auth/session", h.Session)
}

// RegisterProtectedRoutes registers endpoints that need a valid token.
func (h *AuthHandler) RegisterProtectedRoutes(r chi.Router) {
	r.Post("/auth/logout", h.Logout)
}

// --- Request / Response types ---

type quickLoginRequest struct {
	Role     string `json:"role"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string        `json:"access_token"`
	ExpiresAt   time.Time     `json:"expires_at"`
	Staff       staffResponse `json:"staff"`
}

type sessionResponse struct {
	Staff     staffResponse `json:"staff"`
	ExpiresAt time.Time     `json:"expires_at"`
}

type staffResponse struct {
	ID              string `json:"id"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	CanManageMenu   bool   `json:"can_manage_menu"`
	CanViewReports  bool   `json:"can_view_reports"`
	CanDeleteOrders bool   `json:"can_delete_orders"`
}

func toStaffResponse(s session.Staff) staffResponse {
	return staffResponse{
		ID:              s.ID.String(),
		Email:           s.Email,
		Role:            s.Role,
		CanManageMenu:   s.CanManageMenu(),
		CanViewReports:  s.CanViewReports(),
		CanDeleteOrders: s.CanDeleteOrders(),
	}
}

// --- Handlers ---

// QuickLogin signs in as one of the built-in admin or cashier accounts.
func (h *AuthHandler) QuickLogin(w http.ResponseWriter, r *http.Request) {
	var req quickLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Role == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "role and password are required"})
		return
	}

	staff, err := h.creds.QuickLogin(req.Role, req.Password)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	h.startSession(w, staff)
}

// Login handles email + password authentication against staff_users.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "email and password are required"})
		return
	}

	staff, err := h.creds.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	h.startSession(w, staff)
}

// Session reports who is signed in on this terminal.
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	cached, err := h.sessions.Current()
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "no active session"})
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse{
		Staff:     toStaffResponse(cached.Staff),
		ExpiresAt: cached.Expires,
	})
}

// Logout clears the terminal's session. Outstanding tokens stop working
// because protected routes check the session as well as the token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Clear(); err != nil {
		h.logger.Errorw("clear session", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func (h *AuthHandler) startSession(w http.ResponseWriter, staff session.Staff) {
	cached, err := h.sessions.Save(staff)
	if err != nil {
		h.logger.Errorw("save session", "staff_id", staff.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	token, err := auth.GenerateToken(h.jwtSecret, staff.ID, staff.Email, staff.Role, cached.Expires)
	if err != nil {
		h.logger.Errorw("generate token", "staff_id", staff.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	h.logger.Infow("staff signed in", "staff_id", staff.ID, "role", staff.Role)
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		ExpiresAt:   cached.Expires,
		Staff:       toStaffResponse(staff),
	})
}

func (h *AuthHandler) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
	case errors.Is(err, session.ErrInvalidRole):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid role"})
	case errors.Is(err, session.ErrRemoteNotConfigured):
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "email login is unavailable in local-only mode"})
	default:
		h.logger.Errorw("login", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("failed to encode JSON response", "error", err)
	}
}
