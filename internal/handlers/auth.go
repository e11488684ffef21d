package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/tudao164/KiemThuPhanMem/internal/auth"
	"github.com/tudao164/KiemThuPhanMem/internal/logging"
	"github.com/tudao164/KiemThuPhanMem/internal/services"
	"github.com/tudao164/KiemThuPhanMem/internal/store"
)

const (
	msgNotAuthenticated = "not authenticated"
	msgInvalidToken     = "invalid or expired token"
)

// FailureRecorder counts rejected bearer tokens by reason.
type FailureRecorder interface {
	AuthFailure(reason string)
}

// Authenticator resolves bearer tokens into identities for protected routes.
type Authenticator struct {
	resolver *auth.Resolver
	failures FailureRecorder
	logger   logging.Logger
}

// NewAuthenticator builds the middleware. failures may be nil.
func NewAuthenticator(resolver *auth.Resolver, failures FailureRecorder, logger logging.Logger) *Authenticator {
	return &Authenticator{resolver: resolver, failures: failures, logger: logger}
}

// RequireAuth rejects requests without a valid bearer token and injects
// the resolved identity into the request context. Every rejection looks
// the same to the client; the reason is only logged and counted.
func (a *Authenticator) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, err := bearerToken(r)
		if err != nil {
			a.reject(r, auth.ReasonMissing, err)
			writeUnauthorized(w, msgNotAuthenticated)
			return
		}

		identity, err := a.resolver.Resolve(r.Context(), token)
		if err != nil {
			if reason, ok := auth.ReasonOf(err); ok {
				a.reject(r, reason, err)
				writeUnauthorized(w, msgInvalidToken)
				return
			}
			a.logger.Error(r.Context(), "resolve identity", "error", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.ContextWithIdentity(r.Context(), identity)))
	})
}

func (a *Authenticator) reject(r *http.Request, reason auth.Reason, err error) {
	if a.failures != nil {
		a.failures.AuthFailure(string(reason))
	}
	a.logger.Warn(r.Context(), "authentication failed",
		"reason", string(reason),
		"path", r.URL.Path,
		"error", err,
	)
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	writeError(w, http.StatusUnauthorized, message)
}

// AuthHandler provides registration, login, logout and profile endpoints.
type AuthHandler struct {
	authService *services.AuthService
	userService *services.UserService
	logger      logging.Logger
}

// NewAuthHandler constructs an AuthHandler with the provided dependencies.
func NewAuthHandler(authService *services.AuthService, userService *services.UserService, logger logging.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		logger:      logger,
	}
}

// AuthRouter registers auth routes on the given router.
func AuthRouter(
	r chi.Router,
	authService *services.AuthService,
	userService *services.UserService,
	authn *Authenticator,
	logger logging.Logger,
) {
	handler := NewAuthHandler(authService, userService, logger)

	r.Post("/register", handler.Register)
	r.Post("/login", handler.Login)
	r.With(authn.RequireAuth).Post("/logout", handler.Logout)
	r.With(authn.RequireAuth).Get("/me", handler.Me)
}

// Register creates a new user account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.authService.Register(r.Context(), services.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			writeError(w, http.StatusConflict, "email already registered")
			return
		}
		writeServiceError(w, r, h.logger, err, "user")
		return
	}

	h.logger.Info(r.Context(), "user registered", "user_id", user.ID)
	writeJSON(w, http.StatusCreated, user.View())
}

// Login verifies credentials and returns a bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	session, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidCredentials):
			writeUnauthorized(w, "invalid credentials")
		case errors.Is(err, services.ErrAccountInactive):
			writeError(w, http.StatusForbidden, "account is inactive")
		default:
			writeServiceError(w, r, h.logger, err, "user")
		}
		return
	}

	writeJSON(w, http.StatusOK, TokenResponse{
		AccessToken: session.AccessToken,
		TokenType:   "bearer",
	})
}

// Logout revokes the token the request was authenticated with.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, msgNotAuthenticated)
		return
	}

	if err := h.authService.Logout(r.Context(), identity); err != nil {
		writeServiceError(w, r, h.logger, err, "token")
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Successfully logged out"})
}

// Me returns the current authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeUnauthorized(w, msgNotAuthenticated)
		return
	}

	user, err := h.userService.GetByID(r.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeUnauthorized(w, msgInvalidToken)
			return
		}
		writeServiceError(w, r, h.logger, err, "user")
		return
	}

	writeJSON(w, http.StatusOK, user.View())
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func bearerToken(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", errors.New("missing authorization")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", errors.New("invalid authorization")
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", errors.New("invalid authorization")
	}
	return token, nil
}
