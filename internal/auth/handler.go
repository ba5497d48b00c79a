package auth

import (
	"log/slog"
	"net/http"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/transport"
	"github.com/Siddharth-Keer/Koe-Dashboard/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(svc ServiceAPI, lg *slog.Logger) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, RoleUser)
}

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, RoleAdmin)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request, role Role) {
	var dto LoginDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	session, err := h.Service.Login(r.Context(), dto, role)
	if err != nil {
		h.Logger.Warn("login failed", "error", err, "role", role)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, session)
}

// Logout only acknowledges; the client drops its token.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, ok := internal.SessionFromContext(r.Context()); ok {
		h.Logger.Info("session closed", "email", sess.Email, "role", sess.Role)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	sess, ok := internal.SessionFromContext(r.Context())
	if !ok {
		h.WriteAppError(w, internal.ErrInvalidToken)
		return
	}
	h.WriteJSON(w, http.StatusOK, ProfileResponse{Email: sess.Email, Role: Role(sess.Role)})
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var dto ChangePasswordDTO
	if appErr := h.DecodeJSON(r, &dto); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	resp, err := h.Service.ChangePassword(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// AuthMiddleware requires a valid bearer token and stores its session on the request.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.Logger.Warn("auth middleware: missing authorization token")
			h.WriteAppError(w, internal.NewUnauthorizedError("missing authorization token", internal.ErrCodeInvalidToken))
			return
		}

		tokenPrefix := token
		if len(token) > 20 {
			tokenPrefix = token[:20]
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.Logger.Warn("token validation failed", "error", err, "token_prefix", tokenPrefix)
			h.HandleServiceError(w, err)
			return
		}

		h.Logger.Debug("auth middleware: token validated", "email", claims.Email, "role", claims.Role)

		ctx := internal.ContextWithSession(r.Context(), claims.Session())
		ctx = logger.With(ctx, "email", claims.Email, "role", claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
