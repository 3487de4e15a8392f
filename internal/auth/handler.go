package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/rahmatagung/user-management/internal"
	"github.com/rahmatagung/user-management/internal/transport"
)

type contextKey string

const userContextKey contextKey = "auth_user"

// UserFromContext returns the authenticated user stored by AuthMiddleware.
func UserFromContext(ctx context.Context) (*User, bool) {
	user, ok := ctx.Value(userContextKey).(*User)
	return user, ok
}

func ContextWithUser(ctx context.Context, user *User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

type Handler struct {
	*transport.BaseHandler
	service ServiceAPI
}

func NewHandler(base *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: base,
		service:     service,
	}
}

// Signin handles POST /api/users/signin
func (h *Handler) Signin(w http.ResponseWriter, r *http.Request) {
	var dto SigninDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.Authenticate(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, mapAuthError(err))
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Signed in successfully", result)
}

// Refresh handles POST /api/users/refresh-token
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	tokens, err := h.service.RefreshTokens(r.Context(), dto.RefreshToken)
	if err != nil {
		h.WriteAppError(w, mapAuthError(err))
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Token refreshed", tokens)
}

// AuthMiddleware validates the bearer token and loads the authenticated user
// into the request context. Handlers behind it can rely on UserFromContext.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := h.ExtractTokenFromHeader(r)
		if tokenString == "" {
			h.WriteError(w, http.StatusUnauthorized, "Missing or malformed authorization header")
			return
		}

		claims, err := h.service.ValidateAccessToken(tokenString)
		if err != nil {
			h.WriteAppError(w, mapAuthError(err))
			return
		}

		user, err := h.service.GetUserWithRole(r.Context(), claims.UserID)
		if err != nil {
			h.WriteError(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		if !user.IsActive {
			h.WriteAppError(w, internal.ErrUserInactive)
			return
		}

		ctx := ContextWithUser(r.Context(), user)
		ctx = internal.ContextWithUserID(ctx, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles gates a route to the named roles. It must sit behind
// AuthMiddleware in the chain.
func (h *Handler) RequireRoles(roles ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				h.WriteError(w, http.StatusUnauthorized, "Authentication required")
				return
			}
			if !user.HasRole(roles...) {
				h.Logger.Warn("role gate rejected request",
					slog.Int64("user_id", user.ID),
					slog.String("role", user.RoleName),
					slog.String("path", r.URL.Path),
				)
				h.WriteAppError(w, internal.NewForbiddenError(
					"You do not have permission to perform this action",
					internal.ErrCodePermissionDenied,
				))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func mapAuthError(err error) error {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return internal.ErrInvalidCredentials
	case errors.Is(err, ErrTokenExpired):
		return internal.ErrTokenExpired
	case errors.Is(err, ErrInvalidToken):
		return internal.ErrInvalidToken
	case errors.Is(err, ErrUserInactive):
		return internal.ErrUserInactive
	}
	var ve ValidationError
	if errors.As(err, &ve) {
		return internal.NewValidationError(ve.Msg, internal.ErrCodeValidationFailed)
	}
	return err
}
