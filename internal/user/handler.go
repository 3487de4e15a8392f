package user

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"

	"github.com/rahmatagung/user-management/internal/auth"
	"github.com/rahmatagung/user-management/internal/transport"
)

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

// Signup handles POST /api/users/signup
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var dto SignupDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	created, err := h.service.Signup(r.Context(), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusCreated, "Account created successfully", created)
}

// GetAll handles GET /api/users
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		Search:  r.URL.Query().Get("search"),
		Page:    queryInt(r, "page", 1),
		PerPage: queryInt(r, "per_page", 20),
	}
	if v := r.URL.Query().Get("role_id"); v != "" {
		if roleID, err := strconv.ParseInt(v, 10, 64); err == nil {
			params.RoleID = &roleID
		}
	}
	if v := r.URL.Query().Get("is_active"); v != "" {
		active := v == "true"
		params.IsActive = &active
	}

	users, total, err := h.service.GetAll(r.Context(), params)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Users retrieved successfully", map[string]interface{}{
		"users":    users,
		"total":    total,
		"page":     params.Page,
		"per_page": params.PerPage,
	})
}

// GetByID handles GET /api/users/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	targetID, ok := h.idParam(w, r)
	if !ok {
		return
	}

	u, err := h.service.GetByID(r.Context(), targetID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "User retrieved successfully", u)
}

// GetProfile handles GET /api/users/me
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	u, err := h.service.GetByID(r.Context(), actor.ID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Profile retrieved successfully", u)
}

// ChangePassword handles POST /api/users/change-password
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var dto ChangePasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	meta := RequestMeta{
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	}

	err := h.service.ChangePassword(r.Context(), actorFrom(actor), dto, meta)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Password changed successfully", nil)
}

// ChangeRole handles POST /api/users/{id}/assign-role and
// POST /api/users/change-role. The target comes from the path when present,
// otherwise from the user_id field in the body.
func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var dto ChangeRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	targetID := dto.UserID
	if raw := chi.URLParam(r, "id"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			h.WriteError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}
		targetID = parsed
	}
	if targetID <= 0 {
		h.WriteError(w, http.StatusBadRequest, "Invalid user ID")
		return
	}

	updated, err := h.service.ChangeRole(r.Context(), actorFrom(actor), targetID, dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Role changed successfully", updated)
}

// RoleHistory handles GET /api/users/{id}/role-history?fromDate=...&toDate=...
func (h *Handler) RoleHistory(w http.ResponseWriter, r *http.Request) {
	targetID, ok := h.idParam(w, r)
	if !ok {
		return
	}

	from, err := queryTime(r, "fromDate")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid fromDate, expected RFC 3339")
		return
	}
	to, err := queryTime(r, "toDate")
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid toDate, expected RFC 3339")
		return
	}

	entries, err := h.service.RoleHistory(r.Context(), targetID, from, to)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Role history retrieved successfully", entries)
}

// SetActive handles PUT /api/users/{id}/status
func (h *Handler) SetActive(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	targetID, okID := h.idParam(w, r)
	if !okID {
		return
	}

	var dto struct {
		IsActive *bool `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil || dto.IsActive == nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid request body: is_active is required")
		return
	}

	updated, err := h.service.SetActive(r.Context(), actorFrom(actor), targetID, *dto.IsActive)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "User status updated successfully", updated)
}

// CheckAvailability handles GET /api/users/check-availability?username=...&email=...
func (h *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	email := r.URL.Query().Get("email")
	if username == "" && email == "" {
		h.WriteError(w, http.StatusBadRequest, "Provide a username or email to check")
		return
	}

	availability, err := h.service.CheckAvailability(r.Context(), username, email)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Availability checked", availability)
}

func (h *Handler) idParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "Invalid user ID")
		return 0, false
	}
	return id, true
}

func actorFrom(u *auth.User) Actor {
	return Actor{
		ID:       u.ID,
		Username: u.Username,
		RoleName: u.RoleName,
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func queryTime(r *http.Request, key string) (*time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// clientIP prefers the X-Forwarded-For chain set by the reverse proxy.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		for i := 0; i < len(fwd); i++ {
			if fwd[i] == ',' {
				return fwd[:i]
			}
		}
		return fwd
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
