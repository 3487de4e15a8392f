package role

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	internalErrors "github.com/rahmatagung/user-management/internal"
	"github.com/rahmatagung/user-management/internal/transport"
)

type roleView struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Rank        int    `json:"rank"`
	IsActive    bool   `json:"is_active"`
}

type Handler struct {
	*transport.BaseHandler
	service *Service
}

func NewHandler(base *transport.BaseHandler, service *Service) *Handler {
	return &Handler{
		BaseHandler: base,
		service:     service,
	}
}

// GetAll handles GET /api/roles
func (h *Handler) GetAll(w http.ResponseWriter, r *http.Request) {
	roles, err := h.service.GetAll(r.Context())
	if err != nil {
		h.WriteAppError(w, internalErrors.NewInternalError("failed to list roles", err))
		return
	}

	views := make([]roleView, len(roles))
	for i, role := range roles {
		views[i] = toView(role)
	}

	h.WriteSuccess(w, http.StatusOK, "Roles retrieved successfully", views)
}

// GetByID handles GET /api/roles/{id}
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "Invalid role ID")
		return
	}

	role, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			h.WriteAppError(w, internalErrors.ErrRoleNotFound)
			return
		}
		h.WriteAppError(w, internalErrors.NewInternalError("failed to get role", err))
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Role retrieved successfully", toView(role))
}

func toView(r *Role) roleView {
	return roleView{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Rank:        r.Rank(),
		IsActive:    r.IsActive,
	}
}
