package userdepartment

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	"github.com/rahmatagung/user-management/internal"
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

// GetUserDepartments handles GET /api/users/{id}/departments
func (h *Handler) GetUserDepartments(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	memberships, err := h.service.GetUserDepartments(r.Context(), userID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "User departments retrieved successfully", memberships)
}

// AssignDepartments handles PUT /api/users/{id}/departments
func (h *Handler) AssignDepartments(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	var dto AssignDepartmentsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	memberships, err := h.service.AssignDepartments(r.Context(), userID, dto, h.actorID(r))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Departments assigned successfully", memberships)
}

// UpdateUserDepartments handles PATCH /api/users/{id}/departments
func (h *Handler) UpdateUserDepartments(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	var dto UpdateDepartmentsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	memberships, err := h.service.UpdateUserDepartments(r.Context(), userID, dto, h.actorID(r))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Departments updated successfully", memberships)
}

// ClearUserDepartments handles DELETE /api/users/{id}/departments
func (h *Handler) ClearUserDepartments(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	removed, err := h.service.ClearUserDepartments(r.Context(), userID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Departments cleared successfully", map[string]int64{
		"removed_count": removed,
	})
}

// SetPrimaryDepartment handles PUT /api/users/{id}/departments/primary
func (h *Handler) SetPrimaryDepartment(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	var dto SetPrimaryDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.SetPrimaryDepartment(r.Context(), userID, dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Primary department updated successfully", nil)
}

// CheckMembership handles GET /api/users/{id}/departments/check?department_id=N
func (h *Handler) CheckMembership(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.userIDParam(w, r)
	if !ok {
		return
	}

	departmentID, err := strconv.ParseInt(r.URL.Query().Get("department_id"), 10, 64)
	if err != nil || departmentID <= 0 {
		h.WriteError(w, http.StatusBadRequest, "Invalid department_id")
		return
	}

	isMember, err := h.service.CheckMembership(r.Context(), userID, departmentID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Membership checked", map[string]bool{
		"is_member": isMember,
	})
}

// GetDepartmentStats handles GET /api/departments/stats
func (h *Handler) GetDepartmentStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.GetDepartmentStats(r.Context())
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	h.WriteSuccess(w, http.StatusOK, "Department stats retrieved successfully", stats)
}

func (h *Handler) userIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || userID <= 0 {
		h.WriteError(w, http.StatusBadRequest, "Invalid user ID")
		return 0, false
	}
	return userID, true
}

func (h *Handler) actorID(r *http.Request) int64 {
	return internal.UserIDFromContext(r.Context())
}
