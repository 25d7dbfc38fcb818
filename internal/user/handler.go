package user

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"

	core "github.com/frahmantamala/org-directory/internal"
	"github.com/frahmantamala/org-directory/internal/transport"
	"github.com/frahmantamala/org-directory/pkg/logger"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(svc *Service) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     svc,
	}
}

func (h *Handler) GetSelf(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	u, err := h.Service.GetSelf(r.Context(), caller)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) UpdateSelf(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	var dto UpdateSelfDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.UpdateSelf(r.Context(), caller, dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	u, err := h.Service.GetByID(r.Context(), caller, id)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	users, err := h.Service.List(r.Context(), caller, page, size)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	if size <= 0 {
		size = 10
	}

	simple := make([]SimpleUser, 0, len(users))
	for _, u := range users {
		simple = append(simple, ToSimpleUser(u))
	}
	h.WriteJSON(w, http.StatusOK, ListResponse{Users: simple, Page: page, Size: size})
}

// ListDetailed serves the same listing with full user records instead of
// the trimmed projection.
func (h *Handler) ListDetailed(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("size"))

	users, err := h.Service.List(r.Context(), caller, page, size)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}
	if size <= 0 {
		size = 10
	}

	h.WriteJSON(w, http.StatusOK, DetailedListResponse{Users: users, Page: page, Size: size})
}

func (h *Handler) ListByDepartment(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	includeChildren := r.URL.Query().Get("include_children") == "true"

	users, err := h.Service.ListByDepartment(r.Context(), caller, id, includeChildren)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	simple := make([]SimpleUser, 0, len(users))
	for _, u := range users {
		simple = append(simple, ToSimpleUser(u))
	}
	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": simple})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto UpdateUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dto.UserID = id

	u, err := h.Service.Update(r.Context(), caller, dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) MoveDepartment(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto MoveDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dto.UserID = id
	if err := dto.Validate(); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	u, err := h.Service.MoveDepartment(r.Context(), caller, dto.UserID, dto.DepartmentID)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto ChangeRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dto.UserID = id
	if err := dto.Validate(); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	u, err := h.Service.ChangeRole(r.Context(), caller, dto.UserID, dto.RoleName)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, u)
}

func (h *Handler) SoftDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	u, err := h.Service.SoftDelete(r.Context(), caller, id)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, DeletedResponse{
		ID:        u.ID,
		Email:     u.Email,
		Enabled:   u.Enabled,
		DeletedAt: u.DeletedAt,
	})
}

func (h *Handler) HardDelete(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.Service.HardDelete(r.Context(), caller, id); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "user permanently deleted"})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
