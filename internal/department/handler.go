package department

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

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	var dto CreateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dept, err := h.Service.Create(r.Context(), caller, dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, dept)
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

	dept, err := h.Service.GetByID(r.Context(), caller, id)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dept)
}

func (h *Handler) GetByName(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	name := r.URL.Query().Get("name")
	dept, err := h.Service.GetByName(r.Context(), caller, name)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dept)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	depts, err := h.Service.List(r.Context(), caller)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"departments": depts})
}

func (h *Handler) ListTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.Service.ListTypes(r.Context())
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"department_types": types})
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

	var dto UpdateDepartmentDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	dto.DepartmentID = id

	dept, err := h.Service.Update(r.Context(), caller, dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, dept)
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

	if err := h.Service.SoftDelete(r.Context(), caller, id); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "department deleted"})
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

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "department permanently deleted"})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}
