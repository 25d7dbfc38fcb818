package hierarchy

import (
	"context"
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

func (h *Handler) AddEdge(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	var dto EdgeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	edge, err := h.Service.AddEdge(r.Context(), caller, dto.ParentDepartmentID, dto.ChildDepartmentID)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, edge)
}

func (h *Handler) RemoveEdge(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	var dto EdgeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	if err := h.Service.RemoveEdge(r.Context(), caller, dto.ParentDepartmentID, dto.ChildDepartmentID); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "hierarchy relationship removed"})
}

func (h *Handler) ListEdges(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	edges, err := h.Service.ListEdges(r.Context(), caller)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"edges": edges})
}

func (h *Handler) Children(w http.ResponseWriter, r *http.Request) {
	h.relatives(w, r, h.Service.ChildrenOf)
}

func (h *Handler) Parents(w http.ResponseWriter, r *http.Request) {
	h.relatives(w, r, h.Service.ParentsOf)
}

func (h *Handler) Descendants(w http.ResponseWriter, r *http.Request) {
	h.relatives(w, r, h.Service.DescendantsOf)
}

func (h *Handler) Ancestors(w http.ResponseWriter, r *http.Request) {
	h.relatives(w, r, h.Service.AncestorsOf)
}

func (h *Handler) relatives(w http.ResponseWriter, r *http.Request, query func(context.Context, int64) ([]int64, error)) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}
	if !caller.IsAdmin() && !caller.IsManager() {
		h.WriteServiceError(w, core.NewForbiddenError("only admins and managers can read the department hierarchy", core.ErrCodeInsufficientScope))
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid department id")
		return
	}

	ids, err := query(r.Context(), id)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"department_ids": ids})
}
