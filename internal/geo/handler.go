package geo

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

func (h *Handler) CreateCity(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	var dto CreateCityDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	city, err := h.Service.CreateCity(r.Context(), caller, dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, city)
}

func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.Service.ListCities(r.Context())
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"cities": cities})
}

func (h *Handler) CreateRegion(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	var dto CreateRegionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	region, err := h.Service.CreateRegion(r.Context(), caller, dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, region)
}

func (h *Handler) ListRegions(w http.ResponseWriter, r *http.Request) {
	cityID, err := strconv.ParseInt(r.URL.Query().Get("city_id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid city_id")
		return
	}

	regions, svcErr := h.Service.ListRegions(r.Context(), cityID)
	if svcErr != nil {
		h.WriteServiceError(w, svcErr)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"regions": regions})
}

func (h *Handler) CreateTown(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	var dto CreateTownDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	town, err := h.Service.CreateTown(r.Context(), caller, dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, town)
}

func (h *Handler) ListTowns(w http.ResponseWriter, r *http.Request) {
	regionID, err := strconv.ParseInt(r.URL.Query().Get("region_id"), 10, 64)
	if err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid region_id")
		return
	}

	towns, svcErr := h.Service.ListTowns(r.Context(), regionID)
	if svcErr != nil {
		h.WriteServiceError(w, svcErr)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]interface{}{"towns": towns})
}

func (h *Handler) DeleteTown(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		h.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.Service.DeleteTown(r.Context(), caller, id); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "town deleted"})
}
