package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"

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

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var dto RegisterDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.Register(r.Context(), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, RegisteredResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Message:   "check your email for the activation link",
	})
}

func (h *Handler) RegisterByManager(w http.ResponseWriter, r *http.Request) {
	caller, ok := core.CallerFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
		return
	}

	var dto RegisterByManagerDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.Service.RegisterByManager(r.Context(), caller, dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, RegisteredResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Message:   "activation email sent",
	})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Authenticate(r.Context(), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var dto RefreshTokenDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := dto.Validate(); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	tokens, err := h.Service.RefreshTokens(r.Context(), dto.RefreshToken)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

// Activation serves the mailed link; it only checks the token so the
// frontend can route to the set-password form.
func (h *Handler) Activation(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if err := h.Service.CheckActivation(r.Context(), token); err != nil {
		h.WriteServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "token is valid, set a password to finish activation"})
}

func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var dto ConfirmDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tokens, err := h.Service.Confirm(r.Context(), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, tokens)
}

func (h *Handler) ResendActivation(w http.ResponseWriter, r *http.Request) {
	var dto EmailDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.ResendActivation(r.Context(), dto.Email); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "activation email sent"})
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var dto EmailDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.ForgotPassword(r.Context(), dto.Email); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "password reset email sent"})
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var dto ResetPasswordDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.Service.ResetPassword(r.Context(), dto); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// AuthMiddleware validates the bearer token, re-checks the account state
// against the store and puts the caller on the request context. A deleted
// or disabled account is rejected here even while its token is still
// unexpired.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authorization token")
			return
		}

		caller, err := h.Service.ValidateSession(r.Context(), token)
		if err != nil {
			h.Logger.Warn("session validation failed", "error", err)
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		if !caller.Role.Valid() || caller.UserID <= 0 {
			h.WriteError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := core.ContextWithCaller(r.Context(), caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles is a route-group gate; the services still make the real
// authorization decision.
func (h *Handler) RequireRoles(roles ...core.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := core.CallerFromContext(r.Context())
			if !ok {
				h.WriteError(w, http.StatusUnauthorized, "missing caller identity")
				return
			}
			for _, role := range roles {
				if caller.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			h.WriteServiceError(w, core.NewForbiddenError("insufficient privileges", core.ErrCodeInsufficientScope))
		})
	}
}
