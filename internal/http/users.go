package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lebanesebrotherhood/brotherhood/internal/gateway"
	httpmiddleware "github.com/lebanesebrotherhood/brotherhood/internal/http/middleware"
	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
)

// ListUsers serves every account with its open memberships.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.store.UsersWithCurrentSections(r.Context()))
}

// CreateUser serves POST /adduser.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	caller := httpmiddleware.GetUserID(r.Context())
	if err := h.rbac.RequireUserManager(r.Context(), caller); err != nil {
		writeDomainError(w, err)
		return
	}

	var in gateway.NewUser
	if !decodeJSON(w, r, &in) {
		return
	}
	if in.IsGlobalAdmin {
		if err := h.rbac.RequireRoleManager(r.Context(), caller); err != nil {
			writeDomainError(w, err)
			return
		}
	}

	acc, err := h.authService.Register(r.Context(), in)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	log.Info().Int64("user_id", acc.ID).Int64("created_by", caller).Msg("user created")

	WriteJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"user": membership.User{
			ID:            acc.ID,
			Name:          acc.Name,
			Email:         acc.Email,
			Phone:         acc.Phone,
			IsGlobalAdmin: acc.IsGlobalAdmin,
			Sections:      []membership.SectionMembership{},
		},
	})
}

// DeleteUser serves DELETE /user/delete/{id}.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	caller := httpmiddleware.GetUserID(r.Context())
	if err := h.rbac.RequireUserManager(r.Context(), caller); err != nil {
		writeDomainError(w, err)
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Not Found")
		return
	}
	if id == caller {
		WriteError(w, http.StatusUnprocessableEntity, "You cannot delete your own account.")
		return
	}
	if err := h.store.DeleteAccount(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	log.Info().Int64("user_id", id).Int64("deleted_by", caller).Msg("user deleted")
	WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted successfully"})
}
