package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/lebanesebrotherhood/brotherhood/internal/gateway"
	httpmiddleware "github.com/lebanesebrotherhood/brotherhood/internal/http/middleware"
	"github.com/lebanesebrotherhood/brotherhood/internal/repo"
	"github.com/lebanesebrotherhood/brotherhood/internal/util"
)

func (h *Handler) requireDrive(w http.ResponseWriter, r *http.Request) bool {
	if err := h.rbac.RequireDriveAccess(r.Context(), httpmiddleware.GetUserID(r.Context())); err != nil {
		writeDomainError(w, err)
		return false
	}
	return true
}

func driveID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Not Found")
		return 0, false
	}
	return id, true
}

// ListDriveAccounts serves credentials without their passwords.
func (h *Handler) ListDriveAccounts(w http.ResponseWriter, r *http.Request) {
	if !h.requireDrive(w, r) {
		return
	}
	records := h.store.ListDriveAccounts(r.Context())
	out := make([]gateway.DriveAccount, 0, len(records))
	for _, rec := range records {
		out = append(out, gateway.DriveAccount{ID: rec.ID, Title: rec.Title, Email: rec.Email})
	}
	WriteJSON(w, http.StatusOK, out)
}

// RevealDriveAccount serves the password of one credential.
func (h *Handler) RevealDriveAccount(w http.ResponseWriter, r *http.Request) {
	if !h.requireDrive(w, r) {
		return
	}
	id, ok := driveID(w, r)
	if !ok {
		return
	}
	rec, err := h.store.GetDriveAccount(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	log.Info().Int64("account_id", id).Int64("user_id", httpmiddleware.GetUserID(r.Context())).Msg("drive password revealed")
	WriteJSON(w, http.StatusOK, map[string]string{"password": rec.Password})
}

func (h *Handler) CreateDriveAccount(w http.ResponseWriter, r *http.Request) {
	if !h.requireDrive(w, r) {
		return
	}
	var in gateway.DriveAccountInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Title) == "" {
		WriteValidation(w, "title", "The title field is required.")
		return
	}
	if err := util.ValidateEmail(in.Email); err != nil {
		WriteValidation(w, "email", err.Error())
		return
	}
	if in.Password == "" {
		WriteValidation(w, "password", "The password field is required.")
		return
	}

	rec := h.store.InsertDriveAccount(r.Context(), repo.DriveAccountRecord{
		Title:    strings.TrimSpace(in.Title),
		Email:    strings.TrimSpace(in.Email),
		Password: in.Password,
	})
	WriteJSON(w, http.StatusCreated, gateway.DriveAccount{ID: rec.ID, Title: rec.Title, Email: rec.Email})
}

func (h *Handler) DeleteDriveAccount(w http.ResponseWriter, r *http.Request) {
	if !h.requireDrive(w, r) {
		return
	}
	id, ok := driveID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteDriveAccount(r.Context(), id); err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Drive account deleted"})
}
