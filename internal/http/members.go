package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
)

type roleChangeRequest struct {
	UserID    int64                 `json:"user_id"`
	SectionID *membership.SectionID `json:"section_id"`
	RoleID    membership.RoleID     `json:"role_id"`
}

type sectionRequest struct {
	SectionID membership.SectionID `json:"section_id"`
}

// Sections lists the concrete sections.
func (h *Handler) Sections(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, membership.Sections())
}

// Roster serves GET /{slug}-role?date=YYYY-MM-DD; a missing date means today.
func (h *Handler) Roster(section membership.SectionID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day := membership.Today(time.Now())
		if raw := strings.TrimSpace(r.URL.Query().Get("date")); raw != "" {
			parsed, err := membership.ParseDate(raw)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			day = parsed
		}
		WriteJSON(w, http.StatusOK, h.members.Roster(r.Context(), section, day))
	}
}

func (h *Handler) decodeRoleChange(w http.ResponseWriter, r *http.Request, section membership.SectionID) (roleChangeRequest, bool) {
	var req roleChangeRequest
	if !decodeJSON(w, r, &req) {
		return req, false
	}
	if req.UserID <= 0 {
		WriteValidation(w, "user_id", "The user id field is required.")
		return req, false
	}
	if req.SectionID != nil && *req.SectionID != section {
		WriteValidation(w, "section_id", "The section does not match the route.")
		return req, false
	}
	return req, true
}

// AssignRole serves POST /{slug}/assign-role.
func (h *Handler) AssignRole(section membership.SectionID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := h.decodeRoleChange(w, r, section)
		if !ok {
			return
		}
		if err := h.members.AssignRole(r.Context(), req.UserID, section, req.RoleID); err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"message": "Role assigned successfully"})
	}
}

// RemoveRole serves POST /{slug}/remove-role.
func (h *Handler) RemoveRole(section membership.SectionID) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := h.decodeRoleChange(w, r, section)
		if !ok {
			return
		}
		if err := h.members.RemoveRole(r.Context(), req.UserID, section); err != nil {
			writeDomainError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"message": "Role removed successfully"})
	}
}

func (h *Handler) decodeSectionChange(w http.ResponseWriter, r *http.Request) (int64, membership.SectionID, bool) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || userID <= 0 {
		WriteError(w, http.StatusNotFound, "Not Found")
		return 0, 0, false
	}
	var req sectionRequest
	if !decodeJSON(w, r, &req) {
		return 0, 0, false
	}
	if !req.SectionID.IsConcrete() {
		WriteValidation(w, "section_id", "The selected section is invalid.")
		return 0, 0, false
	}
	return userID, req.SectionID, true
}

// AddToSection serves POST /user/{id}/add-to-section.
func (h *Handler) AddToSection(w http.ResponseWriter, r *http.Request) {
	userID, section, ok := h.decodeSectionChange(w, r)
	if !ok {
		return
	}
	if err := h.members.AddToSection(r.Context(), userID, section); err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "User added to section successfully"})
}

// RemoveFromSection serves POST /user/{id}/remove-from-section.
func (h *Handler) RemoveFromSection(w http.ResponseWriter, r *http.Request) {
	userID, section, ok := h.decodeSectionChange(w, r)
	if !ok {
		return
	}
	if err := h.members.RemoveFromSection(r.Context(), userID, section); err != nil {
		writeDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"message": "User removed from section successfully"})
}
