package http

import (
	"net/http"
	"strings"

	"github.com/lebanesebrotherhood/brotherhood/internal/gateway"
	httpmiddleware "github.com/lebanesebrotherhood/brotherhood/internal/http/middleware"
	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
	"github.com/lebanesebrotherhood/brotherhood/internal/util"
)

// ListMeetings serves every concrete section with its archived link, if any.
func (h *Handler) ListMeetings(w http.ResponseWriter, r *http.Request) {
	out := make([]gateway.MeetingSection, 0, 3)
	for _, sec := range membership.Sections() {
		entry := gateway.MeetingSection{ID: sec.ID, Name: sec.Name, Meetings: []gateway.Meeting{}}
		if rec, ok := h.store.Meeting(r.Context(), sec.ID); ok {
			entry.Meetings = append(entry.Meetings, gateway.Meeting{ID: rec.ID, DriveLink: rec.DriveLink})
		}
		out = append(out, entry)
	}
	WriteJSON(w, http.StatusOK, out)
}

// SaveMeetingLink serves POST /addmeetinglink.
func (h *Handler) SaveMeetingLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SectionID membership.SectionID `json:"section_id"`
		DriveLink string               `json:"drive_link"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.SectionID.IsConcrete() {
		WriteValidation(w, "section_id", "The selected section is invalid.")
		return
	}
	link := strings.TrimSpace(req.DriveLink)
	if err := util.ValidateLink(link, "drive_link"); err != nil {
		WriteValidation(w, "drive_link", err.Error())
		return
	}

	caller := httpmiddleware.GetUserID(r.Context())
	if err := h.rbac.RequireMeetingManager(r.Context(), caller, req.SectionID); err != nil {
		writeDomainError(w, err)
		return
	}

	rec := h.store.SetMeetingLink(r.Context(), req.SectionID, link)
	WriteJSON(w, http.StatusOK, map[string]any{
		"message": "Meeting link saved",
		"meeting": gateway.Meeting{ID: rec.ID, DriveLink: rec.DriveLink},
	})
}
