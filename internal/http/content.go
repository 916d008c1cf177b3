package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/lebanesebrotherhood/brotherhood/internal/gateway"
	httpmiddleware "github.com/lebanesebrotherhood/brotherhood/internal/http/middleware"
	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
	"github.com/lebanesebrotherhood/brotherhood/internal/repo"
	"github.com/lebanesebrotherhood/brotherhood/internal/util"
)

func toEvent(rec repo.EventRecord) gateway.Event {
	ev := gateway.Event{
		ID:           rec.ID,
		Title:        rec.Title,
		Type:         rec.Type,
		Description:  rec.Description,
		EventDate:    rec.EventDate,
		TotalSpent:   rec.TotalSpent,
		TotalRevenue: rec.TotalRevenue,
		Notes:        rec.Notes,
		DriveLink:    rec.DriveLink,
		SharedEvent:  rec.SharedEvent,
	}
	for _, id := range rec.Sections {
		ev.Sections = append(ev.Sections, membership.Section{ID: id, Name: id.Name()})
	}
	return ev
}

// ListEvents serves GET /events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	records := h.store.ListEvents(r.Context())
	out := make([]gateway.Event, 0, len(records))
	for _, rec := range records {
		out = append(out, toEvent(rec))
	}
	WriteJSON(w, http.StatusOK, out)
}

// CreateEvent serves POST /addevent. Sections are only honoured for global admins
// and must already be concrete.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var in gateway.EventInput
	if !decodeJSON(w, r, &in) {
		return
	}

	switch {
	case strings.TrimSpace(in.Title) == "":
		WriteValidation(w, "title", "The title field is required.")
		return
	case strings.TrimSpace(in.Type) == "":
		WriteValidation(w, "type", "The type field is required.")
		return
	case in.TotalSpent.IsNegative():
		WriteValidation(w, "total_spent", "The total spent must be at least 0.")
		return
	case in.TotalRevenue.IsNegative():
		WriteValidation(w, "total_revenue", "The total revenue must be at least 0.")
		return
	}
	if link := strings.TrimSpace(in.DriveLink); link != "" {
		if err := util.ValidateLink(link, "drive_link"); err != nil {
			WriteValidation(w, "drive_link", err.Error())
			return
		}
	}
	if in.EventDate.IsZero() {
		in.EventDate = membership.Today(time.Now())
	}

	var sections []membership.SectionID
	if httpmiddleware.IsGlobalAdmin(r.Context()) {
		for _, id := range in.Sections {
			if !id.IsConcrete() {
				WriteValidation(w, "sections", "The selected sections are invalid.")
				return
			}
		}
		expanded, err := membership.ExpandSections(in.Sections)
		if err != nil {
			writeDomainError(w, err)
			return
		}
		sections = expanded
	}

	rec := h.store.InsertEvent(r.Context(), repo.EventRecord{
		Title:        strings.TrimSpace(in.Title),
		Type:         strings.TrimSpace(in.Type),
		Description:  in.Description,
		EventDate:    in.EventDate,
		TotalSpent:   in.TotalSpent,
		TotalRevenue: in.TotalRevenue,
		Notes:        in.Notes,
		DriveLink:    strings.TrimSpace(in.DriveLink),
		SharedEvent:  in.SharedEvent,
		Sections:     sections,
		CreatedBy:    httpmiddleware.GetUserID(r.Context()),
	})
	WriteJSON(w, http.StatusCreated, map[string]any{"event": toEvent(rec)})
}

// ListShops serves GET /shops.
func (h *Handler) ListShops(w http.ResponseWriter, r *http.Request) {
	records := h.store.ListShops(r.Context())
	out := make([]gateway.Shop, 0, len(records))
	for _, rec := range records {
		out = append(out, gateway.Shop(rec))
	}
	WriteJSON(w, http.StatusOK, out)
}

// CreateShop serves POST /shops.
func (h *Handler) CreateShop(w http.ResponseWriter, r *http.Request) {
	var in gateway.ShopInput
	if !decodeJSON(w, r, &in) {
		return
	}
	if strings.TrimSpace(in.Name) == "" {
		WriteValidation(w, "name", "The name field is required.")
		return
	}
	rec := h.store.InsertShop(r.Context(), repo.ShopRecord{
		Name:        strings.TrimSpace(in.Name),
		Owner:       in.Owner,
		Phone:       in.Phone,
		Location:    in.Location,
		Description: in.Description,
	})
	WriteJSON(w, http.StatusCreated, gateway.Shop(rec))
}
