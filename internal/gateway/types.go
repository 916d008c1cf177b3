package gateway

import (
	"github.com/shopspring/decimal"

	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
)

// Profile is the identity returned by GET /me.
type Profile struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	Phone         string  `json:"phone,omitempty"`
	IsGlobalAdmin bool    `json:"is_global_admin"`
	IsSuperAdmin  bool    `json:"is_super_admin"`
	RoleID        int     `json:"role_id,omitempty"`
	Roles         []Grant `json:"roles"`
}

// Grant is a role the profile holds in a section.
type Grant struct {
	SectionID membership.SectionID `json:"section_id"`
	RoleName  string               `json:"role_name"`
}

// NewUser is the body of POST /adduser.
type NewUser struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	Password      string `json:"password"`
	IsGlobalAdmin bool   `json:"is_global_admin"`
}

// Event is an entry of the event log.
type Event struct {
	ID           int64                `json:"id"`
	Title        string               `json:"title"`
	Type         string               `json:"type"`
	Description  string               `json:"description,omitempty"`
	EventDate    membership.Date      `json:"event_date"`
	TotalSpent   decimal.Decimal      `json:"total_spent"`
	TotalRevenue decimal.Decimal      `json:"total_revenue"`
	Notes        string               `json:"notes,omitempty"`
	DriveLink    string               `json:"drive_link,omitempty"`
	SharedEvent  bool                 `json:"shared_event"`
	Sections     []membership.Section `json:"sections,omitempty"`
}

// Net is revenue minus spending.
func (e Event) Net() decimal.Decimal {
	return e.TotalRevenue.Sub(e.TotalSpent)
}

// EventInput is the body of POST /addevent. Sections only ever carries concrete ids.
type EventInput struct {
	Title        string                 `json:"title"`
	Type         string                 `json:"type"`
	Description  string                 `json:"description"`
	EventDate    membership.Date        `json:"event_date"`
	TotalSpent   decimal.Decimal        `json:"total_spent"`
	TotalRevenue decimal.Decimal        `json:"total_revenue"`
	Notes        string                 `json:"notes"`
	DriveLink    string                 `json:"drive_link"`
	SharedEvent  bool                   `json:"shared_event"`
	Sections     []membership.SectionID `json:"sections,omitempty"`
}

// Shop is a shop listing.
type Shop struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Owner       string `json:"owner,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
}

// ShopInput is the body of POST /shops.
type ShopInput struct {
	Name        string `json:"name"`
	Owner       string `json:"owner"`
	Phone       string `json:"phone"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// DriveAccount is a stored Google Drive credential; the password is only served on reveal.
type DriveAccount struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Email string `json:"email"`
}

// DriveAccountInput is the body of POST /drive-accounts.
type DriveAccountInput struct {
	Title    string `json:"title"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MeetingSection is one section of GET /meetings with its archived links.
type MeetingSection struct {
	ID       membership.SectionID `json:"id"`
	Name     string               `json:"name"`
	Meetings []Meeting            `json:"meetings"`
}

// Meeting is one archived meeting link.
type Meeting struct {
	ID        int64  `json:"id,omitempty"`
	DriveLink string `json:"drive_link"`
}
