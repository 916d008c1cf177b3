package repo

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
)

// Account is a registered user with credentials.
type Account struct {
	ID            int64
	Name          string
	Email         string
	Phone         string
	PasswordHash  string
	IsGlobalAdmin bool
	IsSuperAdmin  bool
	CreatedAt     time.Time
}

// NewAccount holds the fields of a user being registered.
type NewAccount struct {
	Name          string
	Email         string
	Phone         string
	PasswordHash  string
	IsGlobalAdmin bool
}

// EventRecord is a stored event. Sections is empty for section-less events.
type EventRecord struct {
	ID           int64
	Title        string
	Type         string
	Description  string
	EventDate    membership.Date
	TotalSpent   decimal.Decimal
	TotalRevenue decimal.Decimal
	Notes        string
	DriveLink    string
	SharedEvent  bool
	Sections     []membership.SectionID
	CreatedBy    int64
	CreatedAt    time.Time
}

// ShopRecord is a stored shop listing.
type ShopRecord struct {
	ID          int64
	Name        string
	Owner       string
	Phone       string
	Location    string
	Description string
}

// DriveAccountRecord is a stored Google Drive credential.
type DriveAccountRecord struct {
	ID       int64
	Title    string
	Email    string
	Password string
}

// MeetingRecord is the archived meeting link of a section.
type MeetingRecord struct {
	ID        int64
	SectionID membership.SectionID
	DriveLink string
	UpdatedAt time.Time
}
