package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := map[string]string{"email": email, "password": password}

	var resp struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.post(ctx, "/login", body, &resp); err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", &Error{Kind: KindServer, Method: http.MethodPost, Path: "/login", Message: "login response without access_token"}
	}
	return resp.AccessToken, nil
}

// Me returns the profile bound to the current token.
func (c *Client) Me(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := c.get(ctx, "/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Users lists every user with their current section memberships.
func (c *Client) Users(ctx context.Context) ([]membership.User, error) {
	var out []membership.User
	if err := c.get(ctx, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateUser registers a new user.
func (c *Client) CreateUser(ctx context.Context, in NewUser) error {
	return c.post(ctx, "/adduser", in, nil)
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/user/delete/%d", id))
}

// Events lists the event log.
func (c *Client) Events(ctx context.Context) ([]Event, error) {
	var out []Event
	if err := c.get(ctx, "/events", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateEvent records an event. Callers expand Shared before calling.
func (c *Client) CreateEvent(ctx context.Context, in EventInput) (*Event, error) {
	for _, id := range in.Sections {
		if id == membership.Shared {
			return nil, errors.New("gateway: shared section must be expanded before submission")
		}
	}

	var resp struct {
		Event Event `json:"event"`
	}
	if err := c.post(ctx, "/addevent", in, &resp); err != nil {
		return nil, err
	}
	return &resp.Event, nil
}

// Shops lists shop listings.
func (c *Client) Shops(ctx context.Context) ([]Shop, error) {
	var out []Shop
	if err := c.get(ctx, "/shops", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateShop adds a shop listing.
func (c *Client) CreateShop(ctx context.Context, in ShopInput) (*Shop, error) {
	var out Shop
	if err := c.post(ctx, "/shops", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DriveAccounts lists stored Drive credentials without passwords.
func (c *Client) DriveAccounts(ctx context.Context) ([]DriveAccount, error) {
	var out []DriveAccount
	if err := c.get(ctx, "/drive-accounts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DriveAccountPassword reveals the password of one Drive credential.
func (c *Client) DriveAccountPassword(ctx context.Context, id int64) (string, error) {
	var resp struct {
		Password string `json:"password"`
	}
	if err := c.get(ctx, fmt.Sprintf("/drive-accounts/%d", id), nil, &resp); err != nil {
		return "", err
	}
	return resp.Password, nil
}

// CreateDriveAccount stores a Drive credential.
func (c *Client) CreateDriveAccount(ctx context.Context, in DriveAccountInput) (*DriveAccount, error) {
	var out DriveAccount
	if err := c.post(ctx, "/drive-accounts", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteDriveAccount removes a Drive credential.
func (c *Client) DeleteDriveAccount(ctx context.Context, id int64) error {
	return c.delete(ctx, fmt.Sprintf("/drive-accounts/%d", id))
}

// Meetings lists archived meeting links per section.
func (c *Client) Meetings(ctx context.Context) ([]MeetingSection, error) {
	var out []MeetingSection
	if err := c.get(ctx, "/meetings", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveMeetingLink sets the meeting link of a section.
func (c *Client) SaveMeetingLink(ctx context.Context, section membership.SectionID, link string) error {
	if err := requireConcrete(section); err != nil {
		return err
	}
	body := struct {
		SectionID membership.SectionID `json:"section_id"`
		DriveLink string               `json:"drive_link"`
	}{SectionID: section, DriveLink: link}
	return c.post(ctx, "/addmeetinglink", body, nil)
}
