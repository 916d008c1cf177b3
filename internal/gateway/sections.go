package gateway

import (
	"context"
	"fmt"
	"net/url"

	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
)

type roleChange struct {
	UserID    int64                `json:"user_id"`
	SectionID membership.SectionID `json:"section_id"`
	RoleID    membership.RoleID    `json:"role_id,omitempty"`
}

type sectionRef struct {
	SectionID membership.SectionID `json:"section_id"`
}

// Sections lists the concrete sections known to the backend.
func (c *Client) Sections(ctx context.Context) ([]membership.Section, error) {
	var out []membership.Section
	if err := c.get(ctx, "/sections", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Roster lists the members of a section with the pivot active on the given day.
func (c *Client) Roster(ctx context.Context, section membership.SectionID, day membership.Date) ([]membership.User, error) {
	if err := requireConcrete(section); err != nil {
		return nil, err
	}
	if day.IsZero() {
		return nil, membership.ErrInvalidDate
	}

	q := url.Values{}
	q.Set("date", day.String())

	var out []membership.User
	if err := c.get(ctx, "/"+section.Slug()+"-role", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AssignRole asks the backend to give a user a role in a section.
func (c *Client) AssignRole(ctx context.Context, userID int64, section membership.SectionID, role membership.RoleID) error {
	if err := requireConcrete(section); err != nil {
		return err
	}
	body := roleChange{UserID: userID, SectionID: section, RoleID: role}
	return c.post(ctx, "/"+section.Slug()+"/assign-role", body, nil)
}

// RemoveRole reverts a user to an ordinary member of the section.
func (c *Client) RemoveRole(ctx context.Context, userID int64, section membership.SectionID) error {
	if err := requireConcrete(section); err != nil {
		return err
	}
	body := roleChange{UserID: userID, SectionID: section}
	return c.post(ctx, "/"+section.Slug()+"/remove-role", body, nil)
}

// AddToSection makes a user an ordinary member of a section.
func (c *Client) AddToSection(ctx context.Context, userID int64, section membership.SectionID) error {
	if err := requireConcrete(section); err != nil {
		return err
	}
	return c.post(ctx, fmt.Sprintf("/user/%d/add-to-section", userID), sectionRef{SectionID: section}, nil)
}

// RemoveFromSection ends a user's membership of a section.
func (c *Client) RemoveFromSection(ctx context.Context, userID int64, section membership.SectionID) error {
	if err := requireConcrete(section); err != nil {
		return err
	}
	return c.post(ctx, fmt.Sprintf("/user/%d/remove-from-section", userID), sectionRef{SectionID: section}, nil)
}

func requireConcrete(section membership.SectionID) error {
	if !section.IsConcrete() {
		return fmt.Errorf("%w: %d", membership.ErrUnknownSection, int(section))
	}
	return nil
}
