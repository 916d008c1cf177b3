package membership

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrUnknownSection is returned for ids outside the fixed section set.
var ErrUnknownSection = errors.New("unknown section")

// SectionID identifies an organizational section.
type SectionID int

const (
	Chabiba SectionID = 1
	Tala2e3 SectionID = 2
	Forsan  SectionID = 3
	// Shared is an input convenience meaning every concrete section. It is never stored.
	Shared SectionID = 4
)

// Section is the {id, name} pair served by GET /sections.
type Section struct {
	ID   SectionID `json:"id"`
	Name string    `json:"name"`
}

var concreteSections = []Section{
	{ID: Chabiba, Name: "Chabiba"},
	{ID: Tala2e3, Name: "Tala2e3"},
	{ID: Forsan, Name: "Forsan"},
}

// Sections returns the concrete sections in id order.
func Sections() []Section {
	out := make([]Section, len(concreteSections))
	copy(out, concreteSections)
	return out
}

// IsConcrete reports whether id names a real section (not Shared).
func (id SectionID) IsConcrete() bool {
	return id >= Chabiba && id <= Forsan
}

// Name returns the display name, "Shared" for the virtual section.
func (id SectionID) Name() string {
	if id == Shared {
		return "Shared"
	}
	for _, s := range concreteSections {
		if s.ID == id {
			return s.Name
		}
	}
	return fmt.Sprintf("section %d", int(id))
}

// Slug is the lower-case path segment used by section scoped endpoints.
func (id SectionID) Slug() string {
	return strings.ToLower(id.Name())
}

func (id SectionID) String() string { return id.Name() }

// ParseSection accepts a numeric id, a display name or a slug.
func ParseSection(value string) (SectionID, error) {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		id := SectionID(n)
		if id.IsConcrete() || id == Shared {
			return id, nil
		}
		return 0, fmt.Errorf("%w: %d", ErrUnknownSection, n)
	}
	if strings.EqualFold(value, Shared.Name()) {
		return Shared, nil
	}
	for _, s := range concreteSections {
		if strings.EqualFold(value, s.Name) {
			return s.ID, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownSection, value)
}

// ExpandSections resolves a selection into concrete section ids, sorted and without
// duplicates. Shared anywhere in the input selects every concrete section.
func ExpandSections(ids []SectionID) ([]SectionID, error) {
	seen := make(map[SectionID]struct{}, len(ids))
	shared := false
	for _, id := range ids {
		switch {
		case id == Shared:
			shared = true
		case id.IsConcrete():
			seen[id] = struct{}{}
		default:
			return nil, fmt.Errorf("%w: %d", ErrUnknownSection, int(id))
		}
	}

	if shared {
		out := make([]SectionID, 0, len(concreteSections))
		for _, s := range concreteSections {
			out = append(out, s.ID)
		}
		return out, nil
	}

	out := make([]SectionID, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
