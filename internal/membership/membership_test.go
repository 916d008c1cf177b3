package membership

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"2024-06-01", "2024-06-01", false},
		{" 2024-01-31 ", "2024-01-31", false},
		{"2024-02-30", "", true},
		{"2024-13-01", "", true},
		{"01/06/2024", "", true},
		{"", "", true},
		{"0001-01-01", "", true},
		{"0001-06-15", "", true},
	}

	for _, tc := range tests {
		got, err := ParseDate(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidDate) {
				t.Fatalf("ParseDate(%q): expected ErrInvalidDate, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", tc.in, err)
		}
		if got.String() != tc.want {
			t.Fatalf("ParseDate(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		A Date  `json:"a"`
		B *Date `json:"b"`
		C Date  `json:"c"`
		D Date  `json:"d"`
	}
	raw := `{"a":"2024-01-01","b":null,"c":"2024-03-05 10:11:12","d":"2024-07-08T00:00:00.000000Z"}`
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.A.String() != "2024-01-01" || payload.B != nil {
		t.Fatalf("unexpected decode: %+v", payload)
	}
	if payload.C.String() != "2024-03-05" || payload.D.String() != "2024-07-08" {
		t.Fatalf("timestamps not truncated to dates: %s %s", payload.C, payload.D)
	}

	out, err := json.Marshal(struct {
		A Date `json:"a"`
		Z Date `json:"z"`
	}{A: MustDate("2024-06-01")})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"a":"2024-06-01","z":null}` {
		t.Fatalf("unexpected encoding %s", out)
	}
}

func TestToday(t *testing.T) {
	loc := time.FixedZone("Beirut", 3*60*60)
	now := time.Date(2024, 6, 1, 23, 30, 0, 0, loc)
	if got := Today(now).String(); got != "2024-06-01" {
		t.Fatalf("Today = %s", got)
	}
}

func TestExpandSections(t *testing.T) {
	tests := []struct {
		name string
		in   []SectionID
		want []SectionID
	}{
		{"shared alone", []SectionID{Shared}, []SectionID{Chabiba, Tala2e3, Forsan}},
		{"shared mixed", []SectionID{Forsan, Shared}, []SectionID{Chabiba, Tala2e3, Forsan}},
		{"dedupe and sort", []SectionID{Forsan, Chabiba, Forsan}, []SectionID{Chabiba, Forsan}},
		{"empty", nil, []SectionID{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExpandSections(tc.in)
			if err != nil {
				t.Fatalf("expand: %v", err)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
			for _, id := range got {
				if id == Shared {
					t.Fatalf("shared leaked into %v", got)
				}
			}
		})
	}

	if _, err := ExpandSections([]SectionID{9}); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}
}

func TestParseSectionAndRole(t *testing.T) {
	for in, want := range map[string]SectionID{"1": Chabiba, "tala2e3": Tala2e3, "Forsan": Forsan, "shared": Shared} {
		got, err := ParseSection(in)
		if err != nil || got != want {
			t.Fatalf("ParseSection(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseSection("scouts"); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}

	if id, err := ParseRole("amin ser"); err != nil || id != 7 {
		t.Fatalf("ParseRole(amin ser) = %v, %v", id, err)
	}
	if _, err := ParseRole("10"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("sentinel must not parse as an assignable role, got %v", err)
	}
	if RoleName(42) != "Normal Member" {
		t.Fatalf("unknown role should read as normal member")
	}
}

func TestResolve(t *testing.T) {
	start := MustDate("2024-01-01")
	end := MustDate("2024-03-01")
	users := []User{
		{ID: 1, Name: "A", Sections: []SectionMembership{{ID: Chabiba, Pivot: &Pivot{RoleID: 2, StartDate: start}}}},
		{ID: 2, Name: "B", Sections: []SectionMembership{{ID: Chabiba, Pivot: &Pivot{RoleID: NormalMember, StartDate: start, EndDate: &end}}}},
		{ID: 3, Name: "C", Sections: []SectionMembership{{ID: Forsan, Pivot: &Pivot{RoleID: 7, StartDate: start}}}},
		{ID: 4, Name: "D", Sections: []SectionMembership{{ID: Chabiba, Pivot: &Pivot{StartDate: start}}}},
		{ID: 5, Name: "E", Sections: []SectionMembership{{ID: Chabiba, Pivot: &Pivot{RoleID: 7, StartDate: start, EndDate: &end}}}},
	}

	got := ResolveAll(users, Chabiba)
	if got[0].RoleName != "Chabiba President" || got[0].Range() != "2024-01-01 to Present" || !got[0].Current {
		t.Fatalf("unexpected standing for A: %+v", got[0])
	}
	if got[1].Current || got[1].Range() != "2024-01-01 to 2024-03-01" {
		t.Fatalf("unexpected standing for B: %+v", got[1])
	}
	if got[2].Member || got[2].RoleID != NormalMember {
		t.Fatalf("user without pivot must resolve to sentinel: %+v", got[2])
	}
	if got[3].RoleID != NormalMember {
		t.Fatalf("missing role id must resolve to sentinel: %+v", got[3])
	}

	taken := TakenRoles(users, Chabiba)
	if len(taken) != 1 || taken[2] != 1 {
		t.Fatalf("unexpected taken roles %v", taken)
	}
	if _, held := taken[7]; held {
		t.Fatalf("role of a closed row must not count as taken")
	}
	for _, r := range AssignableRoles(taken) {
		if r.ID == 2 {
			t.Fatalf("taken role offered")
		}
	}
	if len(AssignableRoles(taken)) != len(Roles())-1 {
		t.Fatalf("expected every other role to stay assignable")
	}
}

func TestPivotActiveOn(t *testing.T) {
	end := MustDate("2024-02-10")
	p := Pivot{StartDate: MustDate("2024-02-01"), EndDate: &end}

	cases := map[string]bool{
		"2024-01-31": false,
		"2024-02-01": true,
		"2024-02-10": true,
		"2024-02-11": false,
	}
	for day, want := range cases {
		if got := p.ActiveOn(MustDate(day)); got != want {
			t.Fatalf("ActiveOn(%s) = %v want %v", day, got, want)
		}
	}

	open := Pivot{StartDate: MustDate("2024-02-01")}
	if !open.ActiveOn(MustDate("2030-01-01")) {
		t.Fatalf("open row must stay active")
	}
}
