package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/lebanesebrotherhood/brotherhood/internal/auth"
	"github.com/lebanesebrotherhood/brotherhood/internal/config"
	"github.com/lebanesebrotherhood/brotherhood/internal/gateway"
	"github.com/lebanesebrotherhood/brotherhood/internal/membership"
	"github.com/lebanesebrotherhood/brotherhood/internal/repo"
	"github.com/lebanesebrotherhood/brotherhood/internal/service"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testAPI struct {
	srv   *httptest.Server
	store *repo.Store
	auth  *service.AuthService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	cfg := &config.ServerConfig{
		JWTSecret:       testSecret,
		JWTAccessTTL:    time.Hour,
		RateLimitPublic: config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
		RateLimitAuth:   config.RateLimitConfig{RequestsPerSecond: 1000, Burst: 1000},
	}
	store := repo.New()
	authService := service.NewAuthService(store, auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTTL))

	handler, err := NewRouter(cfg, store, authService)
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &testAPI{srv: srv, store: store, auth: authService}
}

func (a *testAPI) register(t *testing.T, name, email string, admin bool) int64 {
	t.Helper()
	acc, err := a.auth.Register(context.Background(), gateway.NewUser{Name: name, Email: email, Password: "Secret123!", IsGlobalAdmin: admin})
	if err != nil {
		t.Fatalf("register %s: %v", email, err)
	}
	return acc.ID
}

func (a *testAPI) token(t *testing.T, email string) string {
	t.Helper()
	tok, err := a.auth.Login(context.Background(), email, "Secret123!")
	if err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return tok
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}
	req, err := http.NewRequest(method, a.srv.URL+"/api"+path, &buf)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := a.srv.Client().Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func itoa(id int64) string { return strconv.FormatInt(id, 10) }

func decodeBody(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode: %v", err)
	}
}

func TestLoginAndMe(t *testing.T) {
	api := newTestAPI(t)
	id := api.register(t, "Admin", "admin@example.org", true)

	resp := api.do(t, http.MethodPost, "/login", "", map[string]string{"email": "admin@example.org", "password": "nope"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong password status = %d", resp.StatusCode)
	}

	resp = api.do(t, http.MethodPost, "/login", "", map[string]string{"email": "admin@example.org"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("missing password status = %d", resp.StatusCode)
	}

	resp = api.do(t, http.MethodPost, "/login", "", map[string]string{"email": "ADMIN@example.org", "password": "Secret123!"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	var login struct {
		AccessToken string `json:"access_token"`
	}
	decodeBody(t, resp, &login)

	if _, err := api.store.Ledger().AddToSection(id, membership.Forsan, membership.Today(time.Now())); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := api.store.Ledger().AssignRole(id, membership.Forsan, 7, membership.Today(time.Now())); err != nil {
		t.Fatalf("seed: %v", err)
	}

	resp = api.do(t, http.MethodGet, "/me", login.AccessToken, nil)
	var me gateway.Profile
	decodeBody(t, resp, &me)
	if me.ID != id || !me.IsGlobalAdmin || len(me.Roles) != 1 || me.Roles[0].RoleName != "Amin Ser" || me.RoleID != 7 {
		t.Fatalf("unexpected profile %+v", me)
	}

	if resp := api.do(t, http.MethodGet, "/me", "", nil); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous /me status = %d", resp.StatusCode)
	}
}

func TestRoleRoutesRequireGlobalAdmin(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "Member", "member@example.org", false)
	target := api.register(t, "Target", "target@example.org", false)
	tok := api.token(t, "member@example.org")

	resp := api.do(t, http.MethodPost, "/chabiba/assign-role", tok, map[string]any{"user_id": target, "section_id": 1, "role_id": 7})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("assign status = %d", resp.StatusCode)
	}
	resp = api.do(t, http.MethodPost, "/user/2/add-to-section", tok, map[string]any{"section_id": 1})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("add status = %d", resp.StatusCode)
	}

	// roster reads stay open to members
	if resp := api.do(t, http.MethodGet, "/chabiba-role?date=2024-06-01", tok, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("roster status = %d", resp.StatusCode)
	}
}

func TestMembershipLifecycle(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "Admin", "admin@example.org", true)
	a := api.register(t, "A", "a@example.org", false)
	b := api.register(t, "B", "b@example.org", false)
	tok := api.token(t, "admin@example.org")
	today := membership.Today(time.Now())

	for _, id := range []int64{a, b} {
		resp := api.do(t, http.MethodPost, "/user/"+itoa(id)+"/add-to-section", tok, map[string]any{"section_id": 2})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("add %d status = %d", id, resp.StatusCode)
		}
	}
	resp := api.do(t, http.MethodPost, "/user/"+itoa(a)+"/add-to-section", tok, map[string]any{"section_id": 2})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second add status = %d", resp.StatusCode)
	}

	resp = api.do(t, http.MethodPost, "/tala2e3/assign-role", tok, map[string]any{"user_id": a, "section_id": 2, "role_id": 9})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("assign status = %d", resp.StatusCode)
	}
	resp = api.do(t, http.MethodPost, "/tala2e3/assign-role", tok, map[string]any{"user_id": b, "section_id": 2, "role_id": 9})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("taken role status = %d", resp.StatusCode)
	}
	resp = api.do(t, http.MethodPost, "/tala2e3/assign-role", tok, map[string]any{"user_id": b, "section_id": 3, "role_id": 5})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("mismatched section status = %d", resp.StatusCode)
	}
	resp = api.do(t, http.MethodPost, "/tala2e3/assign-role", tok, map[string]any{"user_id": b, "role_id": 10})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("sentinel role status = %d", resp.StatusCode)
	}

	resp = api.do(t, http.MethodGet, "/tala2e3-role?date="+today.String(), tok, nil)
	var users []membership.User
	decodeBody(t, resp, &users)
	if len(users) != 2 {
		t.Fatalf("expected two members, got %+v", users)
	}
	if st := membership.Resolve(users[0], membership.Tala2e3); st.RoleName != "Ne2b Al Ra2is" || !st.Current {
		t.Fatalf("unexpected standing %+v", st)
	}

	for i := 0; i < 2; i++ {
		resp = api.do(t, http.MethodPost, "/tala2e3/remove-role", tok, map[string]any{"user_id": a, "section_id": 2})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("remove %d status = %d", i, resp.StatusCode)
		}
	}

	for i := 0; i < 2; i++ {
		resp = api.do(t, http.MethodPost, "/user/"+itoa(b)+"/remove-from-section", tok, map[string]any{"section_id": 2})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("leave %d status = %d", i, resp.StatusCode)
		}
	}
	if _, open := api.store.Ledger().Current(b, membership.Tala2e3); open {
		t.Fatalf("membership still open after leaving")
	}

	resp = api.do(t, http.MethodGet, "/tala2e3-role?date=2024-02-30", tok, nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("invalid date status = %d", resp.StatusCode)
	}
}

func TestUserManagement(t *testing.T) {
	api := newTestAPI(t)
	admin := api.register(t, "Admin", "admin@example.org", true)
	api.register(t, "Member", "member@example.org", false)
	tok := api.token(t, "admin@example.org")

	resp := api.do(t, http.MethodPost, "/adduser", api.token(t, "member@example.org"), map[string]any{
		"name": "X", "email": "x@example.org", "password": "Secret123!",
	})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("member adduser status = %d", resp.StatusCode)
	}

	resp = api.do(t, http.MethodPost, "/adduser", tok, map[string]any{"name": "X", "email": "member@example.org", "password": "Secret123!"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate email status = %d", resp.StatusCode)
	}
	var body ErrorBody
	decodeBody(t, resp, &body)
	if len(body.Errors["email"]) != 1 {
		t.Fatalf("expected email field error, got %+v", body)
	}

	resp = api.do(t, http.MethodPost, "/adduser", tok, map[string]any{"name": "X", "email": "x@example.org", "password": "Secret123!"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("adduser status = %d", resp.StatusCode)
	}

	resp = api.do(t, http.MethodDelete, "/user/delete/"+itoa(admin), tok, nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("self delete status = %d", resp.StatusCode)
	}
	resp = api.do(t, http.MethodDelete, "/user/delete/999", tok, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing user status = %d", resp.StatusCode)
	}

	resp = api.do(t, http.MethodGet, "/users", tok, nil)
	var users []membership.User
	decodeBody(t, resp, &users)
	if len(users) != 3 {
		t.Fatalf("expected three users, got %d", len(users))
	}
}

func TestEventsRejectUnexpandedShared(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "Admin", "admin@example.org", true)
	api.register(t, "Member", "member@example.org", false)
	tok := api.token(t, "admin@example.org")

	event := map[string]any{"title": "Picnic", "type": "social", "event_date": "2024-05-01", "total_spent": "10", "total_revenue": "25.5", "sections": []int{4}}
	if resp := api.do(t, http.MethodPost, "/addevent", tok, event); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("shared status = %d", resp.StatusCode)
	}

	event["sections"] = []int{3, 1, 3}
	resp := api.do(t, http.MethodPost, "/addevent", tok, event)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var created struct {
		Event gateway.Event `json:"event"`
	}
	decodeBody(t, resp, &created)
	if len(created.Event.Sections) != 2 || created.Event.Sections[0].ID != membership.Chabiba {
		t.Fatalf("unexpected sections %+v", created.Event.Sections)
	}

	// members cannot target sections
	resp = api.do(t, http.MethodPost, "/addevent", api.token(t, "member@example.org"), map[string]any{
		"title": "Bake sale", "type": "fundraiser", "shared_event": true, "sections": []int{1},
	})
	decodeBody(t, resp, &created)
	if len(created.Event.Sections) != 0 || !created.Event.SharedEvent {
		t.Fatalf("member event %+v", created.Event)
	}
}

func TestDriveAccess(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "Admin", "admin@example.org", true)
	secretary := api.register(t, "Sec", "sec@example.org", false)
	api.register(t, "Member", "member@example.org", false)
	today := membership.Today(time.Now())
	if _, err := api.store.Ledger().AddToSection(secretary, membership.Chabiba, today); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if _, err := api.store.Ledger().AssignRole(secretary, membership.Chabiba, 7, today); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if resp := api.do(t, http.MethodGet, "/drive-accounts", api.token(t, "member@example.org"), nil); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("member drive status = %d", resp.StatusCode)
	}

	tok := api.token(t, "sec@example.org")
	resp := api.do(t, http.MethodPost, "/drive-accounts", tok, map[string]string{"title": "Archive", "email": "archive@example.org", "password": "pw"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	var acc gateway.DriveAccount
	decodeBody(t, resp, &acc)

	resp = api.do(t, http.MethodGet, "/drive-accounts/"+itoa(acc.ID), tok, nil)
	var reveal map[string]string
	decodeBody(t, resp, &reveal)
	if reveal["password"] != "pw" {
		t.Fatalf("unexpected reveal %v", reveal)
	}

	if resp := api.do(t, http.MethodDelete, "/drive-accounts/"+itoa(acc.ID), tok, nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	if resp := api.do(t, http.MethodGet, "/drive-accounts/"+itoa(acc.ID), tok, nil); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted reveal status = %d", resp.StatusCode)
	}
}

func TestMeetingLinks(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "Member", "member@example.org", false)
	api.register(t, "Admin", "admin@example.org", true)

	body := map[string]any{"section_id": 3, "drive_link": "https://drive.example/forsan"}
	if resp := api.do(t, http.MethodPost, "/addmeetinglink", api.token(t, "member@example.org"), body); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("member status = %d", resp.StatusCode)
	}

	tok := api.token(t, "admin@example.org")
	if resp := api.do(t, http.MethodPost, "/addmeetinglink", tok, map[string]any{"section_id": 3, "drive_link": "ftp://x"}); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("bad link status = %d", resp.StatusCode)
	}
	if resp := api.do(t, http.MethodPost, "/addmeetinglink", tok, body); resp.StatusCode != http.StatusOK {
		t.Fatalf("save status = %d", resp.StatusCode)
	}

	resp := api.do(t, http.MethodGet, "/meetings", tok, nil)
	var sections []gateway.MeetingSection
	decodeBody(t, resp, &sections)
	if len(sections) != 3 || len(sections[2].Meetings) != 1 || sections[2].Meetings[0].DriveLink != "https://drive.example/forsan" {
		t.Fatalf("unexpected meetings %+v", sections)
	}
	if len(sections[0].Meetings) != 0 {
		t.Fatalf("chabiba should have no links")
	}
}
