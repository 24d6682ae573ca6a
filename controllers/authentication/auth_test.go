package authentication

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"asana-swit-backend/config"
	"asana-swit-backend/models"
	"asana-swit-backend/services/oauth"
	"asana-swit-backend/services/tokenstore"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/sessions"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type fakeProvider struct {
	base  string
	codes []string
	token *oauth.Token
	err   error
}

func (f *fakeProvider) AuthCodeURL(state string) string {
	return f.base + "?state=" + url.QueryEscape(state)
}

func (f *fakeProvider) ExchangeCode(_ context.Context, code string) (*oauth.Token, error) {
	f.codes = append(f.codes, code)
	if f.err != nil {
		return nil, f.err
	}
	return f.token, nil
}

type fakeResumer struct {
	states []models.OAuthState
	err    error
}

func (f *fakeResumer) Resume(_ context.Context, state models.OAuthState) error {
	f.states = append(f.states, state)
	return f.err
}

type fixture struct {
	h        *Handler
	db       *gorm.DB
	store    *tokenstore.Store
	sessions *sessions.CookieStore
	swit     *fakeProvider
	asana    *fakeProvider
	resumer  *fakeResumer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "auth.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	store := tokenstore.New(db, nil)
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	f := &fixture{
		db:      db,
		store:   store,
		swit:    &fakeProvider{base: "https://swit.example/oauth/authorize", token: &oauth.Token{AccessToken: "s-at", RefreshToken: "s-rt"}},
		asana:   &fakeProvider{base: "https://asana.example/-/oauth_authorize", token: &oauth.Token{AccessToken: "a-at", RefreshToken: "a-rt", ProviderUserID: "A1"}},
		resumer: &fakeResumer{},
	}
	cfg := &config.Config{AppName: "asana_sarah", SigningKey: "k", SessionMaxAge: time.Minute}
	f.sessions = config.NewSessionStore(cfg)
	f.h = NewHandler(cfg, f.swit, f.asana, store, f.resumer, f.sessions)
	return f
}

// session returns the cookies the Swit callback would have set for state.
func (f *fixture) session(t *testing.T, state string) []*http.Cookie {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/oauth", nil)
	rec := httptest.NewRecorder()
	s, _ := f.sessions.Get(req, sessionName)
	s.Values[stateKey] = state
	if err := s.Save(req, rec); err != nil {
		t.Fatalf("save session: %v", err)
	}
	return rec.Result().Cookies()
}

func sessionCookie(rec *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == sessionName {
			return c
		}
	}
	return nil
}

func (f *fixture) rows(t *testing.T) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(&models.UserData{}).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func get(handler http.HandlerFunc, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestAppInstall(t *testing.T) {
	f := newFixture(t)

	rec := get(f.h.HandleAppInstall, "/app_install?app_name=asana_sarah")
	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); !strings.HasSuffix(loc, "state=hello") {
		t.Fatalf("expected install state, got %q", loc)
	}

	if rec := get(f.h.HandleAppInstall, "/app_install?app_name=other"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSwitCallbackInstallStateClosesPopup(t *testing.T) {
	f := newFixture(t)

	rec := get(f.h.HandleSwitCallback, "/oauth?code=c1&state=hello")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "window.close()") {
		t.Fatalf("expected popup close page, got %d %q", rec.Code, rec.Body.String())
	}
	if n := f.rows(t); n != 0 {
		t.Fatalf("install must not write tokens, got %d rows", n)
	}
	if len(f.swit.codes) != 1 {
		t.Fatalf("expected the code to be exchanged once")
	}
}

func TestSwitCallbackRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	for _, target := range []string{
		"/oauth?state=U1:asana_help:en:C1",
		"/oauth?code=c1",
		"/oauth?code=c1&state=U1:asana_help",
		"/oauth?error=access_denied&state=U1:asana_help:en:C1",
	} {
		if rec := get(f.h.HandleSwitCallback, target); rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", target, rec.Code)
		}
	}
	if n := f.rows(t); n != 0 {
		t.Fatalf("expected no rows, got %d", n)
	}
}

func TestSwitCallbackExchangeFailure(t *testing.T) {
	f := newFixture(t)
	f.swit.err = &oauth.ExchangeError{Provider: "swit", StatusCode: http.StatusBadRequest, Err: errors.New("invalid_grant")}

	rec := get(f.h.HandleSwitCallback, "/oauth?code=bad&state=U1:asana_help:en:C1")
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Failed to obtain access token") {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestSwitCallbackStoresAndRedirectsToAsana(t *testing.T) {
	f := newFixture(t)
	state := "U1:asana_help:en:C1"

	for i := 0; i < 2; i++ {
		rec := get(f.h.HandleSwitCallback, "/oauth?code=c1&state="+url.QueryEscape(state))
		if rec.Code != http.StatusTemporaryRedirect {
			t.Fatalf("expected redirect, got %d: %s", rec.Code, rec.Body.String())
		}
		loc, err := url.Parse(rec.Header().Get("Location"))
		if err != nil {
			t.Fatalf("parse location: %v", err)
		}
		if loc.Host != "asana.example" || loc.Query().Get("state") != state {
			t.Fatalf("unexpected redirect %s", loc)
		}
		if c := sessionCookie(rec); c == nil || !c.HttpOnly || c.MaxAge != 60 {
			t.Fatalf("expected an OAuth session cookie, got %+v", c)
		}
	}
	if n := f.rows(t); n != 1 {
		t.Fatalf("expected a single row after two callbacks, got %d", n)
	}
	rec, err := f.store.Get(context.Background(), "U1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.SwitToken != "s-at" || rec.SwitRefreshToken != "s-rt" {
		t.Fatalf("unexpected stored tokens %+v", rec)
	}
}

func TestAsanaCallbackStoresAndResumes(t *testing.T) {
	f := newFixture(t)
	state := "U1:asana_help:ko:C1"
	started := get(f.h.HandleSwitCallback, "/oauth?code=c1&state="+url.QueryEscape(state))
	if started.Code != http.StatusTemporaryRedirect {
		t.Fatalf("expected redirect, got %d", started.Code)
	}
	f.resumer.err = errors.New("swit down")

	rec := get(f.h.HandleAsanaCallback, "/asana_oauth?code=c2&state="+url.QueryEscape(state), started.Result().Cookies()...)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "window.close()") {
		t.Fatalf("expected popup close page, got %d %q", rec.Code, rec.Body.String())
	}
	want := models.OAuthState{UserID: "U1", Action: "asana_help", Language: "ko", Channel: "C1"}
	if len(f.resumer.states) != 1 || f.resumer.states[0] != want {
		t.Fatalf("unexpected resume %+v", f.resumer.states)
	}
	if c := sessionCookie(rec); c == nil || c.MaxAge >= 0 {
		t.Fatalf("expected the OAuth session to be cleared, got %+v", c)
	}

	stored, err := f.store.Get(context.Background(), "U1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.AsanaID != "A1" || stored.AsanaToken != "a-at" || stored.AsanaRefreshToken != "a-rt" {
		t.Fatalf("unexpected asana tokens %+v", stored)
	}
}

func TestAsanaCallbackWithoutSwitRecord(t *testing.T) {
	f := newFixture(t)
	state := "U9:asana_help:en:C1"

	rec := get(f.h.HandleAsanaCallback, "/asana_oauth?code=c2&state="+url.QueryEscape(state), f.session(t, state)...)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
	if n := f.rows(t); n != 0 || len(f.resumer.states) != 0 {
		t.Fatalf("expected no row and no resume, got %d rows and %d resumes", n, len(f.resumer.states))
	}
}

func TestAsanaCallbackRequiresMatchingSession(t *testing.T) {
	victim := "U1:asana_create:en:C1"
	tampered := func(f *fixture, t *testing.T) []*http.Cookie {
		cookies := f.session(t, victim)
		for _, c := range cookies {
			c.Value = "x" + c.Value
		}
		return cookies
	}
	tests := []struct {
		name    string
		cookies func(f *fixture, t *testing.T) []*http.Cookie
	}{
		{"missing", func(*fixture, *testing.T) []*http.Cookie { return nil }},
		{"other user", func(f *fixture, t *testing.T) []*http.Cookie { return f.session(t, "U2:asana_create:en:C1") }},
		{"other action", func(f *fixture, t *testing.T) []*http.Cookie { return f.session(t, "U1:asana_help:en:C1") }},
		{"tampered", tampered},
		{"foreign key", func(_ *fixture, t *testing.T) []*http.Cookie {
			other := &fixture{sessions: config.NewSessionStore(&config.Config{SigningKey: "attacker", SessionMaxAge: time.Minute})}
			return other.session(t, victim)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if err := f.store.UpsertSwitTokens(context.Background(), "U1", "s-at", "s-rt"); err != nil {
				t.Fatalf("seed: %v", err)
			}

			rec := get(f.h.HandleAsanaCallback, "/asana_oauth?code=attacker&state="+url.QueryEscape(victim), tt.cookies(f, t)...)
			if rec.Code != http.StatusForbidden {
				t.Fatalf("expected 403, got %d", rec.Code)
			}
			if len(f.asana.codes) != 0 || len(f.resumer.states) != 0 {
				t.Fatalf("expected no exchange and no resume, got %v and %v", f.asana.codes, f.resumer.states)
			}
			stored, err := f.store.Get(context.Background(), "U1")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			if stored.AsanaToken != "" || stored.AsanaID != "" {
				t.Fatalf("asana tokens must not be bound, got %+v", stored)
			}
		})
	}
}

func TestAsanaCallbackErrors(t *testing.T) {
	f := newFixture(t)
	if rec := get(f.h.HandleAsanaCallback, "/asana_oauth?code=c2&state=broken"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	f.asana.err = errors.New("timeout")
	state := "U1:asana_help:en:C1"
	if rec := get(f.h.HandleAsanaCallback, "/asana_oauth?code=c2&state="+state, f.session(t, state)...); rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}
