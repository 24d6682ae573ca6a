package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDoSendsBearerAndDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("unexpected auth header %q", r.Header.Get("Authorization"))
		}
		var in map[string]string
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in["hello"] != "world" {
			t.Errorf("unexpected body %v, %v", in, err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	var out struct {
		OK bool `json:"ok"`
	}
	err := Do(context.Background(), srv.Client(), "test", http.MethodPost, srv.URL, "tok", map[string]string{"hello": "world"}, &out)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if !out.OK {
		t.Fatal("expected ok=true")
	}
}

func TestDoStatusErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		unauthorized bool
	}{
		{"unauthorized", http.StatusUnauthorized, true},
		{"forbidden", http.StatusForbidden, false},
		{"server error", http.StatusInternalServerError, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(`{"errors":[{"message":"nope"}]}`))
			}))
			defer srv.Close()

			err := Do(context.Background(), srv.Client(), "test", http.MethodGet, srv.URL, "tok", nil, nil)
			var remoteErr *Error
			if !errors.As(err, &remoteErr) {
				t.Fatalf("expected *Error, got %v", err)
			}
			if remoteErr.StatusCode != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, remoteErr.StatusCode)
			}
			if errors.Is(err, ErrUnauthorized) != tc.unauthorized {
				t.Fatalf("errors.Is(ErrUnauthorized) = %v, want %v", !tc.unauthorized, tc.unauthorized)
			}
		})
	}
}
