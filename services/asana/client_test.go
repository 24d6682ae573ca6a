package asana

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"asana-swit-backend/config"
	"asana-swit-backend/services/remote"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.Config{AsanaAPIURL: srv.URL + "/api/1.0/"}, srv.Client())
}

func TestListProjects(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/1.0/projects" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer at" {
			t.Errorf("missing bearer token")
		}
		w.Write([]byte(`{"data":[{"gid":"p1","name":"Roadmap"},{"gid":"p2","name":"Bugs"}]}`))
	})

	projects, err := client.ListProjects(context.Background(), "at")
	if err != nil {
		t.Fatalf("list projects: %v", err)
	}
	if len(projects) != 2 || projects[0].GID != "p1" || projects[1].Name != "Bugs" {
		t.Fatalf("unexpected projects %+v", projects)
	}
}

func TestListWorkspaceMembers(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/1.0/users/me/workspace_memberships":
			w.Write([]byte(`{"data":[{"gid":"m0","workspace":{"gid":"w1","name":"Acme"}}]}`))
		case "/api/1.0/workspaces/w1/workspace_memberships":
			w.Write([]byte(`{"data":[{"gid":"m1","user":{"gid":"u1","name":"Ada"}}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	})

	memberships, err := client.ListWorkspaceMemberships(context.Background(), "at")
	if err != nil {
		t.Fatalf("memberships: %v", err)
	}
	if memberships[0].Workspace.GID != "w1" {
		t.Fatalf("unexpected memberships %+v", memberships)
	}
	members, err := client.ListWorkspaceMembers(context.Background(), "at", "w1")
	if err != nil {
		t.Fatalf("members: %v", err)
	}
	if len(members) != 1 || members[0].User.Name != "Ada" {
		t.Fatalf("unexpected members %+v", members)
	}
}

func TestCreateTaskPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/1.0/tasks" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body struct {
			Data map[string]any `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		if body.Data["name"] != "Write docs" {
			t.Errorf("unexpected name %v", body.Data["name"])
		}
		if body.Data["assignee"] != nil || body.Data["due_on"] != nil {
			t.Errorf("expected null optional fields, got %v", body.Data)
		}
		projects, _ := body.Data["projects"].([]any)
		if len(projects) != 1 || projects[0] != "p1" {
			t.Errorf("unexpected projects %v", body.Data["projects"])
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"gid":"t1","name":"Write docs","assignee":null,"projects":[{"gid":"p1","name":"Roadmap"}]}}`))
	})

	task, err := client.CreateTask(context.Background(), "at", TaskInput{Name: "Write docs", ProjectGID: "p1", Notes: "n"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.GID != "t1" || task.Assignee != nil || task.Projects[0].Name != "Roadmap" {
		t.Fatalf("unexpected task %+v", task)
	}
}

func TestUnauthorized(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.ListProjects(context.Background(), "expired")
	if !errors.Is(err, remote.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestTaskURL(t *testing.T) {
	if got := TaskURL("p1", "t1"); got != "https://app.asana.com/0/p1/t1" {
		t.Fatalf("TaskURL = %q", got)
	}
}
