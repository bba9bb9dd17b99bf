package syncclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/harrisonrobin/taskplan/pkg/model"
	"golang.org/x/oauth2"
)

func TestFetchAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/tasks" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Error("Expected an X-Request-Id header")
		}
		io.WriteString(w, `{"success": true, "tasks": [
			{"id": 2, "description": "B", "duration": 1, "priority": "low", "deadline": null, "done": false},
			{"id": 1, "description": "A", "duration": 2, "priority": "high", "deadline": "2024-01-01", "done": true}
		], "count": 2}`)
	}))
	defer srv.Close()

	tasks, err := New(srv.URL + "/api/").FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != 2 || tasks[1].ID != 1 {
		t.Errorf("Expected service order [2 1], got [%d %d]", tasks[0].ID, tasks[1].ID)
	}
	if !tasks[1].Done || !tasks[1].HasDeadline() {
		t.Errorf("Expected task 1 done with a deadline, got %+v", tasks[1])
	}
}

func TestAddTaskSendsBody(t *testing.T) {
	var got model.Task
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/add-task" {
			t.Errorf("Unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Expected JSON content type, got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Decode failed: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	task := model.Task{ID: 99, Description: "Write", Duration: 1.5, Priority: model.PriorityHigh}
	if err := New(srv.URL).AddTask(context.Background(), task); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if got.ID != 99 || got.Description != "Write" || got.Duration != 1.5 {
		t.Errorf("Expected the task to reach the server, got %+v", got)
	}
}

func TestDeleteAndCompletePaths(t *testing.T) {
	var calls []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL)
	if err := c.DeleteTask(context.Background(), 7); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if err := c.CompleteTask(context.Background(), 8); err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}
	want := []string{"DELETE /task/7", "PUT /task/8/complete"}
	if len(calls) != 2 || calls[0] != want[0] || calls[1] != want[1] {
		t.Errorf("Expected %v, got %v", want, calls)
	}
}

func TestGenerateSchedule(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		if string(b) != "{}" {
			t.Errorf("Expected empty JSON object body, got %q", b)
		}
		io.WriteString(w, `{"schedule": {"2024-01-01": {"09:00": {"id": 1, "description": "A", "duration": 1, "priority": "low", "deadline": null, "done": false}}}}`)
	}))
	defer srv.Close()

	s, err := New(srv.URL).GenerateSchedule(context.Background())
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}
	if s["2024-01-01"]["09:00"].Description != "A" {
		t.Errorf("Expected task A at 09:00, got %+v", s)
	}
}

func TestRemoteRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error": "description required"}`)
	}))
	defer srv.Close()

	err := New(srv.URL).AddTask(context.Background(), model.Task{ID: 1})
	if !errors.Is(err, ErrOperationFailed) {
		t.Fatalf("Expected ErrOperationFailed, got %v", err)
	}
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("Expected a RemoteError, got %T", err)
	}
	if remote.StatusCode != http.StatusBadRequest || remote.Message != "description required" {
		t.Errorf("Unexpected remote error %+v", remote)
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).FetchAll(context.Background())
	if !errors.Is(err, ErrOperationFailed) {
		t.Fatalf("Expected ErrOperationFailed, got %v", err)
	}
	var remote *RemoteError
	if errors.As(err, &remote) {
		t.Error("Expected a transport failure, not a RemoteError")
	}
}

func TestMalformedResponseIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `not json`)
	}))
	defer srv.Close()

	if _, err := New(srv.URL).GenerateSchedule(context.Background()); !errors.Is(err, ErrOperationFailed) {
		t.Errorf("Expected ErrOperationFailed, got %v", err)
	}
}

func TestBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Expected bearer token, got %q", got)
		}
		io.WriteString(w, `{"tasks": []}`)
	}))
	defer srv.Close()

	ctx := context.Background()
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "secret"})
	if _, err := New(srv.URL, WithTokenSource(ctx, ts)).FetchAll(ctx); err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
}

func TestDeadlinesInUnknownLayouts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/tasks":
			io.WriteString(w, `{"tasks": [{"id": 1, "description": "A", "duration": 1, "priority": "low", "deadline": "2024-01-05T10:00:00", "done": false}]}`)
		case "/generate-schedule":
			io.WriteString(w, `{"schedule": {"2024-01-01": {"09:00": {"id": 1, "description": "A", "duration": 1, "priority": "low", "deadline": "2024-01-05 10:00", "done": false}}}}`)
		}
	}))
	defer srv.Close()
	client := New(srv.URL)
	ctx := context.Background()

	tasks, err := client.FetchAll(ctx)
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Deadline.String() != "2024-01-05T10:00:00" {
		t.Errorf("Expected the deadline text to survive, got %+v", tasks)
	}

	schedule, err := client.GenerateSchedule(ctx)
	if err != nil {
		t.Fatalf("GenerateSchedule failed: %v", err)
	}
	if got := schedule["2024-01-01"]["09:00"].Deadline.Display(); got != "2024-01-05 10:00" {
		t.Errorf("Expected deadline '2024-01-05 10:00', got '%s'", got)
	}
}
