package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/existflow/taskdeck/internal/model"
)

func TestNewClientAppendsAPIPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"http://localhost:8000", "http://localhost:8000/api/v1"},
		{"http://localhost:8000/", "http://localhost:8000/api/v1"},
		{"http://localhost:8000/api/v1", "http://localhost:8000/api/v1"},
		{"https://tasks.example.com", "https://tasks.example.com/api/v1"},
	}
	for _, tt := range tests {
		if got := NewClient(tt.in).baseURL; got != tt.want {
			t.Errorf("NewClient(%q).baseURL = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRequestSetsBearerOnlyWithToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()

	c.ListTasks(ctx, "tok-123", model.TaskFilters{})
	if gotAuth != "Bearer tok-123" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}

	request[[]model.Task](c, ctx, http.MethodGet, "/tasks/", "", nil, "")
	if gotAuth != "" {
		t.Errorf("expected no Authorization header without a token, got %q", gotAuth)
	}
}

func TestRequestNormalizesHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"error":"Task not found"}`))
	}))
	defer srv.Close()

	res := NewClient(srv.URL).GetTask(context.Background(), "tok", "nope")
	if res.Success {
		t.Fatal("expected Success=false for a 404")
	}
	if res.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", res.Status)
	}
	if res.Error != `{"error":"Task not found"}` {
		t.Errorf("expected body as error text, got %q", res.Error)
	}
}

func TestRequestNormalizesTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	res := NewClient(srv.URL).GetTask(context.Background(), "tok", "id")
	if res.Success {
		t.Fatal("expected Success=false for a transport failure")
	}
	if res.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", res.Status)
	}
	if res.Error == "" {
		t.Error("expected the transport error text to be carried")
	}
}

func TestRequestNormalizesMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": `))
	}))
	defer srv.Close()

	res := NewClient(srv.URL).GetTask(context.Background(), "tok", "id")
	if res.Success {
		t.Fatal("expected Success=false for undecodable body")
	}
	if res.Status != http.StatusInternalServerError {
		t.Errorf("expected status 500, got %d", res.Status)
	}
}

func TestSignInSendsFormEncoding(t *testing.T) {
	var gotContentType, gotEmail, gotPassword string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		r.ParseForm()
		gotEmail = r.PostFormValue("email")
		gotPassword = r.PostFormValue("password")
		w.Write([]byte(`{"access_token":"tok","token_type":"bearer"}`))
	}))
	defer srv.Close()

	res := NewClient(srv.URL).SignIn(context.Background(), "dev@example.com", "s3cret")
	if !res.Success {
		t.Fatalf("SignIn failed: %s", res.Error)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("expected form encoding, got %q", gotContentType)
	}
	if gotEmail != "dev@example.com" || gotPassword != "s3cret" {
		t.Errorf("form fields not carried: email=%q password=%q", gotEmail, gotPassword)
	}
	if res.Data.AccessToken != "tok" {
		t.Errorf("expected access token decoded, got %q", res.Data.AccessToken)
	}
}

func TestListTasksEncodesRepeatedTagIDs(t *testing.T) {
	var gotQuery []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()["tag_ids"]
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	NewClient(srv.URL).ListTasks(context.Background(), "tok", model.TaskFilters{
		TagIDs: []string{"t1", "t2"},
	})
	if len(gotQuery) != 2 || gotQuery[0] != "t1" || gotQuery[1] != "t2" {
		t.Errorf("expected repeated tag_ids params, got %v", gotQuery)
	}
}
