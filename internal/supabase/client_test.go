package supabase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const testKey = "service-key-123"

func newTestClient(serverURL string) *Client {
	c := NewClient(Config{BaseURL: serverURL, ServiceKey: testKey})
	// Bypass retries so failure tests return immediately.
	c.SetHTTPClient(http.DefaultClient)
	return c
}

func checkAuthHeaders(t *testing.T, r *http.Request) {
	t.Helper()
	if got := r.Header.Get("apikey"); got != testKey {
		t.Errorf("apikey header = %q", got)
	}
	if got := r.Header.Get("Authorization"); got != "Bearer "+testKey {
		t.Errorf("Authorization header = %q", got)
	}
}

func TestUpsertContacts(t *testing.T) {
	var gotBody []Contact
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkAuthHeaders(t, r)
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.URL.Path != "/rest/v1/contacts" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("on_conflict"); got != "email,client_id" {
			t.Errorf("on_conflict = %q", got)
		}
		if got := r.Header.Get("Prefer"); got != "resolution=merge-duplicates,return=minimal" {
			t.Errorf("Prefer = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	first := "Alice"
	contacts := []Contact{{
		Email:        "alice@x.com",
		FirstName:    &first,
		Tags:         []string{"A", "B"},
		Unsubscribed: true,
		ClientID:     "client-1",
	}}

	if err := newTestClient(server.URL).UpsertContacts(context.Background(), contacts); err != nil {
		t.Fatalf("UpsertContacts: %v", err)
	}
	if len(gotBody) != 1 || gotBody[0].Email != "alice@x.com" {
		t.Errorf("server received %+v", gotBody)
	}
	if gotBody[0].LastName != nil {
		t.Error("empty optional field must serialize as null")
	}
}

func TestUpsertTags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/rest/v1/tags" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("on_conflict"); got != "name,client_id" {
			t.Errorf("on_conflict = %q", got)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	tags := []Tag{{Name: "Web Order", ClientID: "client-1", ContactCount: 12}}
	if err := newTestClient(server.URL).UpsertTags(context.Background(), tags); err != nil {
		t.Fatalf("UpsertTags: %v", err)
	}
}

func TestFetchContactTags(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkAuthHeaders(t, r)
		q := r.URL.Query()
		if got := q.Get("client_id"); got != "eq.client-1" {
			t.Errorf("client_id filter = %q", got)
		}
		if got := q.Get("select"); got != "tags" {
			t.Errorf("select = %q", got)
		}
		if q.Get("offset") != "1000" || q.Get("limit") != "1000" {
			t.Errorf("pagination = offset %s limit %s", q.Get("offset"), q.Get("limit"))
		}
		w.Write([]byte(`[{"tags":["x","y"]},{"tags":null}]`))
	}))
	defer server.Close()

	page, err := newTestClient(server.URL).FetchContactTags(context.Background(), "client-1", 1000, 1000)
	if err != nil {
		t.Fatalf("FetchContactTags: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("got %d rows, want 2", len(page))
	}
	if len(page[0].Tags) != 2 || page[1].Tags != nil {
		t.Errorf("page decoded as %+v", page)
	}
}

func TestAPIErrorIncludesStatusAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"message":"duplicate key"}`))
	}))
	defer server.Close()

	err := newTestClient(server.URL).UpsertContacts(context.Background(), []Contact{{Email: "a@x.com"}})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if !strings.Contains(err.Error(), "409") || !strings.Contains(err.Error(), "duplicate key") {
		t.Errorf("error %q must carry status and body", err)
	}
}
