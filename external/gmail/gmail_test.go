package gmail

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		switch {
		case strings.HasSuffix(r.URL.Path, "/messages"):
			json.NewEncoder(w).Encode(map[string]interface{}{
				"messages": []map[string]string{{"id": "m1"}, {"id": "m2"}},
			})
		default:
			id := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":      id,
				"snippet": "snippet of " + id,
				"payload": map[string]interface{}{
					"headers": []map[string]string{
						{"name": "From", "value": "sender@example.com"},
						{"name": "Subject", "value": "Subject " + id},
					},
				},
			})
		}
	}))
	c := NewClient("tok")
	c.baseURL = srv.URL
	return srv, c
}

func TestListMessages(t *testing.T) {
	srv, c := newTestServer(t)
	defer srv.Close()

	messages, err := c.ListMessages(context.Background(), "in:inbox", 10)
	if err != nil {
		t.Fatalf("ListMessages: %v", err)
	}
	if len(messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(messages))
	}
	if messages[0].ID != "m1" || messages[0].From != "sender@example.com" {
		t.Errorf("first message = %+v", messages[0])
	}
	if messages[1].Subject != "Subject m2" {
		t.Errorf("second message = %+v", messages[1])
	}
}

func TestGetMessage(t *testing.T) {
	srv, c := newTestServer(t)
	defer srv.Close()

	msg, err := c.GetMessage(context.Background(), "abc")
	if err != nil {
		t.Fatalf("GetMessage: %v", err)
	}
	if msg.ID != "abc" || msg.Snippet != "snippet of abc" {
		t.Errorf("message = %+v", msg)
	}
}

func TestNon200IsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("tok")
	c.baseURL = srv.URL

	if _, err := c.ListMessages(context.Background(), "in:inbox", 10); err == nil {
		t.Fatal("expected error for 401")
	}
}
