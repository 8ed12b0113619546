package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestDoPassesThroughStatusAndBody(t *testing.T) {
	var gotPath, gotQuery, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotBody, _ = body["email"].(string)
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte(`{"detail":"teapot"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, zap.NewNop().Sugar())
	resp, err := c.Do(context.Background(), http.MethodPost, "/login", url.Values{"a": {"b"}}, map[string]string{"email": "x@y.z"})
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	if resp.Status != http.StatusTeapot {
		t.Errorf("status: got %d", resp.Status)
	}
	if resp.OK() {
		t.Error("418 must not report OK")
	}
	if d := resp.JSON()["detail"]; d != "teapot" {
		t.Errorf("body: got %v", d)
	}
	if gotPath != "/login" || gotQuery != "a=b" || gotBody != "x@y.z" {
		t.Errorf("request not forwarded faithfully: %q %q %q", gotPath, gotQuery, gotBody)
	}
}

func TestDoTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(srv.URL, 50*time.Millisecond, zap.NewNop().Sugar())
	_, err := c.Get(context.Background(), "/slow", nil)
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestDoUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := New(srv.URL, time.Second, zap.NewNop().Sugar())
	_, err := c.Get(context.Background(), "/down", nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestJSONToleratesEmptyAndGarbage(t *testing.T) {
	if got := (Response{}).JSON(); len(got) != 0 {
		t.Errorf("empty body: got %v", got)
	}
	if got := (Response{Body: []byte("not json")}).JSON(); len(got) != 0 {
		t.Errorf("garbage body: got %v", got)
	}
}
