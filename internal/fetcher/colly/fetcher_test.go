package collyfetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mquintana/quotesync/internal/fetcher"
)

func TestFetchReturnsBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("expected user agent override, got %q", got)
		}
		w.Write([]byte("<html><body>ok</body></html>")) //nolint:errcheck
	}))
	defer srv.Close()

	f := New(Config{UserAgent: "test-agent", Timeout: 5 * time.Second})
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if !strings.Contains(string(body), "ok") {
		t.Fatalf("unexpected body %q", body)
	}
}

func TestFetchSameURLRepeatedly(t *testing.T) {
	t.Parallel()

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits++
		w.Write([]byte("<html><body>ok</body></html>")) //nolint:errcheck
	}))
	defer srv.Close()

	// Scheduled cycles refetch every page; the collector must not remember
	// earlier visits.
	f := New(Config{Timeout: 5 * time.Second})
	for i := 0; i < 3; i++ {
		if _, err := f.Fetch(context.Background(), srv.URL); err != nil {
			t.Fatalf("fetch %d of same URL failed: %v", i+1, err)
		}
	}
	if hits != 3 {
		t.Fatalf("expected 3 requests to reach the server, got %d", hits)
	}
}

func TestFetchSurfacesHTTPStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	f := New(Config{Timeout: 5 * time.Second})
	_, err := f.Fetch(context.Background(), srv.URL)
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if got := fetcher.StatusOf(err); got != http.StatusNotFound {
		t.Fatalf("expected status 404 in error, got %d (%v)", got, err)
	}
}

func TestFetchTransportFailureHasZeroStatus(t *testing.T) {
	t.Parallel()

	f := New(Config{Timeout: time.Second})
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/unreachable")
	if err == nil {
		t.Fatal("expected transport error")
	}
	if got := fetcher.StatusOf(err); got != 0 {
		t.Fatalf("expected zero status for transport failure, got %d", got)
	}
}

func TestFetchHonorsContextCancel(t *testing.T) {
	t.Parallel()

	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	f := New(Config{Timeout: 10 * time.Second})
	_, err := f.Fetch(ctx, srv.URL)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
}
