package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rentwatch/internal/sites"
)

func testSettings() sites.Settings {
	return sites.Settings{UserAgent: "rentwatch-test/1.0"}
}

func TestHTTPFetcherDisabledSite(t *testing.T) {
	f := NewHTTPFetcher(testSettings(), 5*time.Second)
	site := testSite()
	site.Enabled = false

	_, err := f.Fetch(context.Background(), site)
	if !errors.Is(err, ErrSiteDisabled) {
		t.Errorf("expected ErrSiteDisabled, got %v", err)
	}
}

func TestHTTPFetcherSendsUserAgent(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(testSettings(), 5*time.Second)
	site := testSite()
	site.SearchURL = srv.URL

	body, err := f.Fetch(context.Background(), site)
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if string(body) != "<html></html>" {
		t.Errorf("unexpected body: %q", body)
	}
	if gotUA != "rentwatch-test/1.0" {
		t.Errorf("configured user agent not sent, got %q", gotUA)
	}
}

func TestHTTPFetcherStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(testSettings(), 5*time.Second)
	site := testSite()
	site.SearchURL = srv.URL

	_, err := f.Fetch(context.Background(), site)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusForbidden {
		t.Errorf("expected code 403, got %d", statusErr.Code)
	}
}

func TestHTTPFetcherNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	site := testSite()
	site.SearchURL = srv.URL
	srv.Close() // connection refused from here on

	f := NewHTTPFetcher(testSettings(), 2*time.Second)
	_, err := f.Fetch(context.Background(), site)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError, got %v", err)
	}
	if netErr.Site != site.Name {
		t.Errorf("error should carry the site name, got %q", netErr.Site)
	}
}

func TestHTTPFetcherTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(testSettings(), 50*time.Millisecond)
	site := testSite()
	site.SearchURL = srv.URL

	_, err := f.Fetch(context.Background(), site)
	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("expected NetworkError on timeout, got %v", err)
	}
}
