package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"jarindexer/internal/domain"
)

func TestFetchSingleURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("jar bytes"))
	}))
	defer srv.Close()

	dst := filepath.Join(t.TempDir(), "lib-sources.jar")
	d := NewDownloader(1, 5*time.Second)
	if err := d.Fetch(context.Background(), []string{srv.URL}, dst); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "jar bytes" {
		t.Fatalf("content = %q", b)
	}
}

func TestFetchMirrorRaceFirstSuccessWins(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer dead.Close()
	alive := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("from mirror"))
	}))
	defer alive.Close()

	dst := filepath.Join(t.TempDir(), "out.jar")
	d := NewDownloader(1, 5*time.Second)
	if err := d.Fetch(context.Background(), []string{dead.URL, alive.URL}, dst); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "from mirror" {
		t.Fatalf("content = %q", b)
	}
}

func TestFetchAllExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	dst := filepath.Join(t.TempDir(), "out.jar")
	d := NewDownloader(2, 5*time.Second)
	err := d.Fetch(context.Background(), []string{srv.URL + "/a", srv.URL + "/b"}, dst)
	if !errors.Is(err, domain.ErrDownloadFailed) {
		t.Fatalf("want ErrDownloadFailed, got %v", err)
	}
	if !errors.Is(err, domain.ErrResourceNotFound) {
		t.Fatalf("want wrapped ErrResourceNotFound, got %v", err)
	}
	if _, statErr := os.Stat(dst); !os.IsNotExist(statErr) {
		t.Fatal("dst exists after failed fetch")
	}
}

func TestFetchRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte("third time lucky"))
	}))
	defer srv.Close()

	dst := filepath.Join(t.TempDir(), "out.jar")
	d := NewDownloader(3, 5*time.Second)
	if err := d.Fetch(context.Background(), []string{srv.URL}, dst); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("calls = %d", got)
	}
}

func TestFetchDoesNotRetryNotFound(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	d := NewDownloader(3, 5*time.Second)
	err := d.Fetch(context.Background(), []string{srv.URL}, filepath.Join(t.TempDir(), "out.jar"))
	if !errors.Is(err, domain.ErrResourceNotFound) {
		t.Fatalf("want ErrResourceNotFound, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("calls = %d", got)
	}
}
