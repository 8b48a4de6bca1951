package ingest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"insightrelay/internal/analysis"
)

func TestUpload(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/documents/upload" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("failed to parse multipart form: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file part: %v", err)
		}
		defer file.Close()

		if header.Filename != "AI_Analysis_2024-01-31.csv" {
			t.Errorf("unexpected filename: %q", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "text/csv" {
			t.Errorf("unexpected part content type: %q", ct)
		}
		content, _ := io.ReadAll(file)
		if string(content) != "a,b\n" {
			t.Errorf("unexpected content: %q", content)
		}

		json.NewEncoder(w).Encode(StoredObject{URL: "https://store/abc"})
	}))
	defer server.Close()

	client := NewClient(server.URL, analysis.StaticToken("tok"), 5*time.Second)
	stored, err := client.Upload(context.Background(), "AI_Analysis_2024-01-31.csv", "text/csv", []byte("a,b\n"))
	if err != nil {
		t.Fatalf("Upload() error: %v", err)
	}
	if stored.URL != "https://store/abc" {
		t.Errorf("unexpected stored URL: %q", stored.URL)
	}
}

func TestUploadRemoteError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "storage full", http.StatusInsufficientStorage)
	}))
	defer server.Close()

	client := NewClient(server.URL, analysis.StaticToken(""), 5*time.Second)
	if _, err := client.Upload(context.Background(), "f.csv", "text/csv", []byte("x")); err == nil {
		t.Fatal("expected error, got nil")
	}
}
