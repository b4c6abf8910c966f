package gemini

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"gemfiles/core"
)

func TestGetFile(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		// files.get returns the file object bare, not wrapped
		_, _ = w.Write([]byte(`{"name": "files/abc", "sizeBytes": "10", "state": "ACTIVE"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)

	// bare names are qualified with the resource prefix
	fd, err := client.GetFile(context.Background(), "abc")
	if err != nil {
		t.Fatalf("GetFile() failed: %v", err)
	}
	if gotPath != "/v1beta/files/abc" {
		t.Errorf("path = %q, want /v1beta/files/abc", gotPath)
	}
	if gotQuery.Get("key") != "test-key" {
		t.Errorf("key query = %q, want test-key", gotQuery.Get("key"))
	}
	if fd.Name != "files/abc" || fd.State != core.FileStateActive {
		t.Errorf("unexpected descriptor: %+v", fd)
	}

	// already-qualified names pass through unchanged
	if _, err := client.GetFile(context.Background(), "files/abc"); err != nil {
		t.Fatalf("GetFile() with qualified name failed: %v", err)
	}
	if gotPath != "/v1beta/files/abc" {
		t.Errorf("path = %q, want /v1beta/files/abc", gotPath)
	}
}

func TestGetFile_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"not found"}}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	_, err := client.GetFile(context.Background(), "nope")
	ue, ok := core.AsUploadError(err)
	if !ok || ue.Type != core.ErrorTypeRemote || ue.StatusCode != http.StatusNotFound {
		t.Fatalf("expected remote_error with status 404, got %v", err)
	}
}

func TestListFiles(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{
			"files": [
				{"name": "files/a", "sizeBytes": "1"},
				{"name": "files/b", "sizeBytes": "2"}
			],
			"nextPageToken": "page-2"
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	files, token, err := client.ListFiles(context.Background(), 25, "page-1")
	if err != nil {
		t.Fatalf("ListFiles() failed: %v", err)
	}
	if gotQuery.Get("pageSize") != "25" {
		t.Errorf("pageSize = %q, want 25", gotQuery.Get("pageSize"))
	}
	if gotQuery.Get("pageToken") != "page-1" {
		t.Errorf("pageToken = %q, want page-1", gotQuery.Get("pageToken"))
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if token != "page-2" {
		t.Errorf("next page token = %q, want page-2", token)
	}
}

func TestListFiles_DefaultPaging(t *testing.T) {
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	files, token, err := client.ListFiles(context.Background(), 0, "")
	if err != nil {
		t.Fatalf("ListFiles() failed: %v", err)
	}
	if gotQuery.Has("pageSize") || gotQuery.Has("pageToken") {
		t.Errorf("paging params should be omitted by default, got %v", gotQuery)
	}
	if len(files) != 0 || token != "" {
		t.Errorf("expected empty page, got %d files, token %q", len(files), token)
	}
}

func TestDeleteFile(t *testing.T) {
	var gotMethod, gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if err := client.DeleteFile(context.Background(), "abc"); err != nil {
		t.Fatalf("DeleteFile() failed: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %q, want DELETE", gotMethod)
	}
	if gotPath != "/v1beta/files/abc" {
		t.Errorf("path = %q, want /v1beta/files/abc", gotPath)
	}
}

func TestWaitForFileActive(t *testing.T) {
	var polls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state := core.FileStateProcessing
		if polls.Add(1) >= 3 {
			state = core.FileStateActive
		}
		_, _ = w.Write([]byte(`{"name": "files/abc", "sizeBytes": "10", "state": "` + state + `"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	fd, err := client.WaitForFileActive(context.Background(), "abc", time.Millisecond)
	if err != nil {
		t.Fatalf("WaitForFileActive() failed: %v", err)
	}
	if fd.State != core.FileStateActive {
		t.Errorf("State = %q, want ACTIVE", fd.State)
	}
	if got := polls.Load(); got != 3 {
		t.Errorf("polls = %d, want 3", got)
	}
}

func TestWaitForFileActive_Failed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "files/abc", "sizeBytes": "10", "state": "FAILED"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	if _, err := client.WaitForFileActive(context.Background(), "abc", time.Millisecond); err == nil {
		t.Fatal("expected an error for a FAILED file")
	}
}

func TestWaitForFileActive_ContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name": "files/abc", "sizeBytes": "10", "state": "PROCESSING"}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	client := newTestClient(t, server.URL)
	_, err := client.WaitForFileActive(ctx, "abc", 5*time.Millisecond)
	if err == nil {
		t.Fatal("expected a context error")
	}
}
