package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendBroadcastSetsSecretAndPath(t *testing.T) {
	var gotPath, gotSecret, gotMethod string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSecret = r.Header.Get("X-Admin-Secret")
		gotMethod = r.Method
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, "s3cret", server.Client())
	if errSend := client.SendBroadcast(context.Background(), 42); errSend != nil {
		t.Fatalf("SendBroadcast returned error: %v", errSend)
	}
	if gotPath != "/api/admin/broadcasts/42/send" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotSecret != "s3cret" {
		t.Fatalf("unexpected secret header %q", gotSecret)
	}
	if gotMethod != http.MethodPost {
		t.Fatalf("unexpected method %q", gotMethod)
	}
}

func TestCancelBroadcastPassesBackendErrorThrough(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"broadcast already completed"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "s3cret", server.Client())
	errCancel := client.CancelBroadcast(context.Background(), 7)
	if errCancel == nil {
		t.Fatal("expected error from backend")
	}
	var backendErr *Error
	if !errors.As(errCancel, &backendErr) {
		t.Fatalf("expected *Error, got %T", errCancel)
	}
	if backendErr.StatusCode != http.StatusConflict {
		t.Fatalf("unexpected status %d", backendErr.StatusCode)
	}
	if backendErr.Message != "broadcast already completed" {
		t.Fatalf("unexpected message %q", backendErr.Message)
	}
}

func TestNotConfigured(t *testing.T) {
	client := NewClient("", "", nil)
	if client.Configured() {
		t.Fatal("empty base URL should not be configured")
	}
	if errSend := client.SendBroadcast(context.Background(), 1); errSend == nil {
		t.Fatal("expected error when backend is not configured")
	}
}
