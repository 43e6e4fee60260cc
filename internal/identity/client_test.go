package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestVerifyValidToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-123" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("apikey"); got != "service-key" {
			t.Errorf("apikey = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"user-1","email":"a@b.com","user_metadata":{"name":"Ann"}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "service-key")
	user, err := client.Verify(context.Background(), "token-123")
	if err != nil {
		t.Fatalf("Verify returned error: %v", err)
	}
	if user.ID != "user-1" {
		t.Errorf("user ID = %q, want user-1", user.ID)
	}
	if user.Email != "a@b.com" {
		t.Errorf("user email = %q", user.Email)
	}
	if user.Metadata["name"] != "Ann" {
		t.Errorf("metadata name = %v", user.Metadata["name"])
	}
}

func TestVerifyRejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"invalid JWT"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "service-key")
	_, err := client.Verify(context.Background(), "bad-token")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Verify error = %v, want ErrUnauthorized", err)
	}
}

func TestVerifyEmptyToken(t *testing.T) {
	client := NewClient("http://localhost:9", "key")
	_, err := client.Verify(context.Background(), "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Verify error = %v, want ErrUnauthorized", err)
	}
}

func TestVerifyMissingID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "key")
	_, err := client.Verify(context.Background(), "token")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("Verify error = %v, want ErrUnauthorized", err)
	}
}
