package lightspeed

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// mockCredUpdater is a mock implementation of CredentialUpdater
type mockCredUpdater struct {
	UpdateTokensFunc func(ctx context.Context, merchantID, accessToken, refreshToken string, expiresIn int) error

	merchantID   string
	accessToken  string
	refreshToken string
	expiresIn    int
	calls        int
}

func (m *mockCredUpdater) UpdateTokens(ctx context.Context, merchantID, accessToken, refreshToken string, expiresIn int) error {
	m.calls++
	m.merchantID = merchantID
	m.accessToken = accessToken
	m.refreshToken = refreshToken
	m.expiresIn = expiresIn
	if m.UpdateTokensFunc != nil {
		return m.UpdateTokensFunc(ctx, merchantID, accessToken, refreshToken, expiresIn)
	}
	return nil
}

func TestRefresh_SuccessPersistsNewPair(t *testing.T) {
	var gotForm string
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotForm = string(body)
		gotContentType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{"access_token": "new-access", "refresh_token": "new-refresh", "expires_in": 3600}`))
	}))
	defer srv.Close()

	store := &mockCredUpdater{}
	r := NewTokenRefresher(srv.URL, "cid", "secret", srv.Client(), store)

	accessToken, err := r.Refresh(context.Background(), "m1", "old-refresh")
	if err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}

	if accessToken != "new-access" {
		t.Errorf("expected new-access, got %q", accessToken)
	}
	if gotContentType != "application/x-www-form-urlencoded" {
		t.Errorf("unexpected content type %q", gotContentType)
	}
	for _, want := range []string{"client_id=cid", "client_secret=secret", "grant_type=refresh_token", "refresh_token=old-refresh"} {
		if !strings.Contains(gotForm, want) {
			t.Errorf("form missing %q: %s", want, gotForm)
		}
	}

	if store.calls != 1 {
		t.Fatalf("expected 1 persist call, got %d", store.calls)
	}
	if store.merchantID != "m1" || store.accessToken != "new-access" || store.refreshToken != "new-refresh" || store.expiresIn != 3600 {
		t.Errorf("unexpected persisted pair: %+v", store)
	}
}

func TestRefresh_KeepsOldRefreshTokenWhenNotRotated(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token": "new-access", "expires_in": 3600}`))
	}))
	defer srv.Close()

	store := &mockCredUpdater{}
	r := NewTokenRefresher(srv.URL, "cid", "secret", srv.Client(), store)

	if _, err := r.Refresh(context.Background(), "m1", "old-refresh"); err != nil {
		t.Fatalf("Refresh() failed: %v", err)
	}
	if store.refreshToken != "old-refresh" {
		t.Errorf("expected old refresh token kept, got %q", store.refreshToken)
	}
}

func TestRefresh_Non200Fails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
	}))
	defer srv.Close()

	store := &mockCredUpdater{}
	r := NewTokenRefresher(srv.URL, "cid", "secret", srv.Client(), store)

	_, err := r.Refresh(context.Background(), "m1", "old-refresh")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "invalid_grant") {
		t.Errorf("expected body in error, got %v", err)
	}
	if store.calls != 0 {
		t.Errorf("expected no persist on failure, got %d calls", store.calls)
	}
}

func TestRefresh_MissingAccessTokenFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"refresh_token": "only-refresh"}`))
	}))
	defer srv.Close()

	store := &mockCredUpdater{}
	r := NewTokenRefresher(srv.URL, "cid", "secret", srv.Client(), store)

	_, err := r.Refresh(context.Background(), "m1", "old-refresh")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "access_token") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestRefresh_PersistFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"access_token": "new-access"}`))
	}))
	defer srv.Close()

	store := &mockCredUpdater{
		UpdateTokensFunc: func(_ context.Context, _, _, _ string, _ int) error {
			return context.DeadlineExceeded
		},
	}
	r := NewTokenRefresher(srv.URL, "cid", "secret", srv.Client(), store)

	_, err := r.Refresh(context.Background(), "m1", "old-refresh")
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "persist refreshed tokens") {
		t.Errorf("unexpected error %v", err)
	}
}
