package malapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_ValidateToken_SendsBearerToken(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":42,"name":"xavion03"}`))
	}))
	defer ts.Close()

	c := NewClient().WithBaseURLs(ts.URL, ts.URL)
	if err := c.ValidateToken(context.Background(), "tok"); err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if !strings.HasPrefix(gotAuth, "Bearer ") {
		t.Fatalf("expected Bearer auth, got %q", gotAuth)
	}
}

func TestClient_StatusClassification(t *testing.T) {
	var status int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer ts.Close()
	c := NewClient().WithBaseURLs(ts.URL, ts.URL)
	ctx := context.Background()

	status = http.StatusUnauthorized
	if err := c.ValidateToken(ctx, "tok"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("401: expected ErrUnauthorized, got %v", err)
	}

	status = http.StatusNotFound
	err := c.ValidateToken(ctx, "tok")
	if !IsClientError(err) || IsServerError(err) {
		t.Fatalf("404: expected client error, got %v", err)
	}

	status = http.StatusInternalServerError
	err = c.ValidateToken(ctx, "tok")
	if !IsServerError(err) || IsClientError(err) {
		t.Fatalf("500: expected server error, got %v", err)
	}
}

func TestClient_RefreshToken_PostsForm(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/token" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.PostForm.Get("grant_type") != "refresh_token" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("client_id") != "cid" || r.PostForm.Get("refresh_token") != "rt" {
			t.Errorf("unexpected form: %v", r.PostForm)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"new-at","refresh_token":"new-rt","token_type":"Bearer","expires_in":3600}`))
	}))
	defer ts.Close()

	c := NewClient().WithBaseURLs(ts.URL, ts.URL)
	cred, err := c.RefreshToken(context.Background(), "cid", "rt")
	if err != nil {
		t.Fatalf("RefreshToken: %v", err)
	}
	if cred.AccessToken != "new-at" || cred.RefreshToken != "new-rt" || cred.ClientID != "cid" {
		t.Fatalf("unexpected credential: %+v", cred)
	}
}

func TestClient_RefreshToken_BadRequestIsUnauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer ts.Close()

	c := NewClient().WithBaseURLs(ts.URL, ts.URL)
	_, err := c.RefreshToken(context.Background(), "cid", "dead")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for rejected refresh token, got %v", err)
	}
}

func TestClient_Watchlist_ParsesNodes(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/users/xavion03/animelist") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "50" {
			t.Errorf("limit = %q", r.URL.Query().Get("limit"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[
			{"node":{"id":1,"title":"Cowboy Bebop","main_picture":{"medium":"http://cdn/1.jpg"}}},
			{"node":{"id":30,"title":"Neon Genesis Evangelion"}}
		]}`))
	}))
	defer ts.Close()

	c := NewClient().WithBaseURLs(ts.URL, ts.URL)
	entries, err := c.Watchlist(context.Background(), "tok", "xavion03", 50)
	if err != nil {
		t.Fatalf("Watchlist: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}
	if entries[0].PictureURL != "http://cdn/1.jpg" {
		t.Fatalf("picture url not mapped: %+v", entries[0])
	}
	if entries[1].PictureURL != "" {
		t.Fatalf("missing picture should map to empty url: %+v", entries[1])
	}
}

func TestClient_AnimeDetail_OptionalFields(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// mean/rank/popularity/start_season absents : tolérés.
		_, _ = w.Write([]byte(`{"id":99,"title":"Obscure Show","genres":[{"id":1,"name":"Mystery"}]}`))
	}))
	defer ts.Close()

	c := NewClient().WithBaseURLs(ts.URL, ts.URL)
	d, err := c.AnimeDetail(context.Background(), "tok", 99)
	if err != nil {
		t.Fatalf("AnimeDetail: %v", err)
	}
	if d.Title != "Obscure Show" || d.Mean != 0 || len(d.Genres) != 1 {
		t.Fatalf("unexpected detail: %+v", d)
	}
}

func TestClient_AnimeDetail_MissingTitleFails(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":99}`))
	}))
	defer ts.Close()

	c := NewClient().WithBaseURLs(ts.URL, ts.URL)
	if _, err := c.AnimeDetail(context.Background(), "tok", 99); err == nil {
		t.Fatalf("expected error for detail without title")
	}
}
