package instagram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

type graphCall struct {
	path string
	form map[string]string
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c := NewClient("page-1", "app-1", "app-secret", zap.NewNop())
	c.baseURL = server.URL
	c.http = server.Client()
	c.sleep = func(time.Duration) {}
	c.SetAccessToken("token-abc")
	return c, server
}

func recordCall(t *testing.T, r *http.Request) graphCall {
	t.Helper()
	if err := r.ParseForm(); err != nil {
		t.Fatal(err)
	}
	form := map[string]string{}
	for key := range r.Form {
		form[key] = r.Form.Get(key)
	}
	return graphCall{path: r.URL.Path, form: form}
}

func TestPublishSingleImagePost(t *testing.T) {
	var calls []graphCall
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, recordCall(t, r))
		json.NewEncoder(w).Encode(map[string]string{"id": "media-1"})
	}))

	mediaID, err := client.PublishPost(context.Background(), []string{"https://cdn/x.png"}, "a caption #tag")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mediaID != "media-1" {
		t.Fatalf("media id: got %q", mediaID)
	}

	if len(calls) != 2 {
		t.Fatalf("expected container + publish, got %d calls", len(calls))
	}
	create := calls[0]
	if create.path != "/page-1/media" {
		t.Fatalf("create path: %s", create.path)
	}
	if create.form["image_url"] != "https://cdn/x.png" || create.form["caption"] != "a caption #tag" {
		t.Fatalf("create form: %v", create.form)
	}
	if create.form["is_carousel_item"] != "" {
		t.Fatal("single post must not be a carousel item")
	}
	if create.form["access_token"] != "token-abc" {
		t.Fatal("access token missing")
	}

	publish := calls[1]
	if publish.path != "/page-1/media_publish" || publish.form["creation_id"] != "media-1" {
		t.Fatalf("publish call: %+v", publish)
	}
}

func TestPublishCarouselPost(t *testing.T) {
	var calls []graphCall
	n := 0
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, recordCall(t, r))
		n++
		json.NewEncoder(w).Encode(map[string]string{"id": map[int]string{
			1: "child-1", 2: "child-2", 3: "child-3", 4: "carousel-1", 5: "post-1",
		}[n]})
	}))

	urls := []string{"https://cdn/1.png", "https://cdn/2.png", "https://cdn/3.png"}
	mediaID, err := client.PublishPost(context.Background(), urls, "caption")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mediaID != "post-1" {
		t.Fatalf("media id: got %q", mediaID)
	}

	// 3 children, 1 carousel container, 1 publish.
	if len(calls) != 5 {
		t.Fatalf("expected 5 calls, got %d", len(calls))
	}
	for i := 0; i < 3; i++ {
		if calls[i].form["is_carousel_item"] != "true" {
			t.Fatalf("child %d should be a carousel item", i+1)
		}
		if calls[i].form["caption"] != "" {
			t.Fatal("children must not carry captions")
		}
	}

	carousel := calls[3]
	if carousel.form["media_type"] != "CAROUSEL" {
		t.Fatalf("carousel form: %v", carousel.form)
	}
	if carousel.form["children"] != "child-1,child-2,child-3" {
		t.Fatalf("children order wrong: %q", carousel.form["children"])
	}
	if carousel.form["caption"] != "caption" {
		t.Fatal("carousel container should carry the caption")
	}

	if calls[4].form["creation_id"] != "carousel-1" {
		t.Fatalf("publish should target the carousel container, got %v", calls[4].form)
	}
}

func TestPublishSurfacesGraphError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "Invalid image URL", "code": 100},
		})
	}))

	_, err := client.PublishPost(context.Background(), []string{"https://cdn/bad.png"}, "cap")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "Invalid image URL") {
		t.Fatalf("error should carry the graph message: %v", err)
	}
}

func TestRefreshAccessToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/access_token" {
			t.Errorf("path: %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("grant_type") != "fb_exchange_token" ||
			q.Get("client_id") != "app-1" ||
			q.Get("client_secret") != "app-secret" ||
			q.Get("fb_exchange_token") != "token-abc" {
			t.Errorf("unexpected query: %v", q)
		}
		json.NewEncoder(w).Encode(map[string]string{"access_token": "token-new"})
	}))

	token, err := client.RefreshAccessToken(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "token-new" {
		t.Fatalf("token: got %q", token)
	}
}

func TestRefreshRequiresAppCredentials(t *testing.T) {
	c := NewClient("page-1", "", "", zap.NewNop())
	c.SetAccessToken("tok")
	if _, err := c.RefreshAccessToken(context.Background()); err == nil {
		t.Fatal("expected an error without app credentials")
	}
}

func TestRefreshRequiresCurrentToken(t *testing.T) {
	c := NewClient("page-1", "app-1", "app-secret", zap.NewNop())
	if _, err := c.RefreshAccessToken(context.Background()); err == nil {
		t.Fatal("expected an error without a token to exchange")
	}
}

func TestPublishRejectsEmptyImageList(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no call expected")
	}))
	if _, err := client.PublishPost(context.Background(), nil, "cap"); err == nil {
		t.Fatal("expected an error for an empty image list")
	}
}
