package download

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// imageServer serves fixed content at each path with the given content type.
type imageServer map[string]struct {
	contentType string
	body        string
}

func (is imageServer) start(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		entry, ok := is[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		if entry.contentType == "" {
			w.Header()["Content-Type"] = nil
		} else {
			w.Header().Set("Content-Type", entry.contentType)
		}
		w.Write([]byte(entry.body))
	}))
	t.Cleanup(server.Close)
	return server
}

func countFiles(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	return len(entries)
}

func TestStoreSendsHeaders(t *testing.T) {
	var gotUA, gotAccept string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("x"))
	}))
	defer server.Close()

	s := NewStore(t.TempDir(), Options{})
	s.Fetch(context.Background(), server.URL+"/x.png")

	if gotUA != DefaultUserAgent {
		t.Errorf("expected user agent %q, got %q", DefaultUserAgent, gotUA)
	}
	if gotAccept != "image/*" {
		t.Errorf("expected Accept image/*, got %q", gotAccept)
	}
}

func TestStoreFetchSavesImage(t *testing.T) {
	server := imageServer{
		"/cat.png": {"image/png", "B1"},
	}.start(t)

	dir := filepath.Join(t.TempDir(), "Fetched_Images")
	s := NewStore(dir, Options{})

	res := s.Fetch(context.Background(), server.URL+"/cat.png")
	if res.Outcome != Saved {
		t.Fatalf("expected saved, got %s (err=%v)", res.Outcome, res.Err)
	}
	if res.Path != filepath.Join(dir, "cat.png") {
		t.Errorf("unexpected path: %s", res.Path)
	}
	if len(res.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", res.Warnings)
	}

	b, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(b) != "B1" {
		t.Errorf("unexpected content: %q", b)
	}
}

func TestStoreFetchTwiceIsDuplicate(t *testing.T) {
	server := imageServer{
		"/cat.png": {"image/png", "B1"},
	}.start(t)

	dir := t.TempDir()
	s := NewStore(dir, Options{})

	first := s.Fetch(context.Background(), server.URL+"/cat.png")
	if first.Outcome != Saved {
		t.Fatalf("expected saved, got %s", first.Outcome)
	}

	second := s.Fetch(context.Background(), server.URL+"/cat.png")
	if second.Outcome != Duplicate {
		t.Fatalf("expected duplicate, got %s", second.Outcome)
	}
	if second.Existing != "cat.png" {
		t.Errorf("expected existing cat.png, got %q", second.Existing)
	}
	if n := countFiles(t, dir); n != 1 {
		t.Errorf("expected 1 file, got %d", n)
	}
}

func TestStoreDuplicateAcrossURLs(t *testing.T) {
	server := imageServer{
		"/a/cat.png":    {"image/png", "same"},
		"/b/kitten.png": {"image/png", "same"},
	}.start(t)

	dir := t.TempDir()
	s := NewStore(dir, Options{})

	s.Fetch(context.Background(), server.URL+"/a/cat.png")
	res := s.Fetch(context.Background(), server.URL+"/b/kitten.png")

	if res.Outcome != Duplicate || res.Existing != "cat.png" {
		t.Errorf("expected duplicate of cat.png, got %s %q", res.Outcome, res.Existing)
	}
}

func TestStoreCollidingNames(t *testing.T) {
	server := imageServer{
		"/1/photo.png": {"image/png", "one"},
		"/2/photo.png": {"image/png", "two"},
		"/3/photo.png": {"image/png", "three"},
	}.start(t)

	dir := t.TempDir()
	s := NewStore(dir, Options{})

	want := []string{"photo.png", "photo_1.png", "photo_2.png"}
	for i, p := range []string{"/1/photo.png", "/2/photo.png", "/3/photo.png"} {
		res := s.Fetch(context.Background(), server.URL+p)
		if res.Outcome != Saved {
			t.Fatalf("%s: expected saved, got %s", p, res.Outcome)
		}
		if filepath.Base(res.Path) != want[i] {
			t.Errorf("%s: expected %s, got %s", p, want[i], filepath.Base(res.Path))
		}
	}
}

func TestStorePlaceholderName(t *testing.T) {
	server := imageServer{
		"/": {"image/jpeg", "B2"},
	}.start(t)

	dir := t.TempDir()
	s := NewStore(dir, Options{})

	res := s.Fetch(context.Background(), server.URL+"/")
	if res.Outcome != Saved {
		t.Fatalf("expected saved, got %s", res.Outcome)
	}
	if filepath.Base(res.Path) != "downloaded_image.jpg" {
		t.Errorf("expected downloaded_image.jpg, got %s", filepath.Base(res.Path))
	}
}

func TestStoreMissingContentType(t *testing.T) {
	server := imageServer{
		"/pic": {"", "raw"},
	}.start(t)

	s := NewStore(t.TempDir(), Options{})

	res := s.Fetch(context.Background(), server.URL+"/pic")
	if res.Outcome != Saved {
		t.Fatalf("expected saved, got %s", res.Outcome)
	}
	if filepath.Base(res.Path) != "downloaded_image.jpg" {
		t.Errorf("expected downloaded_image.jpg, got %s", filepath.Base(res.Path))
	}
	if len(res.Warnings) != 1 {
		t.Errorf("expected a warning for missing content type, got %v", res.Warnings)
	}
}

func TestStoreNonImageWarnsAndSaves(t *testing.T) {
	server := imageServer{
		"/page": {"text/html; charset=utf-8", "<html></html>"},
	}.start(t)

	s := NewStore(t.TempDir(), Options{})

	res := s.Fetch(context.Background(), server.URL+"/page")
	if res.Outcome != Saved {
		t.Fatalf("expected saved, got %s", res.Outcome)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", res.Warnings)
	}
	if filepath.Base(res.Path) != "downloaded_image.bin" {
		t.Errorf("expected downloaded_image.bin, got %s", filepath.Base(res.Path))
	}
}

func TestStoreExpandPages(t *testing.T) {
	server := imageServer{
		"/gallery/": {"text/html; charset=utf-8", `<img src="a.png"><img src="/b.gif">`},
	}.start(t)

	dir := t.TempDir()
	s := NewStore(dir, Options{ExpandPages: true})

	res := s.Fetch(context.Background(), server.URL+"/gallery/")
	if res.Outcome != Expanded {
		t.Fatalf("expected expanded, got %s", res.Outcome)
	}

	want := []string{server.URL + "/gallery/a.png", server.URL + "/b.gif"}
	if len(res.Embedded) != len(want) {
		t.Fatalf("expected %v, got %v", want, res.Embedded)
	}
	for i := range want {
		if res.Embedded[i] != want[i] {
			t.Errorf("expected %s, got %s", want[i], res.Embedded[i])
		}
	}

	// Pages are never saved themselves.
	if _, err := os.Stat(dir); err == nil && countFiles(t, dir) != 0 {
		t.Error("expected nothing to be written")
	}

	// FetchImage never expands.
	res = s.FetchImage(context.Background(), server.URL+"/gallery/")
	if res.Outcome != Saved {
		t.Errorf("expected FetchImage to save the page, got %s", res.Outcome)
	}
}

func TestStoreStatusFailure(t *testing.T) {
	server := imageServer{}.start(t)

	dir := filepath.Join(t.TempDir(), "out")
	s := NewStore(dir, Options{})

	res := s.Fetch(context.Background(), server.URL+"/missing.png")
	if res.Outcome != Failed {
		t.Fatalf("expected failed, got %s", res.Outcome)
	}
	if res.Err.Kind != KindStatus {
		t.Errorf("expected KindStatus, got %s", res.Err.Kind)
	}
	if _, err := os.Stat(dir); err == nil {
		t.Error("expected output directory not to be created")
	}
}

func TestStoreTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	s := NewStore(t.TempDir(), Options{Timeout: 50 * time.Millisecond})

	res := s.Fetch(context.Background(), server.URL+"/slow.png")
	if res.Outcome != Failed {
		t.Fatalf("expected failed, got %s", res.Outcome)
	}
	if res.Err.Kind != KindTimeout {
		t.Errorf("expected KindTimeout, got %s (%v)", res.Err.Kind, res.Err)
	}
}

func TestStorePermissionFailure(t *testing.T) {
	if runtime.GOOS == "windows" || os.Getuid() == 0 {
		t.Skip("permission bits not enforced")
	}

	server := imageServer{
		"/cat.png": {"image/png", "B1"},
	}.start(t)

	dir := t.TempDir()
	if err := os.Chmod(dir, 0555); err != nil {
		t.Fatalf("Chmod: %v", err)
	}
	defer os.Chmod(dir, 0755)

	s := NewStore(dir, Options{})

	res := s.Fetch(context.Background(), server.URL+"/cat.png")
	if res.Outcome != Failed {
		t.Fatalf("expected failed, got %s", res.Outcome)
	}
	if res.Err.Kind != KindPermission {
		t.Errorf("expected KindPermission, got %s (%v)", res.Err.Kind, res.Err)
	}
}

func TestStoreKeepsLongNames(t *testing.T) {
	names := []string{
		strings.Repeat("a", 150) + ".png",
		strings.Repeat("b", 95) + ".x.y.jpeg",
	}

	server := imageServer{
		"/" + names[0]: {"image/png", "long one"},
		"/" + names[1]: {"image/jpeg", "long two"},
	}.start(t)

	s := NewStore(t.TempDir(), Options{})

	for _, name := range names {
		res := s.Fetch(context.Background(), server.URL+"/"+name)
		if res.Outcome != Saved {
			t.Fatalf("expected saved, got %s (err=%v)", res.Outcome, res.Err)
		}
		if filepath.Base(res.Path) != name {
			t.Errorf("expected %d byte name to be kept, got %q", len(name), filepath.Base(res.Path))
		}
	}
}

type panickingTransport struct{}

func (panickingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	panic("transport exploded")
}

func TestStoreRecoversPanic(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir, Options{
		HTTPClient: &http.Client{Transport: panickingTransport{}},
	})

	res := s.Fetch(context.Background(), "http://example.invalid/cat.png")
	if res.Outcome != Failed {
		t.Fatalf("expected failed, got %s", res.Outcome)
	}
	if res.Err == nil || res.Err.Kind != KindUnexpected {
		t.Fatalf("expected KindUnexpected, got %v", res.Err)
	}
	if !strings.Contains(res.Err.Error(), "transport exploded") {
		t.Errorf("expected panic value in error, got %v", res.Err)
	}
	if countFiles(t, dir) != 0 {
		t.Error("expected nothing to be written")
	}
}
