package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/muesli/termenv"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			img.Set(x, y, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func newServer(t *testing.T, body []byte, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newLoader(t *testing.T, opts ...Option) *Loader {
	t.Helper()
	cache, err := NewCache(8)
	if err != nil {
		t.Fatal(err)
	}
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return NewLoader(cache, opts...)
}

func TestResolveCachesImage(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, testPNG(t), &hits)
	l := newLoader(t)
	url := srv.URL + "/blob.png"

	if _, ok := l.Cached(url); ok {
		t.Fatal("image cached before first fetch")
	}
	img, err := l.Resolve(context.Background(), url)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 4 || b.Dy() != 4 {
		t.Fatalf("bounds = %v", b)
	}
	if _, ok := l.Cached(url); !ok {
		t.Fatal("image not cached after fetch")
	}
	if _, err := l.Resolve(context.Background(), url); err != nil {
		t.Fatal(err)
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("server hit %d times, want 1", n)
	}
	if s := l.Stats(); s.Fetched != 1 || s.Cached != 1 {
		t.Fatalf("stats = %+v", s)
	}
}

func TestResolveSharesConcurrentFetches(t *testing.T) {
	var hits atomic.Int32
	body := testPNG(t)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		w.Write(body)
	}))
	defer srv.Close()

	l := newLoader(t)
	var wg sync.WaitGroup
	for range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := l.Resolve(context.Background(), srv.URL+"/a.png"); err != nil {
				t.Error(err)
			}
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := hits.Load(); n != 1 {
		t.Fatalf("server hit %d times, want 1", n)
	}
}

func TestResolveErrors(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, testPNG(t), &hits)

	l := newLoader(t)
	if _, err := l.Resolve(context.Background(), srv.URL+"/missing.png"); err == nil {
		t.Error("404 resolved")
	}
	if _, ok := l.Cached(srv.URL + "/missing.png"); ok {
		t.Error("failed fetch was cached")
	}

	small := newLoader(t, WithMaxBytes(10))
	if _, err := small.Resolve(context.Background(), srv.URL+"/big.png"); !errors.Is(err, ErrTooLarge) {
		t.Errorf("oversized body error = %v, want ErrTooLarge", err)
	}
}

func TestCacheAddKeepsFirst(t *testing.T) {
	c, err := NewCache(2)
	if err != nil {
		t.Fatal(err)
	}
	a := image.NewGray(image.Rect(0, 0, 1, 1))
	b := image.NewGray(image.Rect(0, 0, 2, 2))
	c.Add("u", a)
	c.Add("u", b)
	if got, _ := c.Get("u"); got != image.Image(a) {
		t.Error("second Add replaced the cached image")
	}
	c.Add("v", b)
	c.Add("w", b)
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
}

func TestGray(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	src.Set(0, 0, color.NRGBA{R: 255, G: 0, B: 0, A: 128})
	g := Gray(src)
	r, gr, b, a := g.At(0, 0).RGBA()
	if r != gr || gr != b {
		t.Errorf("pixel not gray: %d %d %d", r, gr, b)
	}
	if a>>8 != 128 {
		t.Errorf("alpha = %d, want 128", a>>8)
	}
}

func TestScale(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 16, 8))
	if b := Scale(src, 4, 2).Bounds(); b.Dx() != 4 || b.Dy() != 2 {
		t.Errorf("bounds = %v", b)
	}
}

func TestPrefetcherReportsLoaded(t *testing.T) {
	var hits atomic.Int32
	srv := newServer(t, testPNG(t), &hits)
	l := newLoader(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := NewPrefetcher(ctx, l, 2, slog.New(slog.NewTextHandler(io.Discard, nil)))

	url := srv.URL + "/emoji.png"
	p.Request(url)
	p.Request(url)

	select {
	case got := <-p.Loaded():
		if got != url {
			t.Fatalf("loaded %q", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("prefetch never completed")
	}
	if _, ok := l.Cached(url); !ok {
		t.Fatal("prefetched image not cached")
	}

	// Cached URLs are not fetched again.
	p.Request(url)
	p.Close()
	for range p.Loaded() {
	}
	if n := hits.Load(); n != 1 {
		t.Fatalf("server hit %d times, want 1", n)
	}
}

func TestCanRenderProfile(t *testing.T) {
	tests := []struct {
		p    termenv.Profile
		want bool
	}{
		{termenv.TrueColor, true},
		{termenv.ANSI256, true},
		{termenv.ANSI, false},
		{termenv.Ascii, false},
	}
	for _, tt := range tests {
		if got := CanRenderProfile(tt.p); got != tt.want {
			t.Errorf("CanRenderProfile(%v) = %v", tt.p, got)
		}
	}
}

func TestPrefetcherRequeuesDroppedURLs(t *testing.T) {
	body := testPNG(t)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write(body)
	}))
	defer srv.Close()
	l := newLoader(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := newPrefetcher(ctx, l, 1, 1, slog.New(slog.NewTextHandler(io.Discard, nil)))
	defer p.Close()

	const n = 40
	urls := make([]string, n)
	for i := range urls {
		urls[i] = fmt.Sprintf("%s/emoji/%d.png", srv.URL, i)
		p.Request(urls[i])
	}
	close(release)

	// The single worker is stuck on the first URL while the rest overflow
	// the queue, so some requests are dropped. None may stay pending.
	deadline := time.Now().Add(5 * time.Second)
	for p.Pending() > 0 {
		if time.Now().After(deadline) {
			t.Fatalf("%d URLs still pending", p.Pending())
		}
		time.Sleep(5 * time.Millisecond)
	}

	loaded := make(map[string]bool)
	drain := func() {
		for {
			select {
			case u := <-p.Loaded():
				loaded[u] = true
			default:
				return
			}
		}
	}
	drain()
	if len(loaded) == n {
		t.Fatal("queue never overflowed")
	}

	for _, u := range urls {
		if !loaded[u] {
			p.Request(u)
		}
	}
	for len(loaded) < n {
		select {
		case u := <-p.Loaded():
			loaded[u] = true
		case <-time.After(5 * time.Second):
			t.Fatalf("loaded %d of %d URLs after requesting again", len(loaded), n)
		}
	}
}

func TestResolveWaiterCanGiveUp(t *testing.T) {
	body := testPNG(t)
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write(body)
	}))
	defer srv.Close()
	l := newLoader(t)
	url := srv.URL + "/slow.png"

	done := make(chan error, 1)
	go func() {
		_, err := l.Resolve(context.Background(), url)
		done <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Resolve(ctx, url); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("impatient Resolve error = %v, want deadline exceeded", err)
	}
	if s := l.Stats(); s.InFlight != 1 {
		t.Fatalf("InFlight = %d, want 1", s.InFlight)
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("patient Resolve: %v", err)
	}
	if _, ok := l.Cached(url); !ok {
		t.Fatal("shared fetch was not cached")
	}
	if s := l.Stats(); s.InFlight != 0 || s.Fetched != 1 {
		t.Fatalf("stats = %+v", s)
	}
}
