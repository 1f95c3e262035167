package images

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/singleflight"
)

// DefaultMaxBytes caps the size of a fetched image.
const DefaultMaxBytes = 4 << 20

var ErrTooLarge = errors.New("image exceeds size limit")

// Stats holds loader counters.
type Stats struct {
	Fetched  int64
	Failed   int64
	Bytes    int64
	Cached   int
	InFlight int
}

// Loader resolves image URLs through a Cache.
type Loader struct {
	client   *http.Client
	cache    *Cache
	maxBytes int64
	logger   *slog.Logger

	group    singleflight.Group
	inflight atomic.Int32

	fetched atomic.Int64
	failed  atomic.Int64
	bytes   atomic.Int64
}

// Option configures a Loader.
type Option func(*Loader)

// WithHTTPClient sets the client used for fetching.
func WithHTTPClient(c *http.Client) Option {
	return func(l *Loader) { l.client = c }
}

// WithMaxBytes sets the largest response body accepted.
func WithMaxBytes(n int64) Option {
	return func(l *Loader) { l.maxBytes = n }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader backed by cache.
func NewLoader(cache *Cache, opts ...Option) *Loader {
	l := &Loader{
		client:   &http.Client{Timeout: 15 * time.Second},
		cache:    cache,
		maxBytes: DefaultMaxBytes,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Cached returns the image for url if it has already been loaded. It never
// blocks on I/O.
func (l *Loader) Cached(url string) (image.Image, bool) {
	return l.cache.Get(url)
}

// Resolve returns the image for url, fetching and decoding it on a cache
// miss. Concurrent calls for the same URL share one fetch; a caller whose
// ctx ends stops waiting without cancelling it.
func (l *Loader) Resolve(ctx context.Context, url string) (image.Image, error) {
	if img, ok := l.cache.Get(url); ok {
		return img, nil
	}

	ch := l.group.DoChan(url, func() (any, error) {
		l.inflight.Add(1)
		defer l.inflight.Add(-1)

		// Callers share the fetch, so one of them giving up must not fail
		// the rest. The HTTP client timeout still bounds it.
		img, err := l.fetch(context.WithoutCancel(ctx), url)
		if err != nil {
			l.failed.Add(1)
			l.logger.Debug("image fetch failed", "url", url, "error", err)
			return nil, err
		}
		l.cache.Add(url, img)
		l.fetched.Add(1)
		return img, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(image.Image), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (l *Loader) fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: %s", url, resp.Status)
	}

	body := &countingReader{r: io.LimitReader(resp.Body, l.maxBytes+1)}
	img, _, err := image.Decode(body)
	l.bytes.Add(body.n)
	if body.n > l.maxBytes {
		return nil, ErrTooLarge
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return img, nil
}

// Stats returns a snapshot of the loader counters.
func (l *Loader) Stats() Stats {
	return Stats{
		Fetched:  l.fetched.Load(),
		Failed:   l.failed.Load(),
		Bytes:    l.bytes.Load(),
		Cached:   l.cache.Len(),
		InFlight: int(l.inflight.Load()),
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Gray returns a grayscale copy of img.
func Gray(img image.Image) image.Image {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := img.At(x, y).RGBA()
			// ITU-R 601 luma on premultiplied 16-bit channels
			lum := (19595*r + 38470*g + 7471*bl + 1<<15) >> 16
			if a > 0 {
				lum = lum * 0xffff / a
			}
			i := out.PixOffset(x, y)
			out.Pix[i+0] = uint8(lum >> 8)
			out.Pix[i+1] = uint8(lum >> 8)
			out.Pix[i+2] = uint8(lum >> 8)
			out.Pix[i+3] = uint8(a >> 8)
		}
	}
	return out
}

// Scale resizes img to exactly w by h pixels.
func Scale(img image.Image, w, h int) *image.NRGBA {
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
