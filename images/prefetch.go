package images

import (
	"context"
	"log/slog"
	"sync"

	"github.com/drake/tusk/internal/buffer"
)

// Prefetcher loads images in the background so that widgets can pick them
// up from the cache on a later render.
type Prefetcher struct {
	loader *Loader
	logger *slog.Logger

	in     chan<- string
	loaded chan string

	// send guards in against Close.
	send   sync.RWMutex
	closed bool

	mu      sync.Mutex
	pending map[string]bool

	wg sync.WaitGroup
}

// queueLimit bounds the URLs waiting for a worker. Past it the oldest
// request is forgotten and may be made again.
const queueLimit = 4096

// NewPrefetcher starts workers goroutines that resolve requested URLs
// until ctx is cancelled or Close is called.
func NewPrefetcher(ctx context.Context, loader *Loader, workers int, logger *slog.Logger) *Prefetcher {
	return newPrefetcher(ctx, loader, workers, queueLimit, logger)
}

func newPrefetcher(ctx context.Context, loader *Loader, workers, limit int, logger *slog.Logger) *Prefetcher {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	p := &Prefetcher{
		loader:  loader,
		logger:  logger,
		loaded:  make(chan string, 64),
		pending: make(map[string]bool),
	}
	in, out := buffer.Unbounded(64, limit, p.forget, logger)
	p.in = in

	for range workers {
		p.wg.Add(1)
		go p.work(ctx, out)
	}
	go func() {
		p.wg.Wait()
		close(p.loaded)
	}()
	return p
}

// Request queues url unless it is cached or already queued.
func (p *Prefetcher) Request(url string) {
	if url == "" {
		return
	}
	if _, ok := p.loader.Cached(url); ok {
		return
	}
	p.send.RLock()
	defer p.send.RUnlock()
	if p.closed {
		return
	}

	p.mu.Lock()
	queued := p.pending[url]
	p.pending[url] = true
	p.mu.Unlock()
	if !queued {
		p.in <- url
	}
}

// forget clears url so that a later Request queues it again.
func (p *Prefetcher) forget(url string) {
	p.mu.Lock()
	delete(p.pending, url)
	p.mu.Unlock()
}

// Loaded delivers each URL once its image has entered the cache. It is
// closed when the workers exit.
func (p *Prefetcher) Loaded() <-chan string { return p.loaded }

// Pending returns the number of URLs queued or being fetched.
func (p *Prefetcher) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Close stops accepting requests. Queued URLs are still fetched unless
// the context is cancelled.
func (p *Prefetcher) Close() {
	p.send.Lock()
	defer p.send.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	close(p.in)
}

func (p *Prefetcher) work(ctx context.Context, urls <-chan string) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case url, ok := <-urls:
			if !ok {
				return
			}
			_, err := p.loader.Resolve(ctx, url)
			p.forget(url)

			if err != nil {
				p.logger.Debug("prefetch failed", "url", url, "error", err)
				continue
			}
			select {
			case p.loaded <- url:
			case <-ctx.Done():
				return
			}
		}
	}
}
