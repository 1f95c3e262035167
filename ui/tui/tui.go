package tui

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/drake/tusk/images"
	"github.com/drake/tusk/lua"
	"github.com/drake/tusk/ui/style"
)

// prefetchWorkers is the number of concurrent image fetches.
const prefetchWorkers = 4

// Config configures NewBubbleTeaUI.
type Config struct {
	Source   Source
	Account  string
	InitFile string // may be empty
	Logger   *slog.Logger

	// HTTPClient fetches images. Nil uses the loader default.
	HTTPClient *http.Client
}

// BubbleTeaUI runs the timeline in a Bubble Tea program.
type BubbleTeaUI struct {
	program *tea.Program
	model   Model
	logger  *slog.Logger

	lua      *lua.Engine
	loader   *images.Loader
	prefetch *images.Prefetcher

	// Message queue - buffered channel drained by a single goroutine.
	// This decouples callers from tea.Program.Send() which can block.
	msgQueue chan tea.Msg

	// Shutdown coordination
	done     chan struct{}
	doneOnce sync.Once
}

// NewBubbleTeaUI creates the UI and loads init.lua. Errors in init.lua are
// shown in the status bar rather than returned.
func NewBubbleTeaUI(ctx context.Context, cfg Config) (*BubbleTeaUI, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	palette := style.DefaultPalette()
	host := newLuaHost(palette)
	engine := lua.NewEngine(host)
	if err := engine.Init(); err != nil {
		return nil, err
	}
	if cfg.InitFile != "" {
		if err := engine.LoadInit(cfg.InitFile); err != nil {
			logger.Warn("init.lua failed", "path", cfg.InitFile, "err", err)
			host.Notify("init.lua: " + err.Error())
		}
	}

	opts := engine.Options()
	cache, err := images.NewCache(opts.ImageCache)
	if err != nil {
		engine.Close()
		return nil, err
	}
	loaderOpts := []images.Option{images.WithLogger(logger)}
	if cfg.HTTPClient != nil {
		loaderOpts = append(loaderOpts, images.WithHTTPClient(cfg.HTTPClient))
	}
	loader := images.NewLoader(cache, loaderOpts...)
	prefetch := images.NewPrefetcher(ctx, loader, prefetchWorkers, logger)

	mc := modelConfig{
		ctx:      ctx,
		source:   cfg.Source,
		account:  cfg.Account,
		lua:      engine,
		host:     host,
		prefetch: prefetch,
		palette:  palette,
		logger:   logger,
	}
	if images.CanRender() {
		mc.images = loader
	} else {
		logger.Info("terminal cannot draw images, showing emoji shortcodes")
	}

	return &BubbleTeaUI{
		model:    newModel(mc),
		logger:   logger,
		lua:      engine,
		loader:   loader,
		prefetch: prefetch,
		msgQueue: make(chan tea.Msg, 256),
		done:     make(chan struct{}),
	}, nil
}

// send queues a message for delivery to the Bubble Tea program.
func (b *BubbleTeaUI) send(msg tea.Msg) {
	select {
	case <-b.done:
		return
	case b.msgQueue <- msg:
	}
}

// Notify shows text in the status bar.
func (b *BubbleTeaUI) Notify(text string) {
	b.send(notifyMsg(text))
}

// Run starts the TUI and blocks until exit.
func (b *BubbleTeaUI) Run() error {
	b.program = tea.NewProgram(
		b.model,
		tea.WithAltScreen(),
	)

	// Single goroutine drains message queue to Bubble Tea.
	// This can block on Send() without affecting producers.
	go func() {
		for {
			select {
			case <-b.done:
				return
			case msg, ok := <-b.msgQueue:
				if !ok {
					return
				}
				b.program.Send(msg)
			}
		}
	}()

	go func() {
		for url := range b.prefetch.Loaded() {
			b.send(imageLoadedMsg(url))
		}
	}()

	// Run blocks until quit
	_, err := b.program.Run()

	// Signal shutdown and close queue
	b.doneOnce.Do(func() {
		close(b.done)
	})
	b.prefetch.Close()
	b.lua.Close()

	return err
}

// Done returns a channel that closes when the UI exits.
func (b *BubbleTeaUI) Done() <-chan struct{} {
	return b.done
}

// Quit signals the TUI to exit.
func (b *BubbleTeaUI) Quit() {
	if b.program != nil {
		b.program.Quit()
	}
	b.doneOnce.Do(func() {
		close(b.done)
	})
}

// ImageStats reports image loader counters.
func (b *BubbleTeaUI) ImageStats() images.Stats {
	return b.loader.Stats()
}

// PrefetchPending returns the number of queued image fetches.
func (b *BubbleTeaUI) PrefetchPending() int {
	return b.prefetch.Pending()
}
