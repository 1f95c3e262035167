package buffer

import "log/slog"

// Unbounded connects a producer that must never block to a slower
// consumer. Items written to in come out of out in order. Up to limit
// items are held in between; past that the oldest queued item is dropped
// and handed to onDrop, which may be nil. Closing in flushes the queue and
// then closes out.
//
//	in, out := buffer.Unbounded[string](16, 1024, nil, logger)
//	in <- "https://example.org/emoji.png"
//	url := <-out
func Unbounded[T any](capacity, limit int, onDrop func(T), logger *slog.Logger) (chan<- T, <-chan T) {
	if logger == nil {
		logger = slog.Default()
	}
	limit = max(limit, 1)
	capacity = min(max(capacity, 0), limit)
	if onDrop == nil {
		onDrop = func(T) {}
	}
	in := make(chan T, 10)
	out := make(chan T, 10)
	go pump(in, out, make([]T, 0, capacity), limit, onDrop, logger)
	return in, out
}

func pump[T any](in <-chan T, out chan<- T, queue []T, limit int, onDrop func(T), logger *slog.Logger) {
	defer close(out)
	for {
		// A nil send channel disables that select case while the queue is empty.
		var (
			head T
			send chan<- T
		)
		if len(queue) > 0 {
			head, send = queue[0], out
		}

		select {
		case v, ok := <-in:
			if !ok {
				for _, rest := range queue {
					out <- rest
				}
				return
			}
			if len(queue) >= limit {
				logger.Warn("queue full, dropping oldest", "limit", limit)
				onDrop(queue[0])
				queue = queue[1:]
			}
			queue = append(queue, v)
		case send <- head:
			queue = queue[1:]
		}
	}
}
