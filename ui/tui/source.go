package tui

import (
	"context"
	"io"

	"github.com/drake/tusk/api"
)

// Source supplies the home timeline and publishes statuses.
type Source interface {
	// Newest returns the first page of the timeline, newest first, and
	// restarts paging from there.
	Newest(ctx context.Context) ([]api.Status, error)
	// Older returns the page after the last one returned. It returns
	// io.EOF when there are no more pages.
	Older(ctx context.Context) ([]api.Status, error)
	Post(ctx context.Context, p api.StatusParams) (*api.Status, error)
}

type clientSource struct {
	client *api.Client
	pages  *api.Pages
}

// NewSource returns a Source backed by the API client.
func NewSource(c *api.Client) Source {
	return &clientSource{client: c}
}

func (s *clientSource) Newest(ctx context.Context) ([]api.Status, error) {
	s.pages = s.client.TimelinePages()
	return s.pages.Next(ctx)
}

func (s *clientSource) Older(ctx context.Context) ([]api.Status, error) {
	if s.pages == nil || !s.pages.More() {
		return nil, io.EOF
	}
	return s.pages.Next(ctx)
}

func (s *clientSource) Post(ctx context.Context, p api.StatusParams) (*api.Status, error) {
	return s.client.PostStatus(ctx, p)
}
