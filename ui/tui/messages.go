package tui

import "github.com/drake/tusk/api"

// timelineMsg carries a fetched page, newest first.
type timelineMsg struct {
	statuses []api.Status
	older    bool
	err      error
}

// postedMsg reports the result of publishing a status.
type postedMsg struct {
	status *api.Status
	err    error
}

// imageLoadedMsg names an image URL that is now cached.
type imageLoadedMsg string

// notifyMsg shows a message in the status bar.
type notifyMsg string
