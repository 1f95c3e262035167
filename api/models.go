package api

import "time"

// App is an OAuth application registered with an instance.
type App struct {
	Instance     string `json:"-" toml:"instance"`
	BaseURL      string `json:"-" toml:"base_url"`
	ClientID     string `json:"client_id" toml:"client_id"`
	ClientSecret string `json:"client_secret" toml:"client_secret"`
}

// Token is an OAuth access token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Scope       string `json:"scope"`
	CreatedAt   int64  `json:"created_at"`
}

// Emoji is a server custom emoji.
type Emoji struct {
	Shortcode       string `json:"shortcode"`
	URL             string `json:"url"`
	StaticURL       string `json:"static_url"`
	VisibleInPicker bool   `json:"visible_in_picker"`
}

// Account is a user account.
type Account struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Acct           string    `json:"acct"`
	DisplayName    string    `json:"display_name"`
	Note           string    `json:"note"`
	URL            string    `json:"url"`
	Avatar         string    `json:"avatar"`
	AvatarStatic   string    `json:"avatar_static"`
	Bot            bool      `json:"bot"`
	Locked         bool      `json:"locked"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	StatusesCount  int       `json:"statuses_count"`
	CreatedAt      time.Time `json:"created_at"`
	Emojis         []Emoji   `json:"emojis"`
}

// Name returns the display name, or the username when it is empty.
func (a Account) Name() string {
	if a.DisplayName != "" {
		return a.DisplayName
	}
	return a.Username
}

// Attachment is an uploaded media file.
type Attachment struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	URL         string `json:"url"`
	PreviewURL  string `json:"preview_url"`
	Description string `json:"description"`
}

// Tag is a hashtag.
type Tag struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Status is a post.
type Status struct {
	ID               string       `json:"id"`
	URI              string       `json:"uri"`
	URL              string       `json:"url"`
	CreatedAt        time.Time    `json:"created_at"`
	Account          Account      `json:"account"`
	Content          string       `json:"content"`
	Visibility       string       `json:"visibility"`
	Sensitive        bool         `json:"sensitive"`
	SpoilerText      string       `json:"spoiler_text"`
	MediaAttachments []Attachment `json:"media_attachments"`
	Tags             []Tag        `json:"tags"`
	Emojis           []Emoji      `json:"emojis"`
	RepliesCount     int          `json:"replies_count"`
	ReblogsCount     int          `json:"reblogs_count"`
	FavouritesCount  int          `json:"favourites_count"`
	Favourited       bool         `json:"favourited"`
	Reblogged        bool         `json:"reblogged"`
	InReplyToID      string       `json:"in_reply_to_id"`
	Reblog           *Status      `json:"reblog"`
}

// Original returns the reblogged status, or s itself.
func (s *Status) Original() *Status {
	if s.Reblog != nil {
		return s.Reblog
	}
	return s
}

// Notification is an entry in the notifications timeline.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Account   Account   `json:"account"`
	Status    *Status   `json:"status"`
}

// Relationship is the result of an account action such as follow.
type Relationship struct {
	ID         string `json:"id"`
	Following  bool   `json:"following"`
	FollowedBy bool   `json:"followed_by"`
	Blocking   bool   `json:"blocking"`
	Muting     bool   `json:"muting"`
	Requested  bool   `json:"requested"`
}

// SearchResults holds the result of a search.
type SearchResults struct {
	Accounts []Account `json:"accounts"`
	Statuses []Status  `json:"statuses"`
	Hashtags []Tag     `json:"hashtags"`
}

// Instance describes a server.
type Instance struct {
	URI              string   `json:"uri"`
	Title            string   `json:"title"`
	ShortDescription string   `json:"short_description"`
	Description      string   `json:"description"`
	Email            string   `json:"email"`
	Version          string   `json:"version"`
	Languages        []string `json:"languages"`
	Stats            struct {
		UserCount   int `json:"user_count"`
		StatusCount int `json:"status_count"`
		DomainCount int `json:"domain_count"`
	} `json:"stats"`
	ContactAccount *Account `json:"contact_account"`
}

// Visibility values accepted by PostStatus.
const (
	VisibilityPublic   = "public"
	VisibilityUnlisted = "unlisted"
	VisibilityPrivate  = "private"
	VisibilityDirect   = "direct"
)

// Visibilities lists the visibility values in the order the compose panel
// cycles through them.
var Visibilities = []string{VisibilityPublic, VisibilityUnlisted, VisibilityPrivate, VisibilityDirect}
