package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"

	"github.com/drake/tusk/api"
)

// ErrNotLoggedIn is returned by Active when no account is active.
var ErrNotLoggedIn = errors.New("not logged in, run `tusk login <instance>` first")

// User is a logged-in account.
type User struct {
	Instance    string `toml:"instance"`
	Username    string `toml:"username"`
	AccessToken string `toml:"access_token"`
}

// Key identifies the user in the credentials file.
func (u User) Key() string { return u.Username + "@" + u.Instance }

// Credentials holds registered apps, keyed by instance, and logged-in
// users, keyed by username@instance.
type Credentials struct {
	ActiveUser string             `toml:"active_user"`
	Apps       map[string]api.App `toml:"apps"`
	Users      map[string]User    `toml:"users"`
}

// LoadCredentials reads the credentials file at path. A missing file
// yields empty credentials.
func LoadCredentials(path string) (*Credentials, error) {
	c := &Credentials{}
	if _, err := toml.DecodeFile(path, c); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if c.Apps == nil {
		c.Apps = make(map[string]api.App)
	}
	if c.Users == nil {
		c.Users = make(map[string]User)
	}
	return c, nil
}

// Save writes the credentials to path, readable by the owner only.
func (c *Credentials) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".credentials-*.toml")
	if err != nil {
		return fmt.Errorf("failed to create credentials file: %w", err)
	}
	defer os.Remove(tmp.Name())

	fmt.Fprintln(tmp, "# tusk credentials, managed by `tusk login`")
	if err := toml.NewEncoder(tmp).Encode(c); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// AddApp records the app registered with an instance.
func (c *Credentials) AddApp(app api.App) {
	c.Apps[app.Instance] = app
}

// App returns the app registered with instance.
func (c *Credentials) App(instance string) (api.App, bool) {
	app, ok := c.Apps[instance]
	return app, ok
}

// AddUser records u and makes it the active user.
func (c *Credentials) AddUser(u User) {
	c.Users[u.Key()] = u
	c.ActiveUser = u.Key()
}

// Activate switches the active user.
func (c *Credentials) Activate(key string) error {
	if _, ok := c.Users[key]; !ok {
		return fmt.Errorf("unknown user %q", key)
	}
	c.ActiveUser = key
	return nil
}

// Active returns the active user and the app of its instance.
func (c *Credentials) Active() (User, api.App, error) {
	u, ok := c.Users[c.ActiveUser]
	if !ok {
		return User{}, api.App{}, ErrNotLoggedIn
	}
	app, ok := c.Apps[u.Instance]
	if !ok {
		return User{}, api.App{}, fmt.Errorf("no app registered for %s, log in again", u.Instance)
	}
	return u, app, nil
}

// UserKeys returns the stored users, sorted.
func (c *Credentials) UserKeys() []string {
	keys := make([]string, 0, len(c.Users))
	for k := range c.Users {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
