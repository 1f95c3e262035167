package config

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/drake/tusk/api"
)

func TestDirRespectsXDG(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("APPDATA is used on windows")
	}
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got, want := Dir(), filepath.Join("/tmp/xdg", "tusk"); got != want {
		t.Fatalf("Dir() = %q, want %q", got, want)
	}
	if got, want := CredentialsFile(), filepath.Join("/tmp/xdg", "tusk", "credentials.toml"); got != want {
		t.Fatalf("CredentialsFile() = %q, want %q", got, want)
	}
}

func TestLoadMissingFile(t *testing.T) {
	c, err := LoadCredentials(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	if _, _, err := c.Active(); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("Active() error = %v, want ErrNotLoggedIn", err)
	}
}

func TestCredentialsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "credentials.toml")

	c, _ := LoadCredentials(path)
	c.AddApp(api.App{Instance: "x.example", BaseURL: "https://x.example", ClientID: "cid", ClientSecret: "sec"})
	c.AddUser(User{Instance: "x.example", Username: "alice", AccessToken: "tok"})
	c.AddUser(User{Instance: "x.example", Username: "bob", AccessToken: "tok2"})
	if err := c.Activate("alice@x.example"); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := c.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %o, want 600", perm)
	}

	loaded, err := LoadCredentials(path)
	if err != nil {
		t.Fatalf("LoadCredentials: %v", err)
	}
	u, app, err := loaded.Active()
	if err != nil {
		t.Fatalf("Active: %v", err)
	}
	if u.Username != "alice" || u.AccessToken != "tok" {
		t.Errorf("active user = %+v", u)
	}
	if app.BaseURL != "https://x.example" || app.ClientSecret != "sec" {
		t.Errorf("app = %+v", app)
	}
	if keys := loaded.UserKeys(); len(keys) != 2 || keys[0] != "alice@x.example" || keys[1] != "bob@x.example" {
		t.Errorf("UserKeys() = %v", keys)
	}
}

func TestActivateUnknownUser(t *testing.T) {
	c, _ := LoadCredentials(filepath.Join(t.TempDir(), "c.toml"))
	if err := c.Activate("ghost@nowhere"); err == nil {
		t.Fatal("expected error")
	}
}

func TestActiveWithoutApp(t *testing.T) {
	c, _ := LoadCredentials(filepath.Join(t.TempDir(), "c.toml"))
	c.AddUser(User{Instance: "y.example", Username: "carol"})
	if _, _, err := c.Active(); err == nil || errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("Active() error = %v, want missing app error", err)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	os.WriteFile(path, []byte("apps = [[["), 0600)
	if _, err := LoadCredentials(path); err == nil {
		t.Fatal("expected decode error")
	}
}
