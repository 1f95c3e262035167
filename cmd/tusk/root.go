package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/drake/tusk/api"
	"github.com/drake/tusk/config"
	"github.com/drake/tusk/debug"
	"github.com/drake/tusk/internal/logger"
	"github.com/drake/tusk/ui/tui"
)

var debugMode bool

var rootCmd = &cobra.Command{
	Use:   "tusk",
	Short: "Terminal client for Mastodon",
	Long: `tusk shows your home timeline in the terminal, with custom emoji drawn
inline. Run "tusk login <instance>" first. Key bindings, colours and
filters are configured in init.lua in the config directory.`,
	Args:              cobra.NoArgs,
	RunE:              runTUI,
	PersistentPreRunE: setup,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging and periodic stats")
}

// Execute runs the root command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer logger.Close()
	return rootCmd.ExecuteContext(ctx)
}

// setup opens the log file. The terminal belongs to the TUI, so nothing is
// logged to stderr.
func setup(cmd *cobra.Command, args []string) error {
	if debugMode || debug.Enabled() {
		logger.SetDebug(true)
		os.Setenv("TUSK_DEBUG", "1")
	}
	if _, err := logger.Init(config.LogFile()); err != nil {
		return fmt.Errorf("error opening log: %w", err)
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	client, user, err := activeClient()
	if err != nil {
		return err
	}

	ui, err := tui.NewBubbleTeaUI(ctx, tui.Config{
		Source:   tui.NewSource(client),
		Account:  user.Key(),
		InitFile: config.InitFile(),
		Logger:   slog.Default(),
	})
	if err != nil {
		return fmt.Errorf("error starting UI: %w", err)
	}

	debug.NewMonitor(ctx, debug.Sources{
		API:      client.Stats,
		Images:   ui.ImageStats,
		Prefetch: ui.PrefetchPending,
	}, slog.Default()).Start()

	go func() {
		<-ctx.Done()
		ui.Quit()
	}()

	if err := ui.Run(); err != nil {
		return fmt.Errorf("error running UI: %w", err)
	}
	return nil
}

// newClient creates an API client that logs through the default logger.
func newClient(baseURL string, opts ...api.Option) *api.Client {
	return api.NewClient(baseURL, append([]api.Option{api.WithLogger(slog.Default())}, opts...)...)
}

// activeClient returns a client authenticated as the active user.
func activeClient() (*api.Client, config.User, error) {
	creds, err := config.LoadCredentials(config.CredentialsFile())
	if err != nil {
		return nil, config.User{}, err
	}
	user, app, err := creds.Active()
	if err != nil {
		return nil, config.User{}, err
	}
	return newClient(app.BaseURL, api.WithToken(user.AccessToken)), user, nil
}
