package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drake/tusk/api"
	"github.com/drake/tusk/richtext"
)

var (
	timelineLimit int
	renderMode    string
	textWidth     int
	searchResolve bool
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Print the home timeline",
	Args:  cobra.NoArgs,
	RunE:  runTimeline,
}

var notificationsCmd = &cobra.Command{
	Use:   "notifications",
	Short: "Print recent notifications",
	Args:  cobra.NoArgs,
	RunE:  runNotifications,
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search accounts, statuses and hashtags",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSearch,
}

func init() {
	timelineCmd.Flags().IntVarP(&timelineLimit, "limit", "n", 20, "Number of statuses")
	for _, c := range []*cobra.Command{timelineCmd, notificationsCmd} {
		c.Flags().IntVarP(&textWidth, "width", "w", 80, "Wrap width")
		c.Flags().StringVar(&renderMode, "mode", "plaintext", "Content rendering: plaintext or markdown")
	}
	searchCmd.Flags().BoolVarP(&searchResolve, "resolve", "r", false, "Resolve remote accounts")
	rootCmd.AddCommand(timelineCmd, notificationsCmd, searchCmd)
}

func runTimeline(cmd *cobra.Command, args []string) error {
	client, _, err := activeClient()
	if err != nil {
		return err
	}
	statuses, err := client.TimelineHome(cmd.Context(), timelineLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for i := range statuses {
		if err := printStatus(out, &statuses[i], renderMode, textWidth); err != nil {
			return err
		}
	}
	return nil
}

func runNotifications(cmd *cobra.Command, args []string) error {
	client, _, err := activeClient()
	if err != nil {
		return err
	}
	notes, err := client.Notifications(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, n := range notes {
		fmt.Fprintf(out, "%s  %s @%s\n", n.CreatedAt.Local().Format("Jan 02 15:04"), n.Type, n.Account.Acct)
		if n.Status != nil {
			if err := printStatus(out, n.Status, renderMode, textWidth); err != nil {
				return err
			}
		}
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	client, _, err := activeClient()
	if err != nil {
		return err
	}
	res, err := client.Search(cmd.Context(), strings.Join(args, " "), searchResolve)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(res.Accounts) > 0 {
		fmt.Fprintln(out, "Accounts:")
		for _, a := range res.Accounts {
			fmt.Fprintf(out, "  %s  @%s  %s\n", a.ID, a.Acct, a.Name())
		}
	}
	if len(res.Hashtags) > 0 {
		fmt.Fprintln(out, "Hashtags:")
		for _, t := range res.Hashtags {
			fmt.Fprintf(out, "  #%s\n", t.Name)
		}
	}
	if len(res.Statuses) > 0 {
		fmt.Fprintln(out, "Statuses:")
		for i := range res.Statuses {
			if err := printStatus(out, &res.Statuses[i], "plaintext", 80); err != nil {
				return err
			}
		}
	}
	return nil
}

// printStatus writes a status as plain text: a header line, the wrapped
// content and a blank line.
func printStatus(w io.Writer, s *api.Status, mode string, cols int) error {
	orig := s.Original()
	header := fmt.Sprintf("%s @%s", orig.Account.Name(), orig.Account.Acct)
	if orig != s {
		header += fmt.Sprintf("  (boosted by @%s)", s.Account.Acct)
	}
	if !orig.CreatedAt.IsZero() {
		header += "  " + orig.CreatedAt.Local().Format("Jan 02 15:04")
	}
	fmt.Fprintln(w, header)

	if orig.SpoilerText != "" {
		fmt.Fprintf(w, "CW: %s\n", orig.SpoilerText)
	}
	lines, err := richtext.ToText(orig.Content, cols, mode, false)
	if err != nil {
		return err
	}
	for _, l := range lines {
		fmt.Fprintln(w, l.String())
	}
	for _, a := range orig.MediaAttachments {
		fmt.Fprintf(w, "[%s] %s\n", a.Type, a.URL)
	}
	fmt.Fprintln(w)
	return nil
}
