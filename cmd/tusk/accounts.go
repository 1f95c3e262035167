package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drake/tusk/api"
)

// accountAction is a relationship change applied to an account ID.
type accountAction struct {
	use  string
	verb string
	run  func(*api.Client, context.Context, string) (*api.Relationship, error)
}

var accountActions = []accountAction{
	{"follow", "Followed", (*api.Client).Follow},
	{"unfollow", "Unfollowed", (*api.Client).Unfollow},
	{"mute", "Muted", (*api.Client).Mute},
	{"unmute", "Unmuted", (*api.Client).Unmute},
	{"block", "Blocked", (*api.Client).Block},
	{"unblock", "Unblocked", (*api.Client).Unblock},
}

var instanceCmd = &cobra.Command{
	Use:   "instance [domain]",
	Short: "Show information about an instance",
	Long:  "Shows the active account's instance, or the given domain.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInstance,
}

func init() {
	for _, a := range accountActions {
		rootCmd.AddCommand(&cobra.Command{
			Use:   a.use + " <account-id>",
			Short: strings.ToUpper(a.use[:1]) + a.use[1:] + " an account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				client, _, err := activeClient()
				if err != nil {
					return err
				}
				rel, err := a.run(client, cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", a.verb, rel.ID)
				return nil
			},
		})
	}
	rootCmd.AddCommand(instanceCmd)
}

func runInstance(cmd *cobra.Command, args []string) error {
	var (
		client *api.Client
		domain string
	)
	if len(args) == 1 {
		domain = hostOf(baseURL(args[0]))
		client = newClient(baseURL(args[0]))
	} else {
		c, user, err := activeClient()
		if err != nil {
			return err
		}
		client, domain = c, user.Instance
	}

	inst, err := client.Instance(cmd.Context(), domain)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n%s\n\n", inst.Title, inst.URI)
	if inst.ShortDescription != "" {
		fmt.Fprintf(out, "%s\n\n", inst.ShortDescription)
	}
	fmt.Fprintf(out, "Running Mastodon %s\n", inst.Version)
	fmt.Fprintf(out, "%d users, %d statuses, %d known domains\n",
		inst.Stats.UserCount, inst.Stats.StatusCount, inst.Stats.DomainCount)
	if inst.Email != "" {
		fmt.Fprintf(out, "Contact: %s\n", inst.Email)
	}
	return nil
}
