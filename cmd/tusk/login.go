package main

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drake/tusk/api"
	"github.com/drake/tusk/config"
)

var (
	loginPassword bool
	loginUsername string
)

var loginCmd = &cobra.Command{
	Use:   "login <instance>",
	Short: "Log in to an instance",
	Long: `Registers tusk with the instance if needed and logs in. By default a
browser URL is printed; open it, authorize tusk and paste the code shown.
With --password the email and password are read from the terminal
instead, which not every server allows.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogin,
}

var activateCmd = &cobra.Command{
	Use:   "activate <user@instance>",
	Short: "Switch to another logged-in account",
	Args:  cobra.ExactArgs(1),
	RunE:  runActivate,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the active account",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

func init() {
	loginCmd.Flags().BoolVar(&loginPassword, "password", false, "Log in with email and password")
	loginCmd.Flags().StringVar(&loginUsername, "email", "", "Email for --password (prompted when empty)")
	rootCmd.AddCommand(loginCmd, activateCmd, whoamiCmd)
}

// baseURL turns "mastodon.social" into "https://mastodon.social".
func baseURL(instance string) string {
	instance = strings.TrimRight(strings.TrimSpace(instance), "/")
	if strings.Contains(instance, "://") {
		return instance
	}
	return "https://" + instance
}

func hostOf(base string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	return u.Host
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	fmt.Fprint(out, label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read %s: %w", strings.TrimSuffix(label, ": "), err)
	}
	return strings.TrimSpace(line), nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	in := bufio.NewReader(cmd.InOrStdin())

	path := config.CredentialsFile()
	creds, err := config.LoadCredentials(path)
	if err != nil {
		return err
	}

	client := newClient(baseURL(args[0]))
	app, ok := creds.App(hostOf(client.BaseURL()))
	if !ok {
		fmt.Fprintf(out, "Registering tusk with %s\n", client.BaseURL())
		registered, err := client.CreateApp(ctx)
		if err != nil {
			return fmt.Errorf("failed to register app: %w", err)
		}
		app = *registered
		creds.AddApp(app)
		if err := creds.Save(path); err != nil {
			return err
		}
	}

	var tok *api.Token
	if loginPassword {
		email := loginUsername
		if email == "" {
			if email, err = prompt(in, out, "Email: "); err != nil {
				return err
			}
		}
		password, err := prompt(in, out, "Password: ")
		if err != nil {
			return err
		}
		tok, err = client.Login(ctx, &app, email, password)
		if err != nil {
			return err
		}
	} else {
		fmt.Fprintf(out, "Open this URL and authorize tusk:\n\n  %s\n\n", api.BrowserLoginURL(&app))
		code, err := prompt(in, out, "Authorization code: ")
		if err != nil {
			return err
		}
		tok, err = client.RequestAccessToken(ctx, &app, code)
		if err != nil {
			return err
		}
	}

	authed := newClient(app.BaseURL, api.WithToken(tok.AccessToken))
	acct, err := authed.VerifyCredentials(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify login: %w", err)
	}

	user := config.User{Instance: app.Instance, Username: acct.Username, AccessToken: tok.AccessToken}
	creds.AddUser(user)
	if err := creds.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Logged in as @%s\n", user.Key())
	return nil
}

func runActivate(cmd *cobra.Command, args []string) error {
	path := config.CredentialsFile()
	creds, err := config.LoadCredentials(path)
	if err != nil {
		return err
	}
	if err := creds.Activate(strings.TrimPrefix(args[0], "@")); err != nil {
		return fmt.Errorf("%w (known: %s)", err, strings.Join(creds.UserKeys(), ", "))
	}
	if err := creds.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Active account: @%s\n", creds.ActiveUser)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	client, user, err := activeClient()
	if err != nil {
		return err
	}
	acct, err := client.VerifyCredentials(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "@%s  %s\n", user.Key(), acct.Name())
	fmt.Fprintf(out, "%d statuses, %d following, %d followers\n", acct.StatusesCount, acct.FollowingCount, acct.FollowersCount)
	return nil
}
