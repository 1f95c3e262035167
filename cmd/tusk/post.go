package main

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/drake/tusk/api"
)

var (
	postVisibility string
	postMedia      []string
	postSpoiler    string
	postReplyTo    string
)

var postCmd = &cobra.Command{
	Use:   "post <text>...",
	Short: "Publish a status",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPost,
}

func init() {
	postCmd.Flags().StringVarP(&postVisibility, "visibility", "v", api.VisibilityPublic,
		"One of "+strings.Join(api.Visibilities, ", "))
	postCmd.Flags().StringArrayVarP(&postMedia, "media", "m", nil, "Attach a file (repeatable)")
	postCmd.Flags().StringVar(&postSpoiler, "spoiler", "", "Content warning; marks the status sensitive")
	postCmd.Flags().StringVar(&postReplyTo, "reply-to", "", "ID of the status to reply to")
	rootCmd.AddCommand(postCmd)
}

func runPost(cmd *cobra.Command, args []string) error {
	if !slices.Contains(api.Visibilities, postVisibility) {
		return fmt.Errorf("invalid visibility %q, want one of %s", postVisibility, strings.Join(api.Visibilities, ", "))
	}
	ctx := cmd.Context()
	client, _, err := activeClient()
	if err != nil {
		return err
	}

	params := api.StatusParams{
		Status:      strings.Join(args, " "),
		Visibility:  postVisibility,
		Sensitive:   postSpoiler != "",
		SpoilerText: postSpoiler,
		InReplyToID: postReplyTo,
	}
	for _, path := range postMedia {
		a, err := upload(cmd, client, path)
		if err != nil {
			return err
		}
		params.MediaIDs = append(params.MediaIDs, a.ID)
	}

	s, err := client.PostStatus(ctx, params)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Posted %s\n", s.URL)
	return nil
}

func upload(cmd *cobra.Command, client *api.Client, path string) (*api.Attachment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	a, err := client.UploadMedia(cmd.Context(), filepath.Base(path), f)
	if err != nil {
		return nil, fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return a, nil
}
