package command

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/adamavenir/branch/internal/api"
	"github.com/adamavenir/branch/internal/readstate"
	"github.com/adamavenir/branch/internal/types"
)

// NewTopicsCmd creates the topics command.
func NewTopicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List topics, newest activity first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := requireSession(cmd)
			if err != nil {
				return err
			}
			client, err := api.NewClient(saved.ServerURL, saved.Token)
			if err != nil {
				return err
			}
			topics, err := client.ListTopics(cmd.Context())
			if err != nil {
				return err
			}
			if len(topics) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "no topics yet, create one with `%s topics new <title>`\n", AppName)
				return nil
			}

			path, err := readstate.DefaultPath()
			if err != nil {
				return err
			}
			seen := readstate.Load(path)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			for _, topic := range topics {
				badge := " "
				if hasUnread(seen, topic) {
					badge = "●"
				}
				fmt.Fprintf(w, "%s\t#%d\t%s\t%s\t@%s\n",
					badge, topic.ID, topic.Title, formatActivity(topic.LastActivity), topic.CreatedBy)
			}
			return w.Flush()
		},
	}

	cmd.AddCommand(newTopicsNewCmd())
	return cmd
}

func newTopicsNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new <title>",
		Short: "Create a topic",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := requireSession(cmd)
			if err != nil {
				return err
			}
			client, err := api.NewClient(saved.ServerURL, saved.Token)
			if err != nil {
				return err
			}
			topic, err := client.CreateTopic(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created topic #%d: %s\n", topic.ID, topic.Title)
			return nil
		},
	}
}

// hasUnread compares the topic's last activity with the locally stored
// last-seen boundary. A topic never opened counts as unread.
func hasUnread(seen *readstate.Store, topic types.Topic) bool {
	activity, err := time.Parse(time.RFC3339, topic.LastActivity)
	if err != nil {
		return false
	}
	boundary, ok := seen.Get(topic.ID)
	if !ok {
		return true
	}
	return activity.After(boundary)
}

func formatActivity(raw string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return t.Local().Format("Jan 2 15:04")
}
