package command

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/adamavenir/branch/internal/chat"
	"github.com/adamavenir/branch/internal/readstate"
	"github.com/adamavenir/branch/internal/wsclient"
)

// NewChatCmd creates the chat command.
func NewChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat <topic-id>",
		Short: "Open a topic in the interactive thread view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topicID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			saved, err := requireSession(cmd)
			if err != nil {
				return err
			}

			path, err := readstate.DefaultPath()
			if err != nil {
				return err
			}

			client, ready, err := wsclient.Dial(saved.ServerURL, topicID, saved.Token)
			if err != nil {
				return err
			}

			return chat.Run(chat.Options{
				Client:    client,
				Ready:     ready,
				ReadState: readstate.Load(path),
			})
		},
	}
}
