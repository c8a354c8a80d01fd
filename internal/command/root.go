// Package command wires the branch CLI: the server, the chat TUI, and the
// account/lobby commands around them.
package command

import (
	"os"

	"github.com/spf13/cobra"
)

const AppName = "branch"

// Version is overwritten at build time using -ldflags.
var Version = "dev"

func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:           AppName,
		Short:         "Branch - threaded discussion over websockets",
		Long:          "Branch is a threaded discussion board with a terminal client.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.Version = version
	cmd.SetVersionTemplate(AppName + " version {{.Version}}\n")
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)

	cmd.PersistentFlags().String("server", "", "server URL (overrides saved config)")

	cmd.AddCommand(
		NewServeCmd(),
		NewSignupCmd(),
		NewLoginCmd(),
		NewLogoutCmd(),
		NewTopicsCmd(),
		NewChatCmd(),
	)

	return cmd
}

func Execute() error {
	return NewRootCmd(Version).Execute()
}
