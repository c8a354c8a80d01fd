package command

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/adamavenir/branch/internal/api"
	"github.com/adamavenir/branch/internal/config"
)

// NewSignupCmd creates the signup command.
func NewSignupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "signup <username>",
		Short: "Register a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serverURL, err := resolveServerURL(cmd)
			if err != nil {
				return err
			}
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}

			client, err := api.NewClient(serverURL, "")
			if err != nil {
				return err
			}
			user, err := client.Signup(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "account @%s created, now log in\n", user.Username)
			return nil
		},
	}
}

// NewLoginCmd creates the login command.
func NewLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and save the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serverURL, err := resolveServerURL(cmd)
			if err != nil {
				return err
			}
			password, err := readPassword("Password: ")
			if err != nil {
				return err
			}

			client, err := api.NewClient(serverURL, "")
			if err != nil {
				return err
			}
			result, err := client.Login(cmd.Context(), args[0], password)
			if err != nil {
				return err
			}

			saved := config.Client{
				ServerURL: serverURL,
				Token:     result.Token,
				Username:  result.User.Username,
			}
			if err := config.Save(saved); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as @%s\n", result.User.Username)
			return nil
		},
	}
}

// NewLogoutCmd creates the logout command.
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := config.Load()
			if err != nil {
				return err
			}
			if saved.Token == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
				return nil
			}

			client, err := api.NewClient(saved.ServerURL, saved.Token)
			if err != nil {
				return err
			}
			// Best effort: drop the local session even if the server is gone.
			_ = client.Logout(cmd.Context())

			saved.Token = ""
			saved.Username = ""
			if err := config.Save(saved); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "logged out")
			return nil
		},
	}
}

// resolveServerURL prefers the --server flag, then the saved config.
func resolveServerURL(cmd *cobra.Command) (string, error) {
	if flag, _ := cmd.Flags().GetString("server"); flag != "" {
		return flag, nil
	}
	saved, err := config.Load()
	if err != nil {
		return "", err
	}
	return saved.ServerURL, nil
}

// requireSession loads the saved config and fails when not logged in.
func requireSession(cmd *cobra.Command) (config.Client, error) {
	saved, err := config.Load()
	if err != nil {
		return config.Client{}, err
	}
	if flag, _ := cmd.Flags().GetString("server"); flag != "" {
		saved.ServerURL = flag
	}
	if saved.Token == "" {
		return config.Client{}, fmt.Errorf("not logged in, run `%s login <username>` first", AppName)
	}
	return saved, nil
}

func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}
	// Piped input (tests, scripts) falls back to a plain line read.
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
