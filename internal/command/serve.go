package command

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/adamavenir/branch/internal/server"
	"github.com/adamavenir/branch/internal/store"
)

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the branch server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := server.LoadConfig()
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Addr = addr
			}
			if dbPath, _ := cmd.Flags().GetString("db"); dbPath != "" {
				cfg.DBPath = dbPath
			}

			log := slog.New(slog.NewTextHandler(os.Stderr, nil))

			db, err := store.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(cfg, db, log).ListenAndServe(ctx)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default from BRANCH_ADDR)")
	cmd.Flags().String("db", "", "sqlite database path (default from BRANCH_DB)")
	return cmd
}
