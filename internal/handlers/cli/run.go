package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gabapcia/pegvault/internal/notify"
	"github.com/gabapcia/pegvault/internal/session"
	"github.com/gabapcia/pegvault/internal/vaultclient"
	"github.com/gabapcia/pegvault/internal/walletsession"

	"github.com/urfave/cli/v3"
)

// runCommand returns the long-running CLI command: it restores the wallet
// session passively, watches provider events and keeps vault reads polling
// until the process is interrupted.
//
// Usage example:
//
//	pegvault run
func runCommand(ws walletsession.Service, vc vaultclient.Service, store *session.Store, relay *notify.Relay, network walletsession.NetworkDescriptor) *cli.Command {
	return &cli.Command{
		Name:        "run",
		Description: "Restores the wallet session, follows provider account and chain changes and polls vault state until interrupted.",
		Usage:       "Runs the controller until SIGINT or SIGTERM.",
		Action: func(ctx context.Context, c *cli.Command) error {
			render := newRenderer(store, relay, network)
			unwatch := render.watch()
			defer unwatch()

			ws.EnsureSession(ctx)

			stop, err := ws.Watch(ctx)
			if err != nil {
				return err
			}
			defer stop()

			if err := vc.Start(ctx); err != nil {
				return err
			}
			defer vc.Close()

			printStatus(store.Snapshot(), network)

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			<-quit

			fmt.Println("shutting down")
			return nil
		},
	}
}
