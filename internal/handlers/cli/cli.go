// Package cli is the command-line front-end of the peg-vault controller. It
// only reads the session store and invokes manager/client operations; every
// state machine lives in the services it wraps.
package cli

import (
	"context"
	"os"

	"github.com/gabapcia/pegvault/internal/notify"
	"github.com/gabapcia/pegvault/internal/session"
	"github.com/gabapcia/pegvault/internal/vaultclient"
	"github.com/gabapcia/pegvault/internal/walletsession"

	"github.com/urfave/cli/v3"
)

// Run initializes and executes the pegvault CLI application.
//
// It registers all available commands:
//
//   - `run`: restores the wallet session and keeps vault state polling until interrupted.
//   - `connect` / `disconnect`: wallet session lifecycle.
//   - `switch-network`: requests a switch to the target network.
//   - `status`: prints the current session snapshot.
//   - `subscribe` / `redeem`: the two vault write operations.
func Run(ctx context.Context, ws walletsession.Service, vc vaultclient.Service, store *session.Store, relay *notify.Relay, network walletsession.NetworkDescriptor) error {
	app := &cli.Command{
		EnableShellCompletion: true,
		Name:                  "pegvault",
		Description:           "Command-line client for the peg-vault contract: manage the wallet session, deposit the native asset and redeem the receipt asset.",
		Usage:                 "pegvault [command] [flags]",
		Commands: []*cli.Command{
			runCommand(ws, vc, store, relay, network),
			connectCommand(ws, store, relay, network),
			disconnectCommand(ws, store, relay, network),
			switchNetworkCommand(ws, store, relay, network),
			statusCommand(ws, vc, store, network),
			subscribeCommand(ws, vc, store, relay, network),
			redeemCommand(ws, vc, store, relay, network),
		},
	}

	return app.Run(ctx, os.Args)
}
