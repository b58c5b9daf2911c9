package cli

import (
	"context"
	"fmt"

	"github.com/gabapcia/pegvault/internal/notify"
	"github.com/gabapcia/pegvault/internal/session"
	"github.com/gabapcia/pegvault/internal/vaultclient"
	"github.com/gabapcia/pegvault/internal/walletsession"

	"github.com/urfave/cli/v3"
)

// connectCommand returns a CLI command that requests wallet account access
// and populates the session.
//
// Usage example:
//
//	pegvault connect
func connectCommand(ws walletsession.Service, store *session.Store, relay *notify.Relay, network walletsession.NetworkDescriptor) *cli.Command {
	return &cli.Command{
		Name:        "connect",
		Description: "Requests account access from the wallet provider and stores the resulting session.",
		Usage:       "Connects the wallet, switching to the target network when necessary.",
		Action: func(ctx context.Context, c *cli.Command) error {
			render := newRenderer(store, relay, network)
			err := ws.Connect(ctx)
			render.flush()

			if err != nil {
				return err
			}
			printStatus(store.Snapshot(), network)
			return nil
		},
	}
}

// disconnectCommand returns a CLI command that resets the local session.
func disconnectCommand(ws walletsession.Service, store *session.Store, relay *notify.Relay, network walletsession.NetworkDescriptor) *cli.Command {
	return &cli.Command{
		Name:        "disconnect",
		Description: "Clears the local wallet session. No provider-level disconnect exists.",
		Usage:       "Resets all session state.",
		Action: func(ctx context.Context, c *cli.Command) error {
			render := newRenderer(store, relay, network)
			ws.Disconnect(ctx)
			render.flush()
			return nil
		},
	}
}

// switchNetworkCommand returns a CLI command that requests a provider switch
// to the target network, adding the chain to the wallet when unknown.
func switchNetworkCommand(ws walletsession.Service, store *session.Store, relay *notify.Relay, network walletsession.NetworkDescriptor) *cli.Command {
	return &cli.Command{
		Name:        "switch-network",
		Description: "Requests the wallet to switch to the target network, adding it first if the wallet does not know the chain.",
		Usage:       "Switches the wallet to " + network.Name + ".",
		Action: func(ctx context.Context, c *cli.Command) error {
			render := newRenderer(store, relay, network)
			ok := ws.SwitchToTargetNetwork(ctx)
			render.flush()

			if ok {
				fmt.Printf("switched to %s\n", network.Name)
			}
			return nil
		},
	}
}

// statusCommand returns a CLI command that restores the session passively,
// performs one read pass and prints the resulting snapshot.
func statusCommand(ws walletsession.Service, vc vaultclient.Service, store *session.Store, network walletsession.NetworkDescriptor) *cli.Command {
	return &cli.Command{
		Name:        "status",
		Description: "Prints the wallet session, balances, vault statistics and recent transactions.",
		Usage:       "Shows the current session state.",
		Action: func(ctx context.Context, c *cli.Command) error {
			ws.EnsureSession(ctx)
			vc.RefreshNow(ctx)

			printStatus(store.Snapshot(), network)
			return nil
		},
	}
}
