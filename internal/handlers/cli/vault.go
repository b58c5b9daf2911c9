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

// amountFlag is the decimal asset amount shared by both write commands.
var amountFlag = &cli.StringFlag{
	Name:     "amount",
	Usage:    "decimal asset amount, e.g. 1.5",
	Required: true,
}

// subscribeCommand returns a CLI command that deposits the native asset into
// the vault.
//
// Usage example:
//
//	pegvault subscribe --amount 1.5
func subscribeCommand(ws walletsession.Service, vc vaultclient.Service, store *session.Store, relay *notify.Relay, network walletsession.NetworkDescriptor) *cli.Command {
	return &cli.Command{
		Name:        "subscribe",
		Description: "Deposits the given native amount into the vault, minting receipt tokens.",
		Usage:       "Deposits native tokens into the vault.",
		Flags:       []cli.Flag{amountFlag},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runWrite(ctx, ws, store, relay, network, c.String("amount"), vc.PreviewSubscribe, vc.Subscribe)
		},
	}
}

// redeemCommand returns a CLI command that burns receipt tokens for the
// native asset.
//
// Usage example:
//
//	pegvault redeem --amount 1.5
func redeemCommand(ws walletsession.Service, vc vaultclient.Service, store *session.Store, relay *notify.Relay, network walletsession.NetworkDescriptor) *cli.Command {
	return &cli.Command{
		Name:        "redeem",
		Description: "Burns the given receipt amount, returning native tokens from the vault.",
		Usage:       "Redeems receipt tokens for native tokens.",
		Flags:       []cli.Flag{amountFlag},
		Action: func(ctx context.Context, c *cli.Command) error {
			return runWrite(ctx, ws, store, relay, network, c.String("amount"), vc.PreviewRedeem, vc.Redeem)
		},
	}
}

// runWrite establishes a wallet session, prints the contract's estimate for
// the operation and then drives it end to end, rendering notifications as
// they are produced.
func runWrite(
	ctx context.Context,
	ws walletsession.Service,
	store *session.Store,
	relay *notify.Relay,
	network walletsession.NetworkDescriptor,
	amount string,
	preview func(ctx context.Context, amount string) (string, error),
	execute func(ctx context.Context, amount string) error,
) error {
	render := newRenderer(store, relay, network)
	stop := render.watch()
	defer stop()

	ws.EnsureSession(ctx)
	if !store.Snapshot().Connected() {
		if err := ws.Connect(ctx); err != nil {
			render.flush()
			return err
		}
	}

	// Writes require the target network. A wallet on another chain gets the
	// switch flow instead of a bare failure.
	if store.Snapshot().ChainID != network.ChainID {
		if !ws.SwitchToTargetNetwork(ctx) {
			render.flush()
			return vaultclient.ErrWrongNetwork
		}
	}

	if estimate, err := preview(ctx, amount); err == nil {
		fmt.Printf("estimated return: %s\n", estimate)
	}

	err := execute(ctx, amount)
	render.flush()
	if err != nil {
		return err
	}

	if txs := store.Snapshot().Transactions; len(txs) > 0 {
		fmt.Printf("transaction %s confirmed\n", txs[0].ChainHash)
		fmt.Printf("  %s\n", network.TxURL(txs[0].ChainHash))
	}
	return nil
}
