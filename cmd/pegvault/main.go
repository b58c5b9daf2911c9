package main

import (
	"context"

	"github.com/gabapcia/pegvault/internal/config"
	"github.com/gabapcia/pegvault/internal/handlers/cli"
	walletprovider "github.com/gabapcia/pegvault/internal/infra/provider/ethereum"
	vaultcontract "github.com/gabapcia/pegvault/internal/infra/vault/ethereum"
	"github.com/gabapcia/pegvault/internal/notify"
	"github.com/gabapcia/pegvault/internal/pkg/logger"
	"github.com/gabapcia/pegvault/internal/pkg/telemetry"
	"github.com/gabapcia/pegvault/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/pegvault/internal/session"
	"github.com/gabapcia/pegvault/internal/vaultclient"
	"github.com/gabapcia/pegvault/internal/walletsession"
)

const serviceName = "pegvault"

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if cfg.TelemetryEnabled {
		shutdown, err := telemetry.Init(ctx, serviceName)
		if err != nil {
			panic(err)
		}
		defer shutdown(ctx)
	}

	if err := logger.Init(logger.WithLevel(cfg.LogLevel)); err != nil {
		panic(err)
	}
	defer logger.Sync()

	conn := jsonrpc.NewClient(cfg.RPCEndpoint)

	store := session.NewStore()
	relay := notify.New(store, notify.WithTTL(cfg.NotificationTTL))
	defer relay.Stop()

	network := cfg.NetworkDescriptor()

	ws, err := walletsession.New(walletprovider.NewClient(conn), store, relay, network)
	if err != nil {
		logger.Fatal(ctx, "failed to build wallet session manager", "error", err)
	}

	vc := vaultclient.New(
		vaultcontract.NewClient(conn, cfg.ContractAddress),
		store,
		relay,
		ws,
		cfg.ChainID,
		vaultclient.WithPollInterval(cfg.PollInterval),
		vaultclient.WithSymbols(cfg.NativeCurrencySymbol, cfg.ReceiptSymbol),
	)

	if err := cli.Run(ctx, ws, vc, store, relay, network); err != nil {
		logger.Fatal(ctx, "application terminated with error", "error", err)
	}
}
