// Package ethereum implements the walletsession.Provider interface against
// an Ethereum-compatible wallet node using a JSON-RPC client.
//
// Browser wallets deliver account and network changes as push callbacks;
// over JSON-RPC the same signals are emulated by diff-polling eth_accounts
// and eth_chainId behind the provider's subscription contract.
package ethereum

import (
	"errors"
	"time"

	"github.com/gabapcia/pegvault/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/pegvault/internal/walletsession"
)

// defaultEventPollInterval is how often the provider re-reads accounts and
// chain id to detect changes for event subscriptions.
const defaultEventPollInterval = 2 * time.Second

// client implements the walletsession.Provider interface for Ethereum-based
// wallets. It communicates with the wallet node via a JSON-RPC client.
type client struct {
	conn              jsonrpc.Client // underlying JSON-RPC client
	eventPollInterval time.Duration
}

// Ensure client implements the walletsession.Provider interface at compile time.
var _ walletsession.Provider = (*client)(nil)

// config holds optional settings for the provider client.
type config struct {
	eventPollInterval time.Duration
}

// Option customizes provider client construction.
type Option func(*config)

// WithEventPollInterval overrides the change-detection polling interval.
// Default: 2 seconds.
func WithEventPollInterval(d time.Duration) Option {
	return func(c *config) {
		c.eventPollInterval = d
	}
}

// NewClient creates a new Ethereum wallet provider client using the provided
// JSON-RPC connection.
func NewClient(conn jsonrpc.Client, opts ...Option) *client {
	cfg := config{eventPollInterval: defaultEventPollInterval}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &client{
		conn:              conn,
		eventPollInterval: cfg.eventPollInterval,
	}
}

// wrapError converts JSON-RPC server errors into walletsession.ProviderError
// values, preserving the provider's numeric code. Transport errors pass
// through unchanged.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var rpcErr *jsonrpc.Error
	if errors.As(err, &rpcErr) {
		return &walletsession.ProviderError{
			Code:    rpcErr.Code,
			Message: rpcErr.Message,
		}
	}
	return err
}
