// Package ethereum implements the vaultclient.Contract interface for the
// peg-vault contract on Ethereum-compatible networks, using a JSON-RPC
// client. Reads go through eth_call with hand-assembled calldata; writes go
// through eth_sendTransaction so the wallet node holds and uses the signing
// key.
package ethereum

import (
	"errors"
	"strings"
	"time"

	"github.com/gabapcia/pegvault/internal/pkg/resilience/retry"
	"github.com/gabapcia/pegvault/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/pegvault/internal/vaultclient"
)

// client implements the vaultclient.Contract interface.
type client struct {
	conn            jsonrpc.Client // underlying JSON-RPC client
	contractAddress string         // address of the deployed peg-vault contract
	receiptRetry    retry.Retry    // drives the confirmation wait
}

// Ensure client implements the vaultclient.Contract interface at compile time.
var _ vaultclient.Contract = (*client)(nil)

// config holds optional settings for the contract client.
type config struct {
	receiptRetry retry.Retry
}

// Option customizes contract client construction.
type Option func(*config)

// WithReceiptRetry overrides the retry policy used while waiting for a
// transaction receipt.
func WithReceiptRetry(r retry.Retry) Option {
	return func(c *config) {
		c.receiptRetry = r
	}
}

// NewClient creates a new peg-vault contract client bound to the given
// contract address. The default receipt policy polls for up to roughly two
// minutes with exponential backoff.
func NewClient(conn jsonrpc.Client, contractAddress string, opts ...Option) *client {
	cfg := config{
		receiptRetry: retry.New(
			retry.WithAttempts(20),
			retry.WithDelay(2*time.Second),
			retry.WithMaxDelay(12*time.Second),
		),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &client{
		conn:            conn,
		contractAddress: contractAddress,
		receiptRetry:    cfg.receiptRetry,
	}
}

// revertPrefix is how Ethereum nodes prefix contract-supplied revert reasons.
const revertPrefix = "execution reverted"

// wrapError converts JSON-RPC server errors into the most specific error the
// domain can act on: revert reasons become vaultclient.RevertError so
// notifications can surface the contract's own message.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var rpcErr *jsonrpc.Error
	if !errors.As(err, &rpcErr) {
		return err
	}

	if strings.HasPrefix(rpcErr.Message, revertPrefix) {
		reason := strings.TrimPrefix(rpcErr.Message, revertPrefix)
		reason = strings.TrimPrefix(reason, ": ")
		if reason == "" {
			reason = rpcErr.Message
		}
		return &vaultclient.RevertError{Reason: reason}
	}

	return err
}
