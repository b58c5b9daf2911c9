// Package vaultclient mediates all peg-vault contract interaction: read
// polling of aggregate and per-user state while the session is on the
// correct network, and the two write operations (subscribe and redeem), each
// driven through the transaction lifecycle protocol with an at-most-one
// in-flight guarantee per session.
package vaultclient

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gabapcia/pegvault/internal/session"
)

var (
	// ErrServiceAlreadyStarted is returned if Start is called more than once.
	ErrServiceAlreadyStarted = errors.New("service already started")

	// ErrNotConnected is returned when a write is attempted without a
	// connected wallet. No transaction record is created.
	ErrNotConnected = errors.New("no wallet connected")

	// ErrWrongNetwork is returned when a write is attempted while the wallet
	// is not on the target network. No transaction record is created.
	ErrWrongNetwork = errors.New("wallet is not on the target network")

	// ErrOperationInFlight is returned when a write is attempted while
	// another one is outstanding. Writes are strictly serialized, never queued.
	ErrOperationInFlight = errors.New("another operation is in flight")

	// ErrInsufficientLiquidity is returned when the redeem liquidity
	// pre-check fails. The operation aborts before any chain interaction.
	ErrInsufficientLiquidity = errors.New("insufficient vault liquidity")

	// ErrTransactionFailed is returned when a confirmed receipt reports a
	// failed execution.
	ErrTransactionFailed = errors.New("transaction failed")
)

// defaultPollInterval is how often contract reads are refreshed while the
// session is on the correct network.
const defaultPollInterval = 10 * time.Second

// Notifier publishes user-facing notifications. It is satisfied by the
// notification relay.
type Notifier interface {
	Push(n session.Notification) string
}

// NativeBalanceRefresher re-reads the wallet's native asset balance into the
// session store. It is satisfied by the wallet session service.
type NativeBalanceRefresher interface {
	RefreshNativeBalance(ctx context.Context, address string)
}

// Service defines the vault client lifecycle and operations.
type Service interface {
	// Start begins read polling bound to the "session on correct network"
	// predicate: the polling task is created when the predicate becomes
	// true (with an immediate first read) and torn down when it becomes
	// false. Returns ErrServiceAlreadyStarted if called twice.
	Start(ctx context.Context) error

	// Close stops polling and releases the store subscription. Safe to call
	// even if the service was never started.
	Close()

	// RefreshNow performs one synchronous read pass (aggregate state plus
	// the per-user read when an identity is present), independent of the
	// polling lifecycle. Failures are logged and swallowed.
	RefreshNow(ctx context.Context)

	// Subscribe deposits the given native amount into the vault, minting
	// receipt tokens 1:1.
	Subscribe(ctx context.Context, amount string) error

	// Redeem burns the given receipt amount, returning native tokens 1:1.
	// A liquidity pre-check aborts the operation before submission if the
	// vault cannot cover the redemption.
	Redeem(ctx context.Context, amount string) error

	// PreviewSubscribe estimates the receipt amount minted for a native
	// deposit of the given size.
	PreviewSubscribe(ctx context.Context, amount string) (string, error)

	// PreviewRedeem estimates the native amount returned for burning the
	// given receipt amount.
	PreviewRedeem(ctx context.Context, amount string) (string, error)
}

// service is the concrete implementation of the Service interface.
type service struct {
	mu        sync.Mutex // protects lifecycle state
	isStarted bool
	closeFunc func()

	pollMu     sync.Mutex         // protects the inner polling task
	pollCancel context.CancelFunc // non-nil while the polling task runs

	contract Contract
	store    *session.Store
	notifier Notifier
	balances NativeBalanceRefresher

	targetChainID int64
	pollInterval  time.Duration
	nativeSymbol  string
	receiptSymbol string
}

// Compile-time check to ensure *service implements the Service interface.
var _ Service = (*service)(nil)

// config holds optional settings for the vault client.
type config struct {
	pollInterval  time.Duration
	nativeSymbol  string
	receiptSymbol string
}

// Option customizes vault client construction.
type Option func(*config)

// WithPollInterval overrides the read polling interval. Default: 10 seconds.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		c.pollInterval = d
	}
}

// WithSymbols sets the asset symbols used in notification messages.
// Defaults: "ANKR" and "CASH".
func WithSymbols(native, receipt string) Option {
	return func(c *config) {
		c.nativeSymbol = native
		c.receiptSymbol = receipt
	}
}

// New creates a vault client bound to the given contract endpoint, session
// store, notifier and balance refresher. Writes are gated on the session's
// chain id matching targetChainID.
func New(contract Contract, store *session.Store, notifier Notifier, balances NativeBalanceRefresher, targetChainID int64, opts ...Option) *service {
	cfg := config{
		pollInterval:  defaultPollInterval,
		nativeSymbol:  "ANKR",
		receiptSymbol: "CASH",
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		contract:      contract,
		store:         store,
		notifier:      notifier,
		balances:      balances,
		targetChainID: targetChainID,
		pollInterval:  cfg.pollInterval,
		nativeSymbol:  cfg.nativeSymbol,
		receiptSymbol: cfg.receiptSymbol,
	}
}
