// Package walletsession owns the connection lifecycle to the external wallet
// provider: connect, disconnect, passive reconnect on startup, network
// identification and switching, and subscription to provider-emitted
// account/network change events.
//
// The session state machine is Disconnected → Connecting →
// Connected(correct network) | Connected(wrong network). A wrong network is
// not fatal: it only degrades the write path, and persists until the user
// explicitly triggers a switch. An external account change to an empty list
// returns to Disconnected from any state.
package walletsession

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/gabapcia/pegvault/internal/pkg/validator"
	"github.com/gabapcia/pegvault/internal/session"
)

var (
	// ErrNoProvider is returned when the environment has no injected wallet
	// provider. It is terminal for the attempted operation but recoverable
	// by user action outside this system.
	ErrNoProvider = errors.New("no wallet provider available")

	// ErrConnectionCancelled is returned when the user declines the
	// connection prompt. It is an informational outcome, not a failure.
	ErrConnectionCancelled = errors.New("connection request cancelled by user")
)

// Notifier publishes user-facing notifications. It is satisfied by the
// notification relay.
type Notifier interface {
	Push(n session.Notification) string
}

// Service defines the wallet session lifecycle operations.
type Service interface {
	// Connect requests account access from the provider, populating the
	// session store with the resulting identity, network id and native
	// balance. If the wallet is on the wrong network, a switch to the
	// target network is requested automatically.
	//
	// Returns ErrNoProvider when no provider is present and
	// ErrConnectionCancelled when the user declines the prompt. A connect
	// already in progress is a no-op. All outcomes are also reported
	// through the Notifier.
	Connect(ctx context.Context) error

	// Disconnect clears all session state. It is a purely local reset; no
	// provider-level disconnection primitive exists.
	Disconnect(ctx context.Context)

	// SwitchToTargetNetwork asks the provider to switch to the target
	// chain, falling back to adding the chain when the provider does not
	// know it. Failures are reported via notification, never returned.
	SwitchToTargetNetwork(ctx context.Context) bool

	// EnsureSession silently restores a previously authorized session, at
	// most once per process lifetime. Absence of prior authorization is
	// expected and not an error; no connection notification is emitted.
	EnsureSession(ctx context.Context)

	// Watch subscribes to provider account and network change events,
	// keeping the session store in sync. The returned stop function tears
	// all subscriptions down and is safe to call more than once.
	Watch(ctx context.Context) (stop func(), err error)

	// RefreshNativeBalance re-reads the native asset balance of the given
	// address into the session store. Failures are logged and leave the
	// balance at "0".
	RefreshNativeBalance(ctx context.Context, address string)
}

// service is the concrete implementation of the Service interface.
type service struct {
	provider Provider // nil when the environment has no wallet
	store    *session.Store
	notifier Notifier
	network  NetworkDescriptor

	connecting    atomic.Bool // reentrancy guard for Connect
	reconnectOnce sync.Once   // passive reconnect runs at most once
}

// Ensure compile-time compliance with the Service interface.
var _ Service = (*service)(nil)

// New creates a wallet session service bound to the given provider, session
// store and notifier. The provider may be nil when the environment lacks a
// wallet; every operation then reports the absence instead of crashing.
//
// Returns an error if the target network descriptor is invalid.
func New(provider Provider, store *session.Store, notifier Notifier, network NetworkDescriptor) (*service, error) {
	if err := validator.Validate(network); err != nil {
		return nil, err
	}

	return &service{
		provider: provider,
		store:    store,
		notifier: notifier,
		network:  network,
	}, nil
}
