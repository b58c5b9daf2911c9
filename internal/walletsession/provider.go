package walletsession

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/pegvault/internal/pkg/types"
)

// Well-known wallet provider error codes (EIP-1193 / EIP-3085).
const (
	// CodeUserRejected is returned when the user declines a provider prompt.
	// It describes a user decision, not a system failure.
	CodeUserRejected = 4001

	// CodeUnknownChain is returned by a chain-switch request when the target
	// chain has not been added to the wallet yet.
	CodeUnknownChain = 4902
)

// ProviderError is an error reported by the wallet provider, carrying the
// provider's numeric code so callers can distinguish user decisions and
// recoverable conditions from real failures.
type ProviderError struct {
	Code    int
	Message string
}

// Error implements the error interface.
func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error [%d]: %s", e.Code, e.Message)
}

// IsUserRejection reports whether err is a provider error describing a
// declined user prompt.
func IsUserRejection(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.Code == CodeUserRejected
}

// IsUnknownChain reports whether err is a provider error describing a
// chain the wallet does not know about.
func IsUnknownChain(err error) bool {
	var perr *ProviderError
	return errors.As(err, &perr) && perr.Code == CodeUnknownChain
}

// EventKind identifies a provider-emitted change signal.
type EventKind string

const (
	// EventAccountsChanged fires when the set of authorized accounts changes.
	// An empty account list means the wallet was disconnected externally.
	EventAccountsChanged EventKind = "accountsChanged"

	// EventChainChanged fires when the wallet's active network changes.
	EventChainChanged EventKind = "chainChanged"
)

// Event carries the payload of a provider change signal. Accounts is set for
// EventAccountsChanged, ChainID for EventChainChanged.
type Event struct {
	Accounts []string
	ChainID  int64
}

// Unsubscribe removes an event subscription. It must be safe to call after
// the provider reference is gone and must leave no dangling listener behind.
type Unsubscribe func()

// Provider abstracts the external wallet provider: account authorization,
// network identification and switching, balance reads, and change-event
// subscription.
//
// Absence of a provider is a normal, handled condition; services hold a nil
// Provider in that case and report it per operation instead of crashing.
type Provider interface {
	// RequestAccounts asks the provider for account access. It may prompt
	// the user and returns a ProviderError with CodeUserRejected if the
	// prompt is declined.
	RequestAccounts(ctx context.Context) ([]string, error)

	// Accounts returns the already-authorized accounts without prompting.
	// An empty result means no prior authorization exists.
	Accounts(ctx context.Context) ([]string, error)

	// ChainID returns the wallet's active network id.
	ChainID(ctx context.Context) (int64, error)

	// NativeBalance returns the native asset balance of the given address
	// as a decimal token amount string.
	NativeBalance(ctx context.Context, address string) (string, error)

	// SwitchChain asks the provider to switch to the chain with the given
	// hex id. Returns a ProviderError with CodeUnknownChain if the chain
	// has not been added to the wallet.
	SwitchChain(ctx context.Context, chainID types.Hex) error

	// AddChain asks the provider to add the chain described by the given
	// network descriptor, implicitly switching to it on success.
	AddChain(ctx context.Context, network NetworkDescriptor) error

	// Subscribe registers a handler for the given event kind and returns a
	// token that removes the subscription.
	Subscribe(kind EventKind, handler func(Event)) (Unsubscribe, error)
}
