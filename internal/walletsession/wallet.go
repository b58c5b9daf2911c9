package walletsession

import (
	"context"
	"errors"
	"sync"

	"github.com/gabapcia/pegvault/internal/pkg/logger"
	"github.com/gabapcia/pegvault/internal/pkg/types"
	"github.com/gabapcia/pegvault/internal/session"
)

// Connect implements Service.
func (s *service) Connect(ctx context.Context) error {
	if s.provider == nil {
		s.notifier.Push(session.Notification{
			Kind:    session.NotificationKindError,
			Title:   "Wallet Not Found",
			Message: "Please install a Web3 wallet to connect",
		})
		return ErrNoProvider
	}

	// A connect already in progress is a no-op.
	if !s.connecting.CompareAndSwap(false, true) {
		return nil
	}
	defer s.connecting.Store(false)

	accounts, err := s.provider.RequestAccounts(ctx)
	if err != nil {
		if IsUserRejection(err) {
			s.notifier.Push(session.Notification{
				Kind:    session.NotificationKindInfo,
				Title:   "Connection Cancelled",
				Message: "You cancelled the connection request",
			})
			return ErrConnectionCancelled
		}

		logger.Error(ctx, "wallet connection failed", "error", err)
		s.notifier.Push(session.Notification{
			Kind:    session.NotificationKindError,
			Title:   "Connection Failed",
			Message: failureMessage(err, "Failed to connect wallet. Please try again."),
		})
		return err
	}

	if len(accounts) == 0 {
		return nil
	}
	address := accounts[0]
	s.store.SetWalletAddress(address)

	chainID, err := s.provider.ChainID(ctx)
	if err != nil {
		logger.Error(ctx, "failed to read chain id", "error", err)
		s.notifier.Push(session.Notification{
			Kind:    session.NotificationKindError,
			Title:   "Connection Failed",
			Message: failureMessage(err, "Failed to identify the wallet network"),
		})
		return err
	}
	s.store.SetChainID(chainID)

	if chainID != s.network.ChainID {
		s.SwitchToTargetNetwork(ctx)
	}

	s.RefreshNativeBalance(ctx, address)

	s.notifier.Push(session.Notification{
		Kind:    session.NotificationKindSuccess,
		Title:   "Wallet Connected",
		Message: "Connected to " + types.ShortenAddress(address),
	})
	return nil
}

// Disconnect implements Service.
func (s *service) Disconnect(ctx context.Context) {
	s.store.Reset()
	s.notifier.Push(session.Notification{
		Kind:    session.NotificationKindInfo,
		Title:   "Wallet Disconnected",
		Message: "Your wallet has been disconnected",
	})
}

// SwitchToTargetNetwork implements Service.
func (s *service) SwitchToTargetNetwork(ctx context.Context) bool {
	if s.provider == nil {
		s.notifier.Push(session.Notification{
			Kind:    session.NotificationKindError,
			Title:   "Wallet Not Found",
			Message: "Please install a Web3 wallet to connect",
		})
		return false
	}

	err := s.provider.SwitchChain(ctx, s.network.ChainIDHex)
	if err == nil {
		s.syncChainID(ctx)
		return true
	}

	// The provider does not know the chain yet; adding it switches implicitly.
	if IsUnknownChain(err) {
		if addErr := s.provider.AddChain(ctx, s.network); addErr != nil {
			logger.Error(ctx, "failed to add target network", "network", s.network.Name, "error", addErr)
			s.notifier.Push(session.Notification{
				Kind:    session.NotificationKindError,
				Title:   "Network Error",
				Message: "Failed to add " + s.network.Name + " to your wallet",
			})
			return false
		}
		s.syncChainID(ctx)
		return true
	}

	logger.Error(ctx, "failed to switch network", "network", s.network.Name, "error", err)
	s.notifier.Push(session.Notification{
		Kind:    session.NotificationKindError,
		Title:   "Network Error",
		Message: failureMessage(err, "Failed to switch to "+s.network.Name),
	})
	return false
}

// syncChainID re-reads the provider's chain id into the store after a
// successful switch. Change events only flow while a Watch subscription is
// active, so without this a switch would leave the session on the old chain
// until the next event.
func (s *service) syncChainID(ctx context.Context) {
	chainID, err := s.provider.ChainID(ctx)
	if err != nil {
		logger.Warn(ctx, "failed to read chain id after network switch", "error", err)
		return
	}
	s.store.SetChainID(chainID)
}

// EnsureSession implements Service.
func (s *service) EnsureSession(ctx context.Context) {
	s.reconnectOnce.Do(func() {
		if s.provider == nil {
			return
		}

		accounts, err := s.provider.Accounts(ctx)
		if err != nil {
			logger.Debug(ctx, "no existing wallet session found", "error", err)
			return
		}
		if len(accounts) == 0 {
			return
		}
		address := accounts[0]
		s.store.SetWalletAddress(address)

		chainID, err := s.provider.ChainID(ctx)
		if err != nil {
			logger.Debug(ctx, "failed to read chain id during session restore", "error", err)
		} else {
			s.store.SetChainID(chainID)
		}

		s.RefreshNativeBalance(ctx, address)
	})
}

// Watch implements Service.
func (s *service) Watch(ctx context.Context) (func(), error) {
	if s.provider == nil {
		return func() {}, ErrNoProvider
	}

	unsubAccounts, err := s.provider.Subscribe(EventAccountsChanged, func(e Event) {
		s.handleAccountsChanged(ctx, e.Accounts)
	})
	if err != nil {
		return nil, err
	}

	unsubChain, err := s.provider.Subscribe(EventChainChanged, func(e Event) {
		s.handleChainChanged(ctx, e.ChainID)
	})
	if err != nil {
		unsubAccounts()
		return nil, err
	}

	var once sync.Once
	stop := func() {
		once.Do(func() {
			unsubAccounts()
			unsubChain()
		})
	}
	return stop, nil
}

// handleAccountsChanged reacts to provider account changes: an empty list
// means the wallet disconnected externally; a different account replaces the
// session identity and refreshes its balance.
func (s *service) handleAccountsChanged(ctx context.Context, accounts []string) {
	if len(accounts) == 0 {
		s.Disconnect(ctx)
		return
	}

	current := s.store.Snapshot().WalletAddress
	if accounts[0] != current {
		s.store.SetWalletAddress(accounts[0])
		s.RefreshNativeBalance(ctx, accounts[0])
	}
}

// handleChainChanged reacts to provider network changes. The native balance
// is chain-scoped, so it is refetched whenever an identity is connected.
func (s *service) handleChainChanged(ctx context.Context, chainID int64) {
	s.store.SetChainID(chainID)

	if address := s.store.Snapshot().WalletAddress; address != "" {
		s.RefreshNativeBalance(ctx, address)
	}
}

// RefreshNativeBalance implements Service.
func (s *service) RefreshNativeBalance(ctx context.Context, address string) {
	if s.provider == nil {
		return
	}

	balance, err := s.provider.NativeBalance(ctx, address)
	if err != nil {
		logger.Warn(ctx, "failed to fetch native balance", "address", address, "error", err)
		s.store.SetNativeBalance("0")
		return
	}

	s.store.SetNativeBalance(balance)
}

// failureMessage extracts the most specific user-facing message from a
// provider failure, falling back to the given generic message.
func failureMessage(err error, fallback string) string {
	var perr *ProviderError
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
