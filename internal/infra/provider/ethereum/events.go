package ethereum

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/gabapcia/pegvault/internal/walletsession"
)

// Subscribe implements walletsession.Provider. Each subscription runs its
// own diff-polling goroutine; the returned token cancels it, leaving no
// dangling poller behind.
func (c *client) Subscribe(kind walletsession.EventKind, handler func(walletsession.Event)) (walletsession.Unsubscribe, error) {
	ctx, cancel := context.WithCancel(context.Background())

	switch kind {
	case walletsession.EventAccountsChanged:
		go c.watchAccounts(ctx, handler)
	case walletsession.EventChainChanged:
		go c.watchChain(ctx, handler)
	default:
		cancel()
		return nil, fmt.Errorf("unsupported event kind: %q", kind)
	}

	return walletsession.Unsubscribe(cancel), nil
}

// watchAccounts polls eth_accounts and emits an event whenever the account
// list changes. Read failures are skipped; the next tick retries.
func (c *client) watchAccounts(ctx context.Context, handler func(walletsession.Event)) {
	last, err := c.Accounts(ctx)
	if err != nil {
		last = nil
	}

	ticker := time.NewTicker(c.eventPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			accounts, err := c.Accounts(ctx)
			if err != nil {
				continue
			}

			if !slices.Equal(accounts, last) {
				last = accounts
				handler(walletsession.Event{Accounts: accounts})
			}
		}
	}
}

// watchChain polls eth_chainId and emits an event whenever the active
// network changes. Read failures are skipped; the next tick retries.
func (c *client) watchChain(ctx context.Context, handler func(walletsession.Event)) {
	last, err := c.ChainID(ctx)
	if err != nil {
		last = 0
	}

	ticker := time.NewTicker(c.eventPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			chainID, err := c.ChainID(ctx)
			if err != nil {
				continue
			}

			if chainID != last {
				last = chainID
				handler(walletsession.Event{ChainID: chainID})
			}
		}
	}
}
