package vaultclient

import (
	"context"
	"sync"
	"time"

	"github.com/gabapcia/pegvault/internal/pkg/logger"
	"github.com/gabapcia/pegvault/internal/session"
)

// Start implements Service.
func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)

	// Re-evaluate the polling predicate on every store mutation; the
	// polling task is torn down and recreated whenever its truth value
	// flips, never left running across a network change.
	unsubscribe := s.store.Subscribe(func(snap session.Snapshot) {
		s.evaluatePolling(ctx, snap.ChainID == s.targetChainID)
	})

	s.closeFunc = func() {
		cancel()
		unsubscribe()
		s.evaluatePolling(ctx, false)
	}
	s.isStarted = true

	s.evaluatePolling(ctx, s.store.Snapshot().ChainID == s.targetChainID)
	return nil
}

// Close implements Service.
func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}
	s.closeFunc = nil
	s.isStarted = false
}

// RefreshNow implements Service.
func (s *service) RefreshNow(ctx context.Context) {
	s.refreshReads(ctx)
}

// evaluatePolling starts or stops the polling task so that it runs exactly
// while shouldPoll holds. It is idempotent and safe to call from store
// subscription callbacks.
func (s *service) evaluatePolling(ctx context.Context, shouldPoll bool) {
	s.pollMu.Lock()
	defer s.pollMu.Unlock()

	switch {
	case shouldPoll && s.pollCancel == nil:
		pollCtx, cancel := context.WithCancel(ctx)
		s.pollCancel = cancel
		go s.runPoller(pollCtx)

	case !shouldPoll && s.pollCancel != nil:
		s.pollCancel()
		s.pollCancel = nil
	}
}

// runPoller refreshes contract reads immediately and then on every tick
// until its context is cancelled.
func (s *service) runPoller(ctx context.Context) {
	s.refreshReads(ctx)

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refreshReads(ctx)
		}
	}
}

// refreshReads fetches the aggregate vault state and, when an identity is
// present, the per-user receipt balance. Read failures are logged and
// otherwise ignored: stale values remain in the store and polling continues
// on the next tick.
func (s *service) refreshReads(ctx context.Context) {
	s.refreshVaultStats(ctx)

	if address := s.store.Snapshot().WalletAddress; address != "" {
		s.refreshUserStats(ctx, address)
	}
}

// refreshVaultStats reads the vault aggregate state into the store. It is
// fetched regardless of wallet connection.
func (s *service) refreshVaultStats(ctx context.Context) {
	stats, err := s.contract.VaultStats(ctx)
	if err != nil {
		logger.Warn(ctx, "failed to fetch vault stats", "error", err)
		return
	}

	paused, err := s.contract.Paused(ctx)
	if err != nil {
		logger.Warn(ctx, "failed to fetch vault paused flag", "error", err)
		return
	}

	s.store.SetVaultStats(stats.TotalAssets, stats.TotalSupply, paused)
}

// refreshUserStats reads the receipt balance of the given address into the
// store.
func (s *service) refreshUserStats(ctx context.Context, address string) {
	balance, err := s.contract.ReceiptBalance(ctx, address)
	if err != nil {
		logger.Warn(ctx, "failed to fetch receipt balance", "address", address, "error", err)
		return
	}

	s.store.SetReceiptBalance(balance)
}

// refreshAfterSuccess refreshes the native balance, the per-user read and
// the aggregate read concurrently, best-effort, and waits for all three.
func (s *service) refreshAfterSuccess(ctx context.Context, address string) {
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		s.balances.RefreshNativeBalance(ctx, address)
	}()
	go func() {
		defer wg.Done()
		s.refreshUserStats(ctx, address)
	}()
	go func() {
		defer wg.Done()
		s.refreshVaultStats(ctx)
	}()

	wg.Wait()
}
