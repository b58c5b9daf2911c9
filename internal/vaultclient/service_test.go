package vaultclient

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gabapcia/pegvault/internal/pkg/logger"
	"github.com/gabapcia/pegvault/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	_ = logger.Init(logger.WithLevel("error"))
}

const (
	testChainID = int64(267)
	testAddress = "0x1234567890abcdef1234567890abcdef12345678"
	testHash    = "0xaaaa000000000000000000000000000000000000000000000000000000000000"
)

// contractMock is a function-field test double for the Contract interface.
type contractMock struct {
	vaultStatsFunc       func(ctx context.Context) (VaultStats, error)
	pausedFunc           func(ctx context.Context) (bool, error)
	receiptBalanceFunc   func(ctx context.Context, address string) (string, error)
	checkLiquidityFunc   func(ctx context.Context, amount string) (bool, error)
	previewSubscribeFunc func(ctx context.Context, amount string) (string, error)
	previewRedeemFunc    func(ctx context.Context, amount string) (string, error)
	submitSubscribeFunc  func(ctx context.Context, from, amount string) (string, error)
	submitRedeemFunc     func(ctx context.Context, from, amount string) (string, error)
	waitForReceiptFunc   func(ctx context.Context, hash string) (Receipt, error)
}

func (m *contractMock) VaultStats(ctx context.Context) (VaultStats, error) {
	if m.vaultStatsFunc == nil {
		return VaultStats{}, errors.New("unexpected call to VaultStats")
	}
	return m.vaultStatsFunc(ctx)
}

func (m *contractMock) Paused(ctx context.Context) (bool, error) {
	if m.pausedFunc == nil {
		return false, errors.New("unexpected call to Paused")
	}
	return m.pausedFunc(ctx)
}

func (m *contractMock) ReceiptBalance(ctx context.Context, address string) (string, error) {
	if m.receiptBalanceFunc == nil {
		return "", errors.New("unexpected call to ReceiptBalance")
	}
	return m.receiptBalanceFunc(ctx, address)
}

func (m *contractMock) CheckLiquidity(ctx context.Context, amount string) (bool, error) {
	if m.checkLiquidityFunc == nil {
		return false, errors.New("unexpected call to CheckLiquidity")
	}
	return m.checkLiquidityFunc(ctx, amount)
}

func (m *contractMock) PreviewSubscribe(ctx context.Context, amount string) (string, error) {
	if m.previewSubscribeFunc == nil {
		return "", errors.New("unexpected call to PreviewSubscribe")
	}
	return m.previewSubscribeFunc(ctx, amount)
}

func (m *contractMock) PreviewRedeem(ctx context.Context, amount string) (string, error) {
	if m.previewRedeemFunc == nil {
		return "", errors.New("unexpected call to PreviewRedeem")
	}
	return m.previewRedeemFunc(ctx, amount)
}

func (m *contractMock) SubmitSubscribe(ctx context.Context, from, amount string) (string, error) {
	if m.submitSubscribeFunc == nil {
		return "", errors.New("unexpected call to SubmitSubscribe")
	}
	return m.submitSubscribeFunc(ctx, from, amount)
}

func (m *contractMock) SubmitRedeem(ctx context.Context, from, amount string) (string, error) {
	if m.submitRedeemFunc == nil {
		return "", errors.New("unexpected call to SubmitRedeem")
	}
	return m.submitRedeemFunc(ctx, from, amount)
}

func (m *contractMock) WaitForReceipt(ctx context.Context, hash string) (Receipt, error) {
	if m.waitForReceiptFunc == nil {
		return Receipt{}, errors.New("unexpected call to WaitForReceipt")
	}
	return m.waitForReceiptFunc(ctx, hash)
}

// notifierMock records every pushed notification.
type notifierMock struct {
	mu     sync.Mutex
	pushed []session.Notification
}

func (m *notifierMock) Push(n session.Notification) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pushed = append(m.pushed, n)
	return n.Title
}

func (m *notifierMock) all() []session.Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]session.Notification(nil), m.pushed...)
}

// balancesMock counts native balance refresh requests.
type balancesMock struct {
	mu    sync.Mutex
	calls []string
}

func (m *balancesMock) RefreshNativeBalance(_ context.Context, address string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, address)
}

func (m *balancesMock) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// connectedStore returns a store holding a session on the target network.
func connectedStore() *session.Store {
	store := session.NewStore()
	store.SetWalletAddress(testAddress)
	store.SetChainID(testChainID)
	return store
}

// waitFor polls the condition until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}

	require.Fail(t, "condition not reached in time")
}

// happyPathContract returns a contract mock that accepts every operation.
func happyPathContract() *contractMock {
	return &contractMock{
		vaultStatsFunc: func(context.Context) (VaultStats, error) {
			return VaultStats{TotalAssets: "100", TotalSupply: "100"}, nil
		},
		pausedFunc:         func(context.Context) (bool, error) { return false, nil },
		receiptBalanceFunc: func(context.Context, string) (string, error) { return "10", nil },
		checkLiquidityFunc: func(context.Context, string) (bool, error) { return true, nil },
		submitSubscribeFunc: func(_ context.Context, from, _ string) (string, error) {
			return testHash, nil
		},
		submitRedeemFunc: func(_ context.Context, from, _ string) (string, error) {
			return testHash, nil
		},
		waitForReceiptFunc: func(_ context.Context, hash string) (Receipt, error) {
			return Receipt{Hash: hash, Succeeded: true}, nil
		},
	}
}

func TestService_Subscribe(t *testing.T) {
	t.Run("drives the full lifecycle on success", func(t *testing.T) {
		store := connectedStore()
		notifier := &notifierMock{}
		balances := &balancesMock{}

		svc := New(happyPathContract(), store, notifier, balances, testChainID)

		require.NoError(t, svc.Subscribe(t.Context(), "1.5"))

		txs := store.Snapshot().Transactions
		require.Len(t, txs, 1)
		assert.Equal(t, session.TransactionKindSubscribe, txs[0].Kind)
		assert.Equal(t, "1.5", txs[0].Amount)
		assert.Equal(t, testHash, txs[0].ChainHash)
		assert.Equal(t, session.TransactionStatusSuccess, txs[0].Status)

		notifications := notifier.all()
		require.Len(t, notifications, 3)
		assert.Equal(t, "Transaction Pending", notifications[0].Title)
		assert.Equal(t, "Subscribing 1.5 ANKR...", notifications[0].Message)
		assert.Equal(t, "Transaction Submitted", notifications[1].Title)
		assert.Equal(t, testHash, notifications[1].ChainHash)
		assert.Equal(t, "Subscribe Successful!", notifications[2].Title)
		assert.Equal(t, "Received 1.5 CASH", notifications[2].Message)

		assert.Equal(t, 1, balances.count())
		assert.Equal(t, "10", store.Snapshot().ReceiptBalance)
		assert.Equal(t, "100", store.Snapshot().VaultTotalAssets)
		assert.False(t, store.Snapshot().OperationInFlight)
	})

	t.Run("rejects a malformed amount without creating a record", func(t *testing.T) {
		store := connectedStore()

		svc := New(&contractMock{}, store, &notifierMock{}, &balancesMock{}, testChainID)

		assert.Error(t, svc.Subscribe(t.Context(), "abc"))
		assert.Error(t, svc.Subscribe(t.Context(), ""))
		assert.Empty(t, store.Snapshot().Transactions)
	})

	t.Run("fails without a connected wallet", func(t *testing.T) {
		store := session.NewStore()

		svc := New(&contractMock{}, store, &notifierMock{}, &balancesMock{}, testChainID)

		err := svc.Subscribe(t.Context(), "1")

		assert.ErrorIs(t, err, ErrNotConnected)
		assert.Empty(t, store.Snapshot().Transactions)
	})

	t.Run("fails on the wrong network", func(t *testing.T) {
		store := session.NewStore()
		store.SetWalletAddress(testAddress)
		store.SetChainID(1)

		svc := New(&contractMock{}, store, &notifierMock{}, &balancesMock{}, testChainID)

		err := svc.Subscribe(t.Context(), "1")

		assert.ErrorIs(t, err, ErrWrongNetwork)
		assert.Empty(t, store.Snapshot().Transactions)
	})

	t.Run("fails while another operation is in flight", func(t *testing.T) {
		store := connectedStore()
		require.True(t, store.TryBeginOperation())

		svc := New(&contractMock{}, store, &notifierMock{}, &balancesMock{}, testChainID)

		err := svc.Subscribe(t.Context(), "1")

		assert.ErrorIs(t, err, ErrOperationInFlight)
		assert.Empty(t, store.Snapshot().Transactions)
	})

	t.Run("marks the record failed when submission fails", func(t *testing.T) {
		store := connectedStore()
		notifier := &notifierMock{}
		contract := happyPathContract()
		contract.submitSubscribeFunc = func(context.Context, string, string) (string, error) {
			return "", &RevertError{Reason: "Vault is paused"}
		}

		svc := New(contract, store, notifier, &balancesMock{}, testChainID)

		require.Error(t, svc.Subscribe(t.Context(), "1"))

		txs := store.Snapshot().Transactions
		require.Len(t, txs, 1)
		assert.Equal(t, session.TransactionStatusFailed, txs[0].Status)
		assert.Empty(t, txs[0].ChainHash)

		notifications := notifier.all()
		require.Len(t, notifications, 2)
		assert.Equal(t, "Subscribe Failed", notifications[1].Title)
		assert.Equal(t, "Vault is paused", notifications[1].Message)

		assert.False(t, store.Snapshot().OperationInFlight)
	})

	t.Run("marks the record failed when the receipt reports failure", func(t *testing.T) {
		store := connectedStore()
		contract := happyPathContract()
		contract.waitForReceiptFunc = func(_ context.Context, hash string) (Receipt, error) {
			return Receipt{Hash: hash, Succeeded: false}, nil
		}

		svc := New(contract, store, &notifierMock{}, &balancesMock{}, testChainID)

		err := svc.Subscribe(t.Context(), "1")

		assert.ErrorIs(t, err, ErrTransactionFailed)

		txs := store.Snapshot().Transactions
		require.Len(t, txs, 1)
		assert.Equal(t, session.TransactionStatusFailed, txs[0].Status)
		assert.Equal(t, testHash, txs[0].ChainHash)
		assert.False(t, store.Snapshot().OperationInFlight)
	})

	t.Run("marks the record failed when the confirmation wait errors", func(t *testing.T) {
		store := connectedStore()
		contract := happyPathContract()
		contract.waitForReceiptFunc = func(context.Context, string) (Receipt, error) {
			return Receipt{}, errors.New("receipt polling timed out")
		}

		svc := New(contract, store, &notifierMock{}, &balancesMock{}, testChainID)

		require.Error(t, svc.Subscribe(t.Context(), "1"))

		txs := store.Snapshot().Transactions
		require.Len(t, txs, 1)
		assert.Equal(t, session.TransactionStatusFailed, txs[0].Status)
		assert.False(t, store.Snapshot().OperationInFlight)
	})
}

func TestService_Redeem(t *testing.T) {
	t.Run("drives the full lifecycle on success", func(t *testing.T) {
		store := connectedStore()
		notifier := &notifierMock{}

		svc := New(happyPathContract(), store, notifier, &balancesMock{}, testChainID)

		require.NoError(t, svc.Redeem(t.Context(), "2"))

		txs := store.Snapshot().Transactions
		require.Len(t, txs, 1)
		assert.Equal(t, session.TransactionKindRedeem, txs[0].Kind)
		assert.Equal(t, session.TransactionStatusSuccess, txs[0].Status)

		notifications := notifier.all()
		require.Len(t, notifications, 3)
		assert.Equal(t, "Redeeming 2 CASH...", notifications[0].Message)
		assert.Equal(t, "Redeem Successful!", notifications[2].Title)
		assert.Equal(t, "Received 2 ANKR", notifications[2].Message)
	})

	t.Run("aborts before any record when liquidity is insufficient", func(t *testing.T) {
		store := connectedStore()
		notifier := &notifierMock{}
		contract := happyPathContract()
		contract.checkLiquidityFunc = func(context.Context, string) (bool, error) { return false, nil }

		svc := New(contract, store, notifier, &balancesMock{}, testChainID)

		err := svc.Redeem(t.Context(), "1000")

		assert.ErrorIs(t, err, ErrInsufficientLiquidity)
		assert.Empty(t, store.Snapshot().Transactions)
		assert.False(t, store.Snapshot().OperationInFlight)

		notifications := notifier.all()
		require.Len(t, notifications, 1)
		assert.Equal(t, "Redeem Failed", notifications[0].Title)
		assert.Equal(t, "Insufficient vault liquidity", notifications[0].Message)
	})

	t.Run("aborts when the liquidity check itself fails", func(t *testing.T) {
		store := connectedStore()
		notifier := &notifierMock{}
		contract := happyPathContract()
		contract.checkLiquidityFunc = func(context.Context, string) (bool, error) {
			return false, errors.New("rpc unavailable")
		}

		svc := New(contract, store, notifier, &balancesMock{}, testChainID)

		require.Error(t, svc.Redeem(t.Context(), "1"))
		assert.Empty(t, store.Snapshot().Transactions)

		notifications := notifier.all()
		require.Len(t, notifications, 1)
		assert.Equal(t, "Redeem Failed", notifications[0].Title)
	})
}

func TestService_Previews(t *testing.T) {
	t.Run("passes validated amounts through to the contract", func(t *testing.T) {
		contract := &contractMock{
			previewSubscribeFunc: func(_ context.Context, amount string) (string, error) {
				assert.Equal(t, "1.5", amount)
				return "1.5", nil
			},
			previewRedeemFunc: func(_ context.Context, amount string) (string, error) {
				return "2", nil
			},
		}

		svc := New(contract, session.NewStore(), &notifierMock{}, &balancesMock{}, testChainID)

		minted, err := svc.PreviewSubscribe(t.Context(), "1.5")
		require.NoError(t, err)
		assert.Equal(t, "1.5", minted)

		returned, err := svc.PreviewRedeem(t.Context(), "2")
		require.NoError(t, err)
		assert.Equal(t, "2", returned)
	})

	t.Run("rejects malformed amounts before any contract call", func(t *testing.T) {
		svc := New(&contractMock{}, session.NewStore(), &notifierMock{}, &balancesMock{}, testChainID)

		_, err := svc.PreviewSubscribe(t.Context(), "-1")
		assert.Error(t, err)

		_, err = svc.PreviewRedeem(t.Context(), "")
		assert.Error(t, err)
	})
}

func TestService_Start(t *testing.T) {
	t.Run("polls while the session is on the target network", func(t *testing.T) {
		store := connectedStore()

		svc := New(happyPathContract(), store, &notifierMock{}, &balancesMock{}, testChainID,
			WithPollInterval(10*time.Millisecond))

		require.NoError(t, svc.Start(t.Context()))
		defer svc.Close()

		waitFor(t, func() bool {
			snap := store.Snapshot()
			return snap.VaultTotalAssets == "100" && snap.ReceiptBalance == "10"
		})
	})

	t.Run("does not poll on the wrong network", func(t *testing.T) {
		store := session.NewStore()
		store.SetChainID(1)

		svc := New(&contractMock{}, store, &notifierMock{}, &balancesMock{}, testChainID,
			WithPollInterval(10*time.Millisecond))

		require.NoError(t, svc.Start(t.Context()))
		defer svc.Close()

		time.Sleep(50 * time.Millisecond)

		assert.Equal(t, "0", store.Snapshot().VaultTotalAssets)
	})

	t.Run("starts polling when the session reaches the target network", func(t *testing.T) {
		store := session.NewStore()

		svc := New(happyPathContract(), store, &notifierMock{}, &balancesMock{}, testChainID,
			WithPollInterval(10*time.Millisecond))

		require.NoError(t, svc.Start(t.Context()))
		defer svc.Close()

		store.SetChainID(testChainID)

		waitFor(t, func() bool {
			return store.Snapshot().VaultTotalAssets == "100"
		})
	})

	t.Run("stops polling when the session leaves the target network", func(t *testing.T) {
		store := connectedStore()

		var (
			mu    sync.Mutex
			reads int
		)
		contract := happyPathContract()
		contract.vaultStatsFunc = func(context.Context) (VaultStats, error) {
			mu.Lock()
			reads++
			mu.Unlock()
			return VaultStats{TotalAssets: "100", TotalSupply: "100"}, nil
		}

		svc := New(contract, store, &notifierMock{}, &balancesMock{}, testChainID,
			WithPollInterval(10*time.Millisecond))

		require.NoError(t, svc.Start(t.Context()))
		defer svc.Close()

		waitFor(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return reads > 0
		})

		store.SetChainID(1)
		time.Sleep(30 * time.Millisecond)

		mu.Lock()
		settled := reads
		mu.Unlock()

		time.Sleep(50 * time.Millisecond)

		mu.Lock()
		final := reads
		mu.Unlock()
		assert.Equal(t, settled, final)
	})

	t.Run("swallows read failures and keeps polling", func(t *testing.T) {
		store := connectedStore()

		var (
			mu    sync.Mutex
			reads int
		)
		contract := happyPathContract()
		contract.vaultStatsFunc = func(context.Context) (VaultStats, error) {
			mu.Lock()
			reads++
			mu.Unlock()
			return VaultStats{}, errors.New("rpc unavailable")
		}

		svc := New(contract, store, &notifierMock{}, &balancesMock{}, testChainID,
			WithPollInterval(10*time.Millisecond))

		require.NoError(t, svc.Start(t.Context()))
		defer svc.Close()

		waitFor(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return reads >= 2
		})

		assert.Equal(t, "0", store.Snapshot().VaultTotalAssets)
	})

	t.Run("fails when started twice", func(t *testing.T) {
		svc := New(&contractMock{}, session.NewStore(), &notifierMock{}, &balancesMock{}, testChainID)

		require.NoError(t, svc.Start(t.Context()))
		defer svc.Close()

		assert.ErrorIs(t, svc.Start(t.Context()), ErrServiceAlreadyStarted)
	})

	t.Run("close before start is a no-op", func(t *testing.T) {
		svc := New(&contractMock{}, session.NewStore(), &notifierMock{}, &balancesMock{}, testChainID)

		svc.Close()
	})

	t.Run("can be restarted after close", func(t *testing.T) {
		svc := New(happyPathContract(), session.NewStore(), &notifierMock{}, &balancesMock{}, testChainID)

		require.NoError(t, svc.Start(t.Context()))
		svc.Close()

		require.NoError(t, svc.Start(t.Context()))
		svc.Close()
	})
}

func TestService_RefreshNow(t *testing.T) {
	t.Run("performs one synchronous read pass", func(t *testing.T) {
		store := connectedStore()

		svc := New(happyPathContract(), store, &notifierMock{}, &balancesMock{}, testChainID)

		svc.RefreshNow(t.Context())

		snap := store.Snapshot()
		assert.Equal(t, "100", snap.VaultTotalAssets)
		assert.Equal(t, "100", snap.VaultTotalSupply)
		assert.Equal(t, "10", snap.ReceiptBalance)
	})

	t.Run("skips the per-user read without a session", func(t *testing.T) {
		store := session.NewStore()

		contract := happyPathContract()
		contract.receiptBalanceFunc = nil

		svc := New(contract, store, &notifierMock{}, &balancesMock{}, testChainID)

		svc.RefreshNow(t.Context())

		assert.Equal(t, "100", store.Snapshot().VaultTotalAssets)
		assert.Equal(t, "0", store.Snapshot().ReceiptBalance)
	})
}
