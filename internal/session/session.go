// Package session holds the process-wide reactive session state: wallet
// identity, network, balances, vault stats, UI selection, the transaction
// log and the notification queue.
//
// The Store performs no I/O and raises no errors. Every mutation is atomic,
// applied through a typed setter, and pushed to read subscribers as a value
// snapshot, so no subscriber can observe a partially applied change.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// transactionLogCapacity caps the transaction log; the oldest entry is
// evicted when a new one would exceed it.
const transactionLogCapacity = 50

// View enumerates the top-level UI views.
type View string

const (
	ViewInvest    View = "invest"
	ViewPortfolio View = "portfolio"
)

// Action enumerates the selectable vault actions.
type Action string

const (
	ActionSubscribe Action = "subscribe"
	ActionRedeem    Action = "redeem"
)

// Snapshot is an immutable copy of the full session state, delivered to
// subscribers after every mutation.
type Snapshot struct {
	WalletAddress     string // empty iff no wallet is connected
	ChainID           int64  // 0 until reported by the provider
	NativeBalance     string // decimal string, never negative
	ReceiptBalance    string // decimal string, never negative
	VaultTotalAssets  string
	VaultTotalSupply  string
	VaultPaused       bool
	SelectedView      View
	SelectedAction    Action
	OperationInFlight bool
	Transactions      []Transaction // newest first
	Notifications     []Notification
}

// Connected reports whether a wallet identity is present.
func (s Snapshot) Connected() bool {
	return s.WalletAddress != ""
}

// Store is the single mutable shared state of the application.
//
// All mutation goes through its setter methods, each atomic with respect to
// the internal lock. Subscribers are invoked outside the lock with a value
// snapshot taken at the end of the mutation.
type Store struct {
	mu sync.Mutex

	walletAddress     string
	chainID           int64
	nativeBalance     string
	receiptBalance    string
	vaultTotalAssets  string
	vaultTotalSupply  string
	vaultPaused       bool
	selectedView      View
	selectedAction    Action
	operationInFlight bool
	transactions      []Transaction
	notifications     []Notification

	subscribers map[uint64]func(Snapshot)
	nextSubID   uint64
}

// NewStore creates a session store with all fields at their documented
// defaults.
func NewStore() *Store {
	s := &Store{
		subscribers: make(map[uint64]func(Snapshot)),
	}
	s.applyDefaults()
	return s
}

// applyDefaults resets every session field. Callers must hold s.mu.
func (s *Store) applyDefaults() {
	s.walletAddress = ""
	s.chainID = 0
	s.nativeBalance = "0"
	s.receiptBalance = "0"
	s.vaultTotalAssets = "0"
	s.vaultTotalSupply = "0"
	s.vaultPaused = false
	s.selectedView = ViewInvest
	s.selectedAction = ActionSubscribe
	s.operationInFlight = false
	s.transactions = nil
	s.notifications = nil
}

// snapshotLocked copies the current state. Callers must hold s.mu.
func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		WalletAddress:     s.walletAddress,
		ChainID:           s.chainID,
		NativeBalance:     s.nativeBalance,
		ReceiptBalance:    s.receiptBalance,
		VaultTotalAssets:  s.vaultTotalAssets,
		VaultTotalSupply:  s.vaultTotalSupply,
		VaultPaused:       s.vaultPaused,
		SelectedView:      s.selectedView,
		SelectedAction:    s.selectedAction,
		OperationInFlight: s.operationInFlight,
	}

	if len(s.transactions) > 0 {
		snap.Transactions = make([]Transaction, len(s.transactions))
		copy(snap.Transactions, s.transactions)
	}
	if len(s.notifications) > 0 {
		snap.Notifications = make([]Notification, len(s.notifications))
		copy(snap.Notifications, s.notifications)
	}

	return snap
}

// mutate applies fn under the lock and pushes the resulting snapshot to all
// subscribers after releasing it.
func (s *Store) mutate(fn func()) {
	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subscribers))
	for _, sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snap)
	}
}

// Snapshot returns a copy of the current session state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers fn to receive a snapshot after every mutation. The
// returned function removes the subscription; it is safe to call more than
// once.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// SetWalletAddress stores the connected wallet identity. An empty string
// means disconnected.
func (s *Store) SetWalletAddress(address string) {
	s.mutate(func() { s.walletAddress = address })
}

// SetChainID stores the network id reported by the provider.
func (s *Store) SetChainID(chainID int64) {
	s.mutate(func() { s.chainID = chainID })
}

// SetNativeBalance stores the wallet's native asset balance.
func (s *Store) SetNativeBalance(balance string) {
	s.mutate(func() { s.nativeBalance = balance })
}

// SetReceiptBalance stores the wallet's receipt asset balance.
func (s *Store) SetReceiptBalance(balance string) {
	s.mutate(func() { s.receiptBalance = balance })
}

// SetVaultStats stores the aggregate vault state in a single mutation.
func (s *Store) SetVaultStats(totalAssets, totalSupply string, paused bool) {
	s.mutate(func() {
		s.vaultTotalAssets = totalAssets
		s.vaultTotalSupply = totalSupply
		s.vaultPaused = paused
	})
}

// SetSelectedView stores the active UI view.
func (s *Store) SetSelectedView(v View) {
	s.mutate(func() { s.selectedView = v })
}

// SetSelectedAction stores the active vault action.
func (s *Store) SetSelectedAction(a Action) {
	s.mutate(func() { s.selectedAction = a })
}

// TryBeginOperation atomically claims the write in-flight guard. It returns
// false if another write operation is already in flight.
func (s *Store) TryBeginOperation() bool {
	claimed := false
	s.mutate(func() {
		if !s.operationInFlight {
			s.operationInFlight = true
			claimed = true
		}
	})
	return claimed
}

// EndOperation releases the write in-flight guard. It is safe to call when
// no operation is in flight.
func (s *Store) EndOperation() {
	s.mutate(func() { s.operationInFlight = false })
}

// AddTransaction prepends a transaction record to the log, evicting the
// oldest entries beyond the capacity of 50.
func (s *Store) AddTransaction(tx Transaction) {
	s.mutate(func() {
		log := make([]Transaction, 0, min(len(s.transactions)+1, transactionLogCapacity))
		log = append(log, tx)
		log = append(log, s.transactions...)
		if len(log) > transactionLogCapacity {
			log = log[:transactionLogCapacity]
		}
		s.transactions = log
	})
}

// SetTransactionHash records the broadcast hash of the transaction with the
// given id. All other record fields are left untouched. Unknown ids are
// ignored.
func (s *Store) SetTransactionHash(id, chainHash string) {
	s.mutate(func() {
		for i := range s.transactions {
			if s.transactions[i].ID == id {
				s.transactions[i].ChainHash = chainHash
				return
			}
		}
	})
}

// SetTransactionStatus transitions the transaction with the given id to the
// provided status. All other record fields are left untouched. Unknown ids
// are ignored.
func (s *Store) SetTransactionStatus(id string, status TransactionStatus) {
	s.mutate(func() {
		for i := range s.transactions {
			if s.transactions[i].ID == id {
				s.transactions[i].Status = status
				return
			}
		}
	})
}

// AddNotification appends a notification to the queue, assigning it a
// generated unique id, and returns that id.
func (s *Store) AddNotification(n Notification) string {
	n.ID = uuid.NewString()
	s.mutate(func() {
		s.notifications = append(s.notifications, n)
	})
	return n.ID
}

// RemoveNotification deletes the notification with the given id from the
// queue. Unknown ids are ignored.
func (s *Store) RemoveNotification(id string) {
	s.mutate(func() {
		for i := range s.notifications {
			if s.notifications[i].ID == id {
				s.notifications = append(s.notifications[:i], s.notifications[i+1:]...)
				return
			}
		}
	})
}

// Reset restores every session field to its default value, emptying the
// transaction log and the notification queue. It is used on disconnect since
// both are scoped to a wallet session.
func (s *Store) Reset() {
	s.mutate(s.applyDefaults)
}

// NewTransaction builds a pending transaction record with an empty chain
// hash, stamped with the current time.
func NewTransaction(id string, kind TransactionKind, amount string) Transaction {
	return Transaction{
		ID:        id,
		Kind:      kind,
		Amount:    amount,
		Status:    TransactionStatusPending,
		CreatedAt: time.Now(),
	}
}
