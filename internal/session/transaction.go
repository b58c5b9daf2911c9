package session

import "time"

// TransactionKind identifies which of the two vault operations produced a
// transaction record.
type TransactionKind string

const (
	// TransactionKindSubscribe deposits the native asset and mints the receipt asset.
	TransactionKindSubscribe TransactionKind = "subscribe"

	// TransactionKindRedeem burns the receipt asset and returns the native asset.
	TransactionKindRedeem TransactionKind = "redeem"
)

// TransactionStatus tracks the lifecycle of a submitted write operation.
//
// A record is created as pending, gains a chain hash once the submission is
// broadcast, and terminates as either success or failed.
type TransactionStatus string

const (
	TransactionStatusPending TransactionStatus = "pending"
	TransactionStatusSuccess TransactionStatus = "success"
	TransactionStatusFailed  TransactionStatus = "failed"
)

// Transaction is a session-scoped record of one vault write operation.
//
// ID, Kind, Amount and CreatedAt are immutable after creation; only ChainHash
// and Status are mutated in place as the operation progresses. Records are
// owned exclusively by the Store and never deleted except by log-capacity
// eviction.
type Transaction struct {
	ID        string            // unique id, assigned at submission time
	Kind      TransactionKind   // subscribe or redeem
	Amount    string            // decimal token amount as entered by the user
	ChainHash string            // empty until the submission is broadcast
	Status    TransactionStatus // pending, success or failed
	CreatedAt time.Time         // submission timestamp
}
