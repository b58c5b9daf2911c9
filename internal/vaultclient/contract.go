package vaultclient

import "context"

// VaultStats is the aggregate read-only contract state, independent of any
// wallet identity. Amounts are decimal token strings.
type VaultStats struct {
	TotalAssets string // total native asset backing the vault
	TotalSupply string // total receipt asset supply
}

// Receipt is the resolved on-chain outcome of a submitted write.
type Receipt struct {
	Hash      string
	Succeeded bool
}

// RevertError carries a contract-supplied revert reason. When present, it is
// the most specific failure message available and takes precedence over any
// generic error text in user-facing notifications.
type RevertError struct {
	Reason string
}

// Error implements the error interface.
func (e *RevertError) Error() string {
	return e.Reason
}

// Contract abstracts the peg-vault contract endpoint: aggregate and per-user
// reads, the liquidity pre-check, the two write submissions, and the
// confirmation wait.
//
// Amounts cross this boundary as decimal token strings; unit conversion is
// the adapter's concern. Both writes return a chain hash synchronously on
// submission; confirmation is awaited separately via WaitForReceipt.
type Contract interface {
	// VaultStats returns the vault's aggregate state.
	VaultStats(ctx context.Context) (VaultStats, error)

	// Paused reports whether the vault contract is paused.
	Paused(ctx context.Context) (bool, error)

	// ReceiptBalance returns the receipt asset balance of the given address.
	ReceiptBalance(ctx context.Context, address string) (string, error)

	// CheckLiquidity reports whether the vault holds enough native asset to
	// redeem the given receipt amount.
	CheckLiquidity(ctx context.Context, amount string) (bool, error)

	// PreviewSubscribe returns the receipt amount minted for a native
	// deposit of the given size.
	PreviewSubscribe(ctx context.Context, amount string) (string, error)

	// PreviewRedeem returns the native amount returned for burning the
	// given receipt amount.
	PreviewRedeem(ctx context.Context, amount string) (string, error)

	// SubmitSubscribe broadcasts a deposit of the given native amount from
	// the given address and returns the transaction hash.
	SubmitSubscribe(ctx context.Context, from, amount string) (string, error)

	// SubmitRedeem broadcasts a redemption of the given receipt amount from
	// the given address and returns the transaction hash.
	SubmitRedeem(ctx context.Context, from, amount string) (string, error)

	// WaitForReceipt blocks until the transaction with the given hash is
	// mined and returns its receipt.
	WaitForReceipt(ctx context.Context, hash string) (Receipt, error)
}
