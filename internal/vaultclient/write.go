package vaultclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabapcia/pegvault/internal/pkg/logger"
	"github.com/gabapcia/pegvault/internal/pkg/types"
	"github.com/gabapcia/pegvault/internal/pkg/validator"
	"github.com/gabapcia/pegvault/internal/session"

	"github.com/google/uuid"
)

// writeRequest is a validated user request for one of the two vault writes.
type writeRequest struct {
	Kind   session.TransactionKind `validate:"required,oneof=subscribe redeem"`
	Amount string                  `validate:"required"`
}

// buildWriteRequest constructs and validates a writeRequest. The amount must
// be a well-formed, non-negative decimal token string.
func buildWriteRequest(kind session.TransactionKind, amount string) (writeRequest, error) {
	req := writeRequest{
		Kind:   kind,
		Amount: amount,
	}
	if err := validator.Validate(req); err != nil {
		return req, err
	}

	if _, err := types.ParseEther(amount); err != nil {
		return req, err
	}

	return req, nil
}

// Subscribe implements Service.
func (s *service) Subscribe(ctx context.Context, amount string) error {
	return s.executeWrite(ctx, session.TransactionKindSubscribe, amount)
}

// Redeem implements Service.
func (s *service) Redeem(ctx context.Context, amount string) error {
	return s.executeWrite(ctx, session.TransactionKindRedeem, amount)
}

// PreviewSubscribe implements Service.
func (s *service) PreviewSubscribe(ctx context.Context, amount string) (string, error) {
	if _, err := buildWriteRequest(session.TransactionKindSubscribe, amount); err != nil {
		return "", err
	}
	return s.contract.PreviewSubscribe(ctx, amount)
}

// PreviewRedeem implements Service.
func (s *service) PreviewRedeem(ctx context.Context, amount string) (string, error) {
	if _, err := buildWriteRequest(session.TransactionKindRedeem, amount); err != nil {
		return "", err
	}
	return s.contract.PreviewRedeem(ctx, amount)
}

// executeWrite drives the shared write-transaction lifecycle protocol:
//
//  1. Precondition: connected identity on the target network; fails
//     immediately otherwise with no record created.
//  2. Redeem only: liquidity pre-check; insufficient liquidity aborts before
//     any record or chain interaction.
//  3. Unique id, in-flight guard, pending record with empty hash, pending
//     notification.
//  4. Submission to the signer-bound contract.
//  5. Hash patched into the record plus an info notification; status unchanged.
//  6. Confirmation wait; success transitions the record and triggers the
//     three concurrent refreshes, any other outcome marks it failed with the
//     most specific available message.
//
// The in-flight guard release is deferred, so it holds on every exit path.
func (s *service) executeWrite(ctx context.Context, kind session.TransactionKind, amount string) error {
	req, err := buildWriteRequest(kind, amount)
	if err != nil {
		return err
	}

	snap := s.store.Snapshot()
	if !snap.Connected() {
		return ErrNotConnected
	}
	if snap.ChainID != s.targetChainID {
		return ErrWrongNetwork
	}

	if req.Kind == session.TransactionKindRedeem {
		if err := s.checkLiquidity(ctx, req.Amount); err != nil {
			return err
		}
	}

	if !s.store.TryBeginOperation() {
		return ErrOperationInFlight
	}
	defer s.store.EndOperation()

	txID := uuid.NewString()
	s.store.AddTransaction(session.NewTransaction(txID, req.Kind, req.Amount))
	s.notifier.Push(session.Notification{
		Kind:    session.NotificationKindPending,
		Title:   "Transaction Pending",
		Message: s.pendingMessage(req),
	})

	hash, err := s.submit(ctx, req, snap.WalletAddress)
	if err != nil {
		s.failTransaction(ctx, req, txID, "", err)
		return err
	}

	s.store.SetTransactionHash(txID, hash)
	s.notifier.Push(session.Notification{
		Kind:      session.NotificationKindInfo,
		Title:     "Transaction Submitted",
		Message:   "Waiting for confirmation...",
		ChainHash: hash,
	})

	receipt, err := s.contract.WaitForReceipt(ctx, hash)
	if err != nil {
		s.failTransaction(ctx, req, txID, hash, err)
		return err
	}
	if !receipt.Succeeded {
		s.failTransaction(ctx, req, txID, hash, ErrTransactionFailed)
		return ErrTransactionFailed
	}

	s.store.SetTransactionStatus(txID, session.TransactionStatusSuccess)
	s.notifier.Push(session.Notification{
		Kind:      session.NotificationKindSuccess,
		Title:     writeTitle(req.Kind) + " Successful!",
		Message:   s.successMessage(req),
		ChainHash: hash,
	})

	s.refreshAfterSuccess(ctx, snap.WalletAddress)
	return nil
}

// checkLiquidity performs the redeem pre-check. Both an explicit negative
// answer and a failed check abort the operation with an error notification;
// no transaction record exists yet at this point.
func (s *service) checkLiquidity(ctx context.Context, amount string) error {
	ok, err := s.contract.CheckLiquidity(ctx, amount)
	if err != nil {
		logger.Error(ctx, "liquidity check failed", "amount", amount, "error", err)
		s.notifier.Push(session.Notification{
			Kind:    session.NotificationKindError,
			Title:   "Redeem Failed",
			Message: specificMessage(err, "Failed to verify vault liquidity"),
		})
		return err
	}
	if !ok {
		s.notifier.Push(session.Notification{
			Kind:    session.NotificationKindError,
			Title:   "Redeem Failed",
			Message: "Insufficient vault liquidity",
		})
		return ErrInsufficientLiquidity
	}
	return nil
}

// submit broadcasts the write call appropriate for the request kind.
func (s *service) submit(ctx context.Context, req writeRequest, from string) (string, error) {
	if req.Kind == session.TransactionKindSubscribe {
		return s.contract.SubmitSubscribe(ctx, from, req.Amount)
	}
	return s.contract.SubmitRedeem(ctx, from, req.Amount)
}

// failTransaction marks the record failed and emits the error notification,
// preferring a contract-supplied revert reason over generic messages.
func (s *service) failTransaction(ctx context.Context, req writeRequest, txID, hash string, err error) {
	logger.Error(ctx, "vault write failed",
		"transaction.id", txID,
		"transaction.kind", req.Kind,
		"transaction.hash", hash,
		"error", err,
	)

	s.store.SetTransactionStatus(txID, session.TransactionStatusFailed)
	s.notifier.Push(session.Notification{
		Kind:      session.NotificationKindError,
		Title:     writeTitle(req.Kind) + " Failed",
		Message:   specificMessage(err, "Transaction failed"),
		ChainHash: hash,
	})
}

// pendingMessage describes the in-progress operation, e.g. "Subscribing 5 ANKR...".
func (s *service) pendingMessage(req writeRequest) string {
	if req.Kind == session.TransactionKindSubscribe {
		return fmt.Sprintf("Subscribing %s %s...", req.Amount, s.nativeSymbol)
	}
	return fmt.Sprintf("Redeeming %s %s...", req.Amount, s.receiptSymbol)
}

// successMessage describes the received asset. Subscribe mints receipt
// tokens 1:1; redeem returns native tokens 1:1.
func (s *service) successMessage(req writeRequest) string {
	if req.Kind == session.TransactionKindSubscribe {
		return fmt.Sprintf("Received %s %s", req.Amount, s.receiptSymbol)
	}
	return fmt.Sprintf("Received %s %s", req.Amount, s.nativeSymbol)
}

// writeTitle maps a transaction kind to its notification title prefix.
func writeTitle(kind session.TransactionKind) string {
	if kind == session.TransactionKindSubscribe {
		return "Subscribe"
	}
	return "Redeem"
}

// specificMessage extracts the most specific user-facing message from a
// write failure: a contract revert reason first, then the error text, then
// the given fallback.
func specificMessage(err error, fallback string) string {
	var revert *RevertError
	if errors.As(err, &revert) && revert.Reason != "" {
		return revert.Reason
	}
	if err != nil && err.Error() != "" {
		return err.Error()
	}
	return fallback
}
