package ethereum

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/gabapcia/pegvault/internal/pkg/types"
	"github.com/gabapcia/pegvault/internal/vaultclient"
)

// errReceiptNotReady signals that the transaction has not been mined yet and
// the receipt poll should retry.
var errReceiptNotReady = errors.New("transaction receipt not available yet")

// call performs a read-only eth_call against the vault contract and returns
// the raw ABI-encoded result.
func (c *client) call(ctx context.Context, data types.Hex) (types.Hex, error) {
	raw, err := c.conn.Fetch(ctx, "eth_call", map[string]any{
		"to":   c.contractAddress,
		"data": data,
	}, "latest")
	if err != nil {
		return "", wrapError(err)
	}

	var result types.Hex
	return result, json.Unmarshal(raw, &result)
}

// sendTransaction submits a state-changing call signed by the wallet node.
func (c *client) sendTransaction(ctx context.Context, params map[string]any) (string, error) {
	raw, err := c.conn.Fetch(ctx, "eth_sendTransaction", params)
	if err != nil {
		return "", wrapError(err)
	}

	var hash string
	return hash, json.Unmarshal(raw, &hash)
}

// VaultStats implements vaultclient.Contract via getVaultStats().
func (c *client) VaultStats(ctx context.Context) (vaultclient.VaultStats, error) {
	result, err := c.call(ctx, callData("getVaultStats()"))
	if err != nil {
		return vaultclient.VaultStats{}, err
	}

	totalAssets, err := decodeUint256(result, 0)
	if err != nil {
		return vaultclient.VaultStats{}, err
	}
	totalSupply, err := decodeUint256(result, 1)
	if err != nil {
		return vaultclient.VaultStats{}, err
	}

	return vaultclient.VaultStats{
		TotalAssets: types.FormatEther(totalAssets),
		TotalSupply: types.FormatEther(totalSupply),
	}, nil
}

// Paused implements vaultclient.Contract via paused().
func (c *client) Paused(ctx context.Context) (bool, error) {
	result, err := c.call(ctx, callData("paused()"))
	if err != nil {
		return false, err
	}
	return decodeBool(result, 0)
}

// ReceiptBalance implements vaultclient.Contract via getUserStats(address).
func (c *client) ReceiptBalance(ctx context.Context, address string) (string, error) {
	encoded, err := encodeAddress(address)
	if err != nil {
		return "", err
	}

	result, err := c.call(ctx, callData("getUserStats(address)", encoded))
	if err != nil {
		return "", err
	}

	balance, err := decodeUint256(result, 0)
	if err != nil {
		return "", err
	}
	return types.FormatEther(balance), nil
}

// CheckLiquidity implements vaultclient.Contract via checkLiquidity(uint256).
func (c *client) CheckLiquidity(ctx context.Context, amount string) (bool, error) {
	wei, err := types.ParseEther(amount)
	if err != nil {
		return false, err
	}

	result, err := c.call(ctx, callData("checkLiquidity(uint256)", encodeUint256(wei)))
	if err != nil {
		return false, err
	}
	return decodeBool(result, 0)
}

// previewCall runs one of the preview read methods and formats the result.
func (c *client) previewCall(ctx context.Context, signature, amount string) (string, error) {
	wei, err := types.ParseEther(amount)
	if err != nil {
		return "", err
	}

	result, err := c.call(ctx, callData(signature, encodeUint256(wei)))
	if err != nil {
		return "", err
	}

	preview, err := decodeUint256(result, 0)
	if err != nil {
		return "", err
	}
	return types.FormatEther(preview), nil
}

// PreviewSubscribe implements vaultclient.Contract via previewSubscribe(uint256).
func (c *client) PreviewSubscribe(ctx context.Context, amount string) (string, error) {
	return c.previewCall(ctx, "previewSubscribe(uint256)", amount)
}

// PreviewRedeem implements vaultclient.Contract via previewRedeem(uint256).
func (c *client) PreviewRedeem(ctx context.Context, amount string) (string, error) {
	return c.previewCall(ctx, "previewRedeem(uint256)", amount)
}

// SubmitSubscribe implements vaultclient.Contract. The deposit travels as
// the transaction value of a payable subscribe() call.
func (c *client) SubmitSubscribe(ctx context.Context, from, amount string) (string, error) {
	wei, err := types.ParseEther(amount)
	if err != nil {
		return "", err
	}

	return c.sendTransaction(ctx, map[string]any{
		"from":  from,
		"to":    c.contractAddress,
		"data":  callData("subscribe()"),
		"value": types.HexFromBig(wei),
	})
}

// SubmitRedeem implements vaultclient.Contract. The receipt amount travels
// as the redeem(uint256) argument.
func (c *client) SubmitRedeem(ctx context.Context, from, amount string) (string, error) {
	wei, err := types.ParseEther(amount)
	if err != nil {
		return "", err
	}

	return c.sendTransaction(ctx, map[string]any{
		"from": from,
		"to":   c.contractAddress,
		"data": callData("redeem(uint256)", encodeUint256(wei)),
	})
}

// receiptResponse is the subset of an Ethereum transaction receipt this
// client cares about.
type receiptResponse struct {
	TransactionHash string    `json:"transactionHash"`
	Status          types.Hex `json:"status"` // "0x1" success, "0x0" failure
}

// WaitForReceipt implements vaultclient.Contract. It polls
// eth_getTransactionReceipt through the configured retry policy until the
// transaction is mined or the attempts are exhausted.
func (c *client) WaitForReceipt(ctx context.Context, hash string) (vaultclient.Receipt, error) {
	var receipt receiptResponse

	err := c.receiptRetry.Execute(ctx, func() error {
		raw, err := c.conn.Fetch(ctx, "eth_getTransactionReceipt", hash)
		if err != nil {
			return wrapError(err)
		}
		if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
			return errReceiptNotReady
		}
		return json.Unmarshal(raw, &receipt)
	})
	if err != nil {
		return vaultclient.Receipt{}, err
	}

	return vaultclient.Receipt{
		Hash:      receipt.TransactionHash,
		Succeeded: receipt.Status.Int() == 1,
	}, nil
}
