package ethereum

import (
	"context"
	"encoding/json"

	"github.com/gabapcia/pegvault/internal/pkg/types"
	"github.com/gabapcia/pegvault/internal/walletsession"
)

// fetchAccounts runs an account-listing RPC method and decodes the result.
func (c *client) fetchAccounts(ctx context.Context, method string) ([]string, error) {
	data, err := c.conn.Fetch(ctx, method)
	if err != nil {
		return nil, wrapError(err)
	}

	var accounts []string
	return accounts, json.Unmarshal(data, &accounts)
}

// RequestAccounts implements walletsession.Provider. It may prompt the user
// on the wallet side.
func (c *client) RequestAccounts(ctx context.Context) ([]string, error) {
	return c.fetchAccounts(ctx, "eth_requestAccounts")
}

// Accounts implements walletsession.Provider. It never prompts; an empty
// result means no prior authorization exists.
func (c *client) Accounts(ctx context.Context) ([]string, error) {
	return c.fetchAccounts(ctx, "eth_accounts")
}

// ChainID implements walletsession.Provider.
func (c *client) ChainID(ctx context.Context) (int64, error) {
	data, err := c.conn.Fetch(ctx, "eth_chainId")
	if err != nil {
		return 0, wrapError(err)
	}

	var chainID types.Hex
	if err := json.Unmarshal(data, &chainID); err != nil {
		return 0, err
	}
	return chainID.Int(), nil
}

// NativeBalance implements walletsession.Provider. The wei quantity returned
// by the node is converted to a decimal token amount string.
func (c *client) NativeBalance(ctx context.Context, address string) (string, error) {
	data, err := c.conn.Fetch(ctx, "eth_getBalance", address, "latest")
	if err != nil {
		return "", wrapError(err)
	}

	var balance types.Hex
	if err := json.Unmarshal(data, &balance); err != nil {
		return "", err
	}
	return types.FormatEther(balance.Big()), nil
}

// SwitchChain implements walletsession.Provider.
func (c *client) SwitchChain(ctx context.Context, chainID types.Hex) error {
	_, err := c.conn.Fetch(ctx, "wallet_switchEthereumChain", map[string]any{
		"chainId": chainID,
	})
	return wrapError(err)
}

// AddChain implements walletsession.Provider, using the EIP-3085 chain
// descriptor shape.
func (c *client) AddChain(ctx context.Context, network walletsession.NetworkDescriptor) error {
	_, err := c.conn.Fetch(ctx, "wallet_addEthereumChain", map[string]any{
		"chainId":   network.ChainIDHex,
		"chainName": network.Name,
		"nativeCurrency": map[string]any{
			"name":     network.NativeCurrency.Name,
			"symbol":   network.NativeCurrency.Symbol,
			"decimals": network.NativeCurrency.Decimals,
		},
		"rpcUrls":           []string{network.RPCURL},
		"blockExplorerUrls": []string{network.ExplorerURL},
	})
	return wrapError(err)
}
