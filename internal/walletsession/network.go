package walletsession

import "github.com/gabapcia/pegvault/internal/pkg/types"

// NativeCurrency describes the chain's base currency metadata, used when
// asking the provider to add the target chain.
type NativeCurrency struct {
	Name     string `validate:"required"`
	Symbol   string `validate:"required"`
	Decimals int    `validate:"required"`
}

// NetworkDescriptor is the static description of the single target network
// this system operates against. All writes are gated on the wallet matching
// its ChainID.
type NetworkDescriptor struct {
	ChainID        int64     `validate:"required"` // canonical numeric chain id
	ChainIDHex     types.Hex `validate:"required"` // hex form used by provider calls
	Name           string    `validate:"required"` // display name
	RPCURL         string    `validate:"required,url"`
	ExplorerURL    string    `validate:"required,url"`
	NativeCurrency NativeCurrency
}

// AddressURL builds the block explorer URL for a wallet address.
func (n NetworkDescriptor) AddressURL(address string) string {
	return n.ExplorerURL + "/address/" + address
}

// TxURL builds the block explorer URL for a transaction hash.
func (n NetworkDescriptor) TxURL(hash string) string {
	return n.ExplorerURL + "/tx/" + hash
}
