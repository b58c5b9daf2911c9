// Package config loads the application configuration from the environment
// (prefix "PEGVAULT"). Defaults describe the Neura testnet deployment of the
// peg-vault contract; every value can be overridden.
package config

import (
	"time"

	"github.com/gabapcia/pegvault/internal/pkg/types"
	"github.com/gabapcia/pegvault/internal/pkg/validator"
	"github.com/gabapcia/pegvault/internal/walletsession"

	"github.com/kelseyhightower/envconfig"
)

// envPrefix namespaces all environment variables read by Load.
const envPrefix = "pegvault"

// Config is the full application configuration.
type Config struct {
	LogLevel         string `envconfig:"LOG_LEVEL" default:"info"`
	TelemetryEnabled bool   `envconfig:"TELEMETRY_ENABLED" default:"false"`

	RPCEndpoint string `envconfig:"RPC_ENDPOINT" default:"https://rpc.neura-testnet.ankr.com" validate:"required,url"`

	ChainID     int64  `envconfig:"CHAIN_ID" default:"267" validate:"required"`
	ChainName   string `envconfig:"CHAIN_NAME" default:"Neura Testnet" validate:"required"`
	ExplorerURL string `envconfig:"EXPLORER_URL" default:"https://explorer.neura-testnet.ankr.com" validate:"required,url"`

	NativeCurrencyName     string `envconfig:"NATIVE_CURRENCY_NAME" default:"ANKR" validate:"required"`
	NativeCurrencySymbol   string `envconfig:"NATIVE_CURRENCY_SYMBOL" default:"ANKR" validate:"required"`
	NativeCurrencyDecimals int    `envconfig:"NATIVE_CURRENCY_DECIMALS" default:"18" validate:"required"`
	ReceiptSymbol          string `envconfig:"RECEIPT_SYMBOL" default:"CASH" validate:"required"`

	ContractAddress string `envconfig:"CONTRACT_ADDRESS" default:"0xddA245FF69d2630dBB38Df217fc0361849F5ce8a" validate:"required"`

	PollInterval    time.Duration `envconfig:"POLL_INTERVAL" default:"10s" validate:"required"`
	NotificationTTL time.Duration `envconfig:"NOTIFICATION_TTL" default:"5s" validate:"required"`
}

// Load reads and validates the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return Config{}, err
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// NetworkDescriptor assembles the target network descriptor from the
// configured values.
func (c Config) NetworkDescriptor() walletsession.NetworkDescriptor {
	return walletsession.NetworkDescriptor{
		ChainID:     c.ChainID,
		ChainIDHex:  types.HexFromInt(c.ChainID),
		Name:        c.ChainName,
		RPCURL:      c.RPCEndpoint,
		ExplorerURL: c.ExplorerURL,
		NativeCurrency: walletsession.NativeCurrency{
			Name:     c.NativeCurrencyName,
			Symbol:   c.NativeCurrencySymbol,
			Decimals: c.NativeCurrencyDecimals,
		},
	}
}
