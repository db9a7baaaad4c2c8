// Package config provides configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/fd1az/swap-settler/internal/apperror"
)

// Execution modes for the final settlement step.
const (
	ExecutionModeAPI     = "api"
	ExecutionModeOnchain = "onchain"
)

// Journal drivers.
const (
	JournalNone     = "none"
	JournalJSONL    = "jsonl"
	JournalPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Chain      ChainConfig      `mapstructure:"chain"`
	Wallet     WalletConfig     `mapstructure:"wallet"`
	ZeroEx     ZeroExConfig     `mapstructure:"zeroex"`
	Swap       SwapConfig       `mapstructure:"swap"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	Journal    JournalConfig    `mapstructure:"journal"`
	Telemetry  TelemetryConfig  `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFile     string `mapstructure:"log_file"`
	TUIMode     bool   `mapstructure:"-"` // set at runtime from the --cli flag
}

// ChainConfig holds RPC and transaction settings.
type ChainConfig struct {
	RPCURL              string        `mapstructure:"rpc_url"`
	ChainID             uint64        `mapstructure:"chain_id"`
	ExplorerTxURL       string        `mapstructure:"explorer_tx_url"`
	Permit2Address      string        `mapstructure:"permit2_address"`
	ReceiptTimeout      time.Duration `mapstructure:"receipt_timeout"`
	ReceiptPollInterval time.Duration `mapstructure:"receipt_poll_interval"`
	DefaultGasLimit     uint64        `mapstructure:"default_gas_limit"`
	GasLimitMarginPct   uint64        `mapstructure:"gas_limit_margin_pct"`
	MaxFeePerGasGwei    float64       `mapstructure:"max_fee_per_gas_gwei"`
	GasPriceTTL         time.Duration `mapstructure:"gas_price_ttl"`
}

// Permit2 returns the canonical Permit2 address as common.Address.
func (c *ChainConfig) Permit2() common.Address {
	return common.HexToAddress(c.Permit2Address)
}

// TxURL renders the explorer link for a transaction hash.
func (c *ChainConfig) TxURL(hash string) string {
	return strings.TrimRight(c.ExplorerTxURL, "/") + "/" + hash
}

// WalletConfig holds the signing key. Hex, with or without 0x.
type WalletConfig struct {
	PrivateKey string `mapstructure:"private_key"`
}

// ZeroExConfig holds 0x Swap API settings.
type ZeroExConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Version           string        `mapstructure:"version"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Timeout           time.Duration `mapstructure:"timeout"`
	SourcesCacheTTL   time.Duration `mapstructure:"sources_cache_ttl"`
}

// SwapConfig describes the default trade.
type SwapConfig struct {
	SellToken       string `mapstructure:"sell_token"`
	BuyToken        string `mapstructure:"buy_token"`
	SellAmount      string `mapstructure:"sell_amount"`
	AffiliateFeeBps uint32 `mapstructure:"affiliate_fee_bps"`
	CollectSurplus  bool   `mapstructure:"collect_surplus"`
}

// SellTokenAddress returns the sell token as common.Address.
func (c *SwapConfig) SellTokenAddress() common.Address {
	return common.HexToAddress(c.SellToken)
}

// BuyTokenAddress returns the buy token as common.Address.
func (c *SwapConfig) BuyTokenAddress() common.Address {
	return common.HexToAddress(c.BuyToken)
}

// SettlementConfig selects how signed quotes are executed.
type SettlementConfig struct {
	ExecutionMode string `mapstructure:"execution_mode"`
}

// JournalConfig selects where settlement records are written.
type JournalConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	Provider       string `mapstructure:"provider"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"log-level":      "app.log_level",
	"log-file":       "app.log_file",
	"rpc-url":        "chain.rpc_url",
	"sell-token":     "swap.sell_token",
	"buy-token":      "swap.buy_token",
	"sell-amount":    "swap.sell_amount",
	"execution-mode": "settlement.execution_mode",
	"journal":        "journal.driver",
	"journal-path":   "journal.path",
	"telemetry":      "telemetry.enabled",
}

// Load loads configuration from file, environment variables and, when
// given, command-line flags. Flags win over env, env over file.
func Load(configPath string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("SETTLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if flags != nil {
		if err := bindFlags(v, flags); err != nil {
			return nil, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, apperror.Internal(apperror.CodeConfigurationError, "read config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperror.Internal(apperror.CodeConfigurationError, "unmarshal config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return apperror.Internal(apperror.CodeConfigurationError, "bind flag "+name, err)
		}
	}
	return nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "SETTLER_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "SETTLER_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "SETTLER_LOG_LEVEL", "LOG_LEVEL")
	v.BindEnv("app.log_file", "SETTLER_LOG_FILE", "LOG_FILE")

	// Chain
	v.BindEnv("chain.rpc_url", "SETTLER_RPC_URL", "ALCHEMY_HTTP_TRANSPORT_URL")
	v.BindEnv("chain.chain_id", "SETTLER_CHAIN_ID", "CHAIN_ID")
	v.BindEnv("chain.explorer_tx_url", "SETTLER_EXPLORER_TX_URL")

	// Wallet
	v.BindEnv("wallet.private_key", "SETTLER_PRIVATE_KEY", "PRIVATE_KEY")

	// 0x
	v.BindEnv("zeroex.api_key", "SETTLER_ZERO_EX_API_KEY", "ZERO_EX_API_KEY")
	v.BindEnv("zeroex.base_url", "SETTLER_ZERO_EX_BASE_URL", "ZERO_EX_BASE_URL")

	// Swap
	v.BindEnv("swap.sell_amount", "SETTLER_SELL_AMOUNT")

	// Settlement & journal
	v.BindEnv("settlement.execution_mode", "SETTLER_EXECUTION_MODE")
	v.BindEnv("journal.driver", "SETTLER_JOURNAL_DRIVER")
	v.BindEnv("journal.dsn", "SETTLER_JOURNAL_DSN", "DATABASE_URL")

	// Telemetry
	v.BindEnv("telemetry.enabled", "SETTLER_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "SETTLER_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "SETTLER_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "swap-settler")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Scroll mainnet
	v.SetDefault("chain.chain_id", 534352)
	v.SetDefault("chain.explorer_tx_url", "https://scrollscan.co/tx")
	v.SetDefault("chain.permit2_address", "0x000000000022D473030F116dDEE9F6B43aC78BA3")
	v.SetDefault("chain.receipt_timeout", "2m")
	v.SetDefault("chain.receipt_poll_interval", "2s")
	v.SetDefault("chain.default_gas_limit", 100000)
	v.SetDefault("chain.gas_limit_margin_pct", 10)
	v.SetDefault("chain.max_fee_per_gas_gwei", 0)
	v.SetDefault("chain.gas_price_ttl", "12s")

	// 0x defaults
	v.SetDefault("zeroex.base_url", "https://api.0x.org")
	v.SetDefault("zeroex.version", "v2")
	v.SetDefault("zeroex.requests_per_minute", 60)
	v.SetDefault("zeroex.timeout", "15s")
	v.SetDefault("zeroex.sources_cache_ttl", "10m")

	// WETH -> wstETH on Scroll
	v.SetDefault("swap.sell_token", "0x5300000000000000000000000000000000000004")
	v.SetDefault("swap.buy_token", "0xf610A9dfB7C89644979b4A0f27063E9e7d7Cda32")
	v.SetDefault("swap.sell_amount", "0.1")
	v.SetDefault("swap.affiliate_fee_bps", 100)
	v.SetDefault("swap.collect_surplus", true)

	v.SetDefault("settlement.execution_mode", ExecutionModeAPI)

	v.SetDefault("journal.driver", JournalNone)
	v.SetDefault("journal.path", "settlements.jsonl")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "swap-settler")
	v.SetDefault("telemetry.provider", "console")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration. Missing secrets are reported by
// the environment variable an operator would set.
func (c *Config) Validate() error {
	required := []struct {
		value string
		name  string
	}{
		{c.Wallet.PrivateKey, "PRIVATE_KEY"},
		{c.ZeroEx.APIKey, "ZERO_EX_API_KEY"},
		{c.Chain.RPCURL, "ALCHEMY_HTTP_TRANSPORT_URL"},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return apperror.New(apperror.CodeRequiredField,
				apperror.WithMessage(fmt.Sprintf("%s is required", r.name)),
				apperror.WithContext(r.name))
		}
	}

	for key, addr := range map[string]string{
		"swap.sell_token":       c.Swap.SellToken,
		"swap.buy_token":        c.Swap.BuyToken,
		"chain.permit2_address": c.Chain.Permit2Address,
	} {
		if !common.IsHexAddress(addr) {
			return configError(fmt.Sprintf("invalid %s: %q", key, addr))
		}
	}

	if c.Swap.AffiliateFeeBps > 10000 {
		return configError(fmt.Sprintf("swap.affiliate_fee_bps must be <= 10000, got %d", c.Swap.AffiliateFeeBps))
	}

	switch c.Settlement.ExecutionMode {
	case ExecutionModeAPI, ExecutionModeOnchain:
	default:
		return configError(fmt.Sprintf("settlement.execution_mode must be %q or %q, got %q",
			ExecutionModeAPI, ExecutionModeOnchain, c.Settlement.ExecutionMode))
	}

	switch c.Journal.Driver {
	case JournalNone, JournalJSONL:
	case JournalPostgres:
		if c.Journal.DSN == "" {
			return configError("journal.dsn is required for the postgres journal")
		}
	default:
		return configError(fmt.Sprintf("unknown journal.driver %q", c.Journal.Driver))
	}

	if c.Chain.ChainID == 0 {
		return configError("chain.chain_id is required")
	}

	return nil
}

func configError(msg string) error {
	return apperror.New(apperror.CodeConfigurationError, apperror.WithMessage(msg))
}
