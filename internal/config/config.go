package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stellar/go/network"
)

// Well-known native-asset contract ids per network.
const (
	PubnetXLMContract  = "CAS3J7GYLGXMF6TDJBBYYSE3HQ6BBSMLNUQ34T6TZMYMW2EVH34XOWMA"
	TestnetXLMContract = "CDLZFC3SYJYDZT7K67VZ75HPJVIEUVNIXF47ZG2FB2RMQQVU2HHGCYSC"
)

// Config holds configuration values loaded from flags, env, or config file.
type Config struct {
	PrimaryRPCURL   string
	SecondaryRPCURL string
	IndexerURL      string
	Network         string
	Passphrase      string
	FeeContract     string
	LookbackLedgers uint32
	Limit           int
	Timeout         time.Duration
	MaxRetries      int
	RetryBackoff    time.Duration
	RetryBackoffMax time.Duration
	Cache           string
	PgDSN           string
	RedisAddr       string
	Out             string
	LogLevel        string
}

// Load merges config file, environment variables, and flags into Config.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("ACTIVITY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("network", "testnet")
	v.SetDefault("lookback-ledgers", uint32(120960))
	v.SetDefault("limit", 50)
	v.SetDefault("timeout", 15*time.Second)
	v.SetDefault("max-retries", 3)
	v.SetDefault("retry-backoff", 300*time.Millisecond)
	v.SetDefault("retry-backoff-max", 2*time.Second)
	v.SetDefault("cache", "memory")
	v.SetDefault("out", "./data/activity.jsonl")
	v.SetDefault("log-level", "info")

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	cfg := Config{
		PrimaryRPCURL:   v.GetString("rpc"),
		SecondaryRPCURL: v.GetString("secondary-rpc"),
		IndexerURL:      v.GetString("indexer-url"),
		Network:         v.GetString("network"),
		Passphrase:      v.GetString("passphrase"),
		FeeContract:     v.GetString("fee-contract"),
		LookbackLedgers: v.GetUint32("lookback-ledgers"),
		Limit:           v.GetInt("limit"),
		Timeout:         v.GetDuration("timeout"),
		MaxRetries:      v.GetInt("max-retries"),
		RetryBackoff:    v.GetDuration("retry-backoff"),
		RetryBackoffMax: v.GetDuration("retry-backoff-max"),
		Cache:           v.GetString("cache"),
		PgDSN:           v.GetString("pg-dsn"),
		RedisAddr:       v.GetString("redis-addr"),
		Out:             v.GetString("out"),
		LogLevel:        v.GetString("log-level"),
	}

	if err := cfg.applyNetworkDefaults(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// applyNetworkDefaults fills the passphrase and fee contract for well-known
// networks when they are not set explicitly.
func (c *Config) applyNetworkDefaults() error {
	switch c.Network {
	case "pubnet", "public":
		if c.Passphrase == "" {
			c.Passphrase = network.PublicNetworkPassphrase
		}
		if c.FeeContract == "" {
			c.FeeContract = PubnetXLMContract
		}
	case "testnet":
		if c.Passphrase == "" {
			c.Passphrase = network.TestNetworkPassphrase
		}
		if c.FeeContract == "" {
			c.FeeContract = TestnetXLMContract
		}
	default:
		if c.Passphrase == "" || c.FeeContract == "" {
			return fmt.Errorf("custom network %q requires passphrase and fee-contract", c.Network)
		}
	}
	return nil
}
