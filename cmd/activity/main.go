package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"activityScope/internal/activity"
	"activityScope/internal/config"
	"activityScope/internal/indexed"
	"activityScope/internal/model"
	"activityScope/internal/rpc"
	"activityScope/internal/storage"
	"activityScope/internal/storage/postgres"
	"activityScope/internal/tokencache"
)

func main() {
	root := &cobra.Command{
		Use:          "activity",
		Short:        "Soroban token activity client",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	addressCmd := &cobra.Command{
		Use:   "address <account>",
		Short: "Fetch token and fee activity for an account",
		Args:  cobra.ExactArgs(1),
		RunE:  runAddress,
	}
	addCommonFlags(addressCmd)
	root.AddCommand(addressCmd)

	contractCmd := &cobra.Command{
		Use:   "contract <contract-id>",
		Short: "Fetch token activity emitted by a contract",
		Args:  cobra.ExactArgs(1),
		RunE:  runContract,
	}
	addCommonFlags(contractCmd)
	root.AddCommand(contractCmd)

	networkCmd := &cobra.Command{
		Use:   "network",
		Short: "Fetch recent token activity across the network",
		RunE:  runNetwork,
	}
	addCommonFlags(networkCmd)
	root.AddCommand(networkCmd)

	poolCmd := &cobra.Command{
		Use:   "pool <pool-id>",
		Short: "Decode liquidity pool state from the ledger",
		Args:  cobra.ExactArgs(1),
		RunE:  runPool,
	}
	addCommonFlags(poolCmd)
	root.AddCommand(poolCmd)

	txCmd := &cobra.Command{
		Use:   "tx <hash>",
		Short: "Look up a transaction by hash",
		Args:  cobra.ExactArgs(1),
		RunE:  runTx,
	}
	addCommonFlags(txCmd)
	root.AddCommand(txCmd)

	healthCmd := &cobra.Command{
		Use:   "health",
		Short: "Report RPC node health and retention window",
		RunE:  runHealth,
	}
	addCommonFlags(healthCmd)
	root.AddCommand(healthCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("rpc", "", "primary RPC URL")
	cmd.Flags().String("secondary-rpc", "", "fallback RPC URL")
	cmd.Flags().String("indexer-url", "", "indexed activity source URL")
	cmd.Flags().String("network", "testnet", "network (pubnet, testnet, or custom)")
	cmd.Flags().String("passphrase", "", "network passphrase (derived for known networks)")
	cmd.Flags().String("fee-contract", "", "native asset contract id for fee events")
	cmd.Flags().Uint32("lookback-ledgers", 120960, "ledger window to query back from latest")
	cmd.Flags().Int("limit", 50, "maximum records to return")
	cmd.Flags().Duration("timeout", 15*time.Second, "per-request timeout")
	cmd.Flags().Int("max-retries", 3, "maximum retry attempts")
	cmd.Flags().Duration("retry-backoff", 300*time.Millisecond, "initial retry backoff")
	cmd.Flags().Duration("retry-backoff-max", 2*time.Second, "retry backoff ceiling")
	cmd.Flags().String("cache", "memory", "token metadata cache (memory, postgres, redis)")
	cmd.Flags().String("pg-dsn", "", "Postgres DSN for the token metadata cache")
	cmd.Flags().String("redis-addr", "", "Redis address for the token metadata cache")
	cmd.Flags().String("out", "./data/activity.jsonl", "output JSONL path")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func runAddress(cmd *cobra.Command, args []string) error {
	return runActivity(cmd, func(ctx context.Context, svc *activity.Service, limit int) (model.ActivityResult, error) {
		return svc.AddressActivity(ctx, args[0], limit)
	})
}

func runContract(cmd *cobra.Command, args []string) error {
	return runActivity(cmd, func(ctx context.Context, svc *activity.Service, limit int) (model.ActivityResult, error) {
		return svc.ContractActivity(ctx, args[0], limit)
	})
}

func runNetwork(cmd *cobra.Command, _ []string) error {
	return runActivity(cmd, func(ctx context.Context, svc *activity.Service, limit int) (model.ActivityResult, error) {
		return svc.NetworkActivity(ctx, limit)
	})
}

func runActivity(cmd *cobra.Command, query func(context.Context, *activity.Service, int) (model.ActivityResult, error)) error {
	cfg, logger, err := loadCommand(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc, closeFn, err := buildService(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeFn()

	result, err := query(ctx, svc, cfg.Limit)
	if err != nil {
		return err
	}

	logger.Info("activity fetched",
		zap.Int("records", len(result.Events)),
		zap.String("source", result.Source),
		zap.Bool("partial", result.Partial),
	)

	if cfg.Out != "" {
		sink := storage.NewJsonlStorage(cfg.Out)
		if err := sink.PutActivityBatch(result.Events); err != nil {
			return err
		}
	}

	if cfg.PgDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return fmt.Errorf("activity store: %w", err)
		}
		defer store.Close()
		if err := store.UpsertActivity(ctx, result.Events); err != nil {
			return fmt.Errorf("persist activity: %w", err)
		}
	}

	return printJSON(result)
}

// buildService wires the transports and cache selected by config. The
// returned func releases cache connections.
func buildService(ctx context.Context, cfg config.Config, logger *zap.Logger) (*activity.Service, func(), error) {
	if cfg.PrimaryRPCURL == "" {
		return nil, nil, fmt.Errorf("rpc url is required")
	}

	policy := retryPolicy(cfg)
	primary := rpc.NewClient(cfg.PrimaryRPCURL, policy, logger)

	var secondary activity.LedgerRPC
	if cfg.SecondaryRPCURL != "" {
		secondary = rpc.NewClient(cfg.SecondaryRPCURL, policy, logger)
	}

	var source activity.Source
	if cfg.IndexerURL != "" {
		source = indexed.NewClient(cfg.IndexerURL, cfg.Timeout, logger)
	}

	closeFn := func() {}
	var cache tokencache.Cache
	switch cfg.Cache {
	case "", "memory":
		cache = tokencache.NewMemory()
	case "postgres":
		store, err := tokencache.NewPostgres(ctx, cfg.PgDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("token cache: %w", err)
		}
		cache = store
		closeFn = store.Close
	case "redis":
		store, err := tokencache.NewRedis(ctx, cfg.RedisAddr, "", 0)
		if err != nil {
			return nil, nil, fmt.Errorf("token cache: %w", err)
		}
		cache = store
		closeFn = func() { store.Close() }
	default:
		return nil, nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache)
	}

	svc := activity.NewService(activity.Config{
		Network:         cfg.Network,
		FeeContractID:   cfg.FeeContract,
		LookbackLedgers: cfg.LookbackLedgers,
		DefaultLimit:    cfg.Limit,
	}, primary, secondary, source, cache, logger)

	return svc, closeFn, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
