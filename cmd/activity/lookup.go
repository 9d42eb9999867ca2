package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"activityScope/internal/config"
	"activityScope/internal/pool"
	"activityScope/internal/rpc"
)

func runPool(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadCommand(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PrimaryRPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := rpc.NewClient(cfg.PrimaryRPCURL, retryPolicy(cfg), logger)
	decoder := pool.NewDecoder(client, cfg.Passphrase, logger)

	state, err := decoder.DecodePool(ctx, args[0])
	if err != nil {
		return err
	}
	if state == nil {
		logger.Info("no liquidity pool entry", zap.String("pool", args[0]))
		return printJSON(nil)
	}

	return printJSON(state)
}

func runTx(cmd *cobra.Command, args []string) error {
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

	info, err := svc.Transaction(ctx, args[0])
	if err != nil {
		return err
	}

	return printJSON(info)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := loadCommand(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.PrimaryRPCURL == "" {
		return fmt.Errorf("rpc url is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := rpc.NewClient(cfg.PrimaryRPCURL, retryPolicy(cfg), logger)
	health, err := client.GetHealth(ctx)
	if err != nil {
		return err
	}

	return printJSON(health)
}

func loadCommand(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return config.Config{}, nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

func retryPolicy(cfg config.Config) rpc.RetryPolicy {
	return rpc.RetryPolicy{
		Timeout:    cfg.Timeout,
		MaxRetries: cfg.MaxRetries,
		Backoff:    cfg.RetryBackoff,
		BackoffMax: cfg.RetryBackoffMax,
	}
}
