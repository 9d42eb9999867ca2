package activity

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"activityScope/internal/filters"
	"activityScope/internal/indexed"
	"activityScope/internal/model"
	"activityScope/internal/rpc"
	"activityScope/internal/tokencache"
)

// LedgerRPC is the transport subset the service consumes.
type LedgerRPC interface {
	GetHealth(ctx context.Context) (rpc.Health, error)
	GetEvents(ctx context.Context, req rpc.GetEventsRequest) (rpc.GetEventsResponse, error)
	GetTransaction(ctx context.Context, hash string) (rpc.TransactionInfo, error)
}

// Source is a pre-indexed secondary event source.
type Source interface {
	Events(ctx context.Context, q indexed.Query) ([]model.ActivityEvent, error)
}

// Result source labels.
const (
	SourceIndexed  = "indexed"
	SourceRPC      = "rpc"
	SourceNarrowed = "rpc-narrowed"
)

// Config holds the immutable per-service settings.
type Config struct {
	Network         string
	FeeContractID   string
	LookbackLedgers uint32
	DefaultLimit    int
}

// Service selects between the indexed source and the RPC transport,
// narrows queries on processing-limit errors, and merges parallel query
// results without duplicating or losing partial data.
type Service struct {
	cfg       Config
	primary   LedgerRPC
	secondary LedgerRPC
	source    Source
	cache     tokencache.Cache
	logger    *zap.Logger
}

// NewService builds a Service. secondary, source, and cache are optional;
// a nil logger is replaced with a no-op logger.
func NewService(cfg Config, primary LedgerRPC, secondary LedgerRPC, source Source, cache tokencache.Cache, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = 50
	}
	if cfg.LookbackLedgers == 0 {
		cfg.LookbackLedgers = 120960 // about one week of ledgers
	}
	return &Service{
		cfg:       cfg,
		primary:   primary,
		secondary: secondary,
		source:    source,
		cache:     cache,
		logger:    logger,
	}
}

// AddressActivity returns token and fee activity for one address. The
// indexed source is tried first when configured; otherwise the token and
// fee queries run in parallel against the RPC transport, with a
// partial-failure policy: one failed half degrades the result instead of
// discarding it, both halves failing surfaces the token query's error.
func (s *Service) AddressActivity(ctx context.Context, address string, limit int) (model.ActivityResult, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	if s.source != nil {
		events, err := s.source.Events(ctx, indexed.Query{
			Account: address,
			Limit:   limit,
			Order:   "desc",
		})
		if err != nil {
			s.logger.Warn("indexed source failed, falling back to rpc",
				zap.String("address", address), zap.Error(err))
		} else if len(events) > 0 {
			return model.ActivityResult{Events: events, Source: SourceIndexed}, nil
		}
	}

	startLedger := s.startLedger(ctx)

	var (
		wg          sync.WaitGroup
		tokenEvents []model.ActivityEvent
		feeEvents   []model.ActivityEvent
		tokenErr    error
		feeErr      error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		tokenEvents, tokenErr = s.addressTokenEvents(ctx, address, startLedger, limit)
	}()
	go func() {
		defer wg.Done()
		feeEvents, feeErr = s.addressFeeEvents(ctx, address, startLedger, limit)
	}()
	wg.Wait()

	if tokenErr != nil && feeErr != nil {
		return model.ActivityResult{}, fmt.Errorf("address activity: %w", tokenErr)
	}

	result := model.ActivityResult{
		Events: Merge(limit, tokenEvents, feeEvents),
		Source: SourceRPC,
	}
	if tokenErr != nil || feeErr != nil {
		result.Partial = true
		s.logger.Warn("partial address activity",
			zap.String("address", address),
			zap.NamedError("token_err", tokenErr),
			zap.NamedError("fee_err", feeErr),
		)
	}

	s.captureTokenMeta(ctx, result.Events)
	return result, nil
}

// addressTokenEvents runs the combined five-pattern query, narrowing to the
// transfer-only patterns when the node rejects it for exceeding processing
// limits.
func (s *Service) addressTokenEvents(ctx context.Context, address string, startLedger uint32, limit int) ([]model.ActivityEvent, error) {
	filter, err := filters.BuildTokenEventFilters(address)
	if err != nil {
		return nil, err
	}

	raw, err := s.queryEvents(ctx, filter, startLedger, limit)
	if rpc.IsProcessingLimit(err) {
		s.logger.Info("token query hit processing limit, narrowing to transfers",
			zap.String("address", address))
		narrowed, buildErr := filters.BuildTransferFilters(address)
		if buildErr != nil {
			return nil, buildErr
		}
		raw, err = s.queryEvents(ctx, narrowed, startLedger, limit)
	}
	if err != nil {
		return nil, err
	}

	events := make([]model.ActivityEvent, 0, len(raw))
	for _, ev := range raw {
		if parsed := ParseTokenEvent(ev, address); parsed != nil {
			events = append(events, *parsed)
		}
	}
	return events, nil
}

func (s *Service) addressFeeEvents(ctx context.Context, address string, startLedger uint32, limit int) ([]model.ActivityEvent, error) {
	filter, err := filters.BuildFeeEventFilters(address, s.cfg.FeeContractID)
	if err != nil {
		return nil, err
	}

	raw, err := s.queryEvents(ctx, filter, startLedger, limit)
	if err != nil {
		return nil, err
	}

	events := make([]model.ActivityEvent, 0, len(raw))
	for _, ev := range raw {
		events = append(events, ParseFeeEvent(ev, address))
	}
	return events, nil
}

// ContractActivity returns token activity scoped to one contract.
func (s *Service) ContractActivity(ctx context.Context, contractID string, limit int) (model.ActivityResult, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	filter, err := filters.BuildTokenActivityFilters(contractID)
	if err != nil {
		return model.ActivityResult{}, err
	}

	raw, err := s.queryEvents(ctx, filter, s.startLedger(ctx), limit)
	if err != nil {
		return model.ActivityResult{}, fmt.Errorf("contract activity: %w", err)
	}

	events := make([]model.ActivityEvent, 0, len(raw))
	for _, ev := range raw {
		if parsed := ParseTokenEvent(ev, ""); parsed != nil {
			events = append(events, *parsed)
		}
	}

	result := model.ActivityResult{Events: Merge(limit, events), Source: SourceRPC}
	s.captureTokenMeta(ctx, result.Events)
	return result, nil
}

// NetworkActivity returns the network-wide activity feed, substituting the
// transfers-only filter when the broad feed exceeds processing limits.
func (s *Service) NetworkActivity(ctx context.Context, limit int) (model.ActivityResult, error) {
	if limit <= 0 {
		limit = s.cfg.DefaultLimit
	}

	filter, err := filters.BuildNetworkActivityFilters()
	if err != nil {
		return model.ActivityResult{}, err
	}

	source := SourceRPC
	startLedger := s.startLedger(ctx)
	raw, err := s.queryEvents(ctx, filter, startLedger, limit)
	if rpc.IsProcessingLimit(err) {
		s.logger.Info("network feed hit processing limit, narrowing to transfers only")
		narrowed, buildErr := filters.BuildTransfersOnlyFilters()
		if buildErr != nil {
			return model.ActivityResult{}, buildErr
		}
		raw, err = s.queryEvents(ctx, narrowed, startLedger, limit)
		source = SourceNarrowed
	}
	if err != nil {
		return model.ActivityResult{}, fmt.Errorf("network activity: %w", err)
	}

	events := make([]model.ActivityEvent, 0, len(raw))
	for _, ev := range raw {
		if parsed := ParseTokenEvent(ev, ""); parsed != nil {
			events = append(events, *parsed)
		}
	}
	return model.ActivityResult{Events: Merge(limit, events), Source: source}, nil
}

// Transaction looks up a transaction by hash, retrying against the
// secondary endpoint on not-found: retention windows differ between
// endpoints.
func (s *Service) Transaction(ctx context.Context, hash string) (rpc.TransactionInfo, error) {
	info, err := s.primary.GetTransaction(ctx, hash)
	if err == nil && info.Status != rpc.TxStatusNotFound {
		return info, nil
	}

	if s.secondary != nil {
		fallbackInfo, fallbackErr := s.secondary.GetTransaction(ctx, hash)
		if fallbackErr == nil && fallbackInfo.Status != rpc.TxStatusNotFound {
			return fallbackInfo, nil
		}
	}

	if err != nil {
		return rpc.TransactionInfo{}, fmt.Errorf("get transaction: %w", err)
	}
	return info, nil
}

func (s *Service) queryEvents(ctx context.Context, filter rpc.EventFilter, startLedger uint32, limit int) ([]rpc.EventInfo, error) {
	resp, err := s.primary.GetEvents(ctx, rpc.GetEventsRequest{
		StartLedger: startLedger,
		Filters:     []rpc.EventFilter{filter},
		Pagination:  &rpc.Pagination{Limit: limit, Order: "desc"},
	})
	if err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// startLedger clamps the lookback window to the node's retained range so
// queries never request evicted ledgers. Zero lets the node pick.
func (s *Service) startLedger(ctx context.Context) uint32 {
	health, err := s.primary.GetHealth(ctx)
	if err != nil {
		s.logger.Debug("health lookup failed, using node default start", zap.Error(err))
		return 0
	}

	if health.LatestLedger <= s.cfg.LookbackLedgers {
		return health.OldestLedger
	}
	start := health.LatestLedger - s.cfg.LookbackLedgers
	if start < health.OldestLedger {
		return health.OldestLedger
	}
	return start
}

// captureTokenMeta writes discovered SAC metadata through the cache so
// later lookups resolve display metadata without another query.
func (s *Service) captureTokenMeta(ctx context.Context, events []model.ActivityEvent) {
	if s.cache == nil {
		return
	}
	for _, ev := range events {
		if ev.SacSymbol == "" {
			continue
		}
		meta := model.TokenMeta{Symbol: ev.SacSymbol, Name: ev.SacName}
		if err := s.cache.Set(ctx, s.cfg.Network, ev.ContractID, meta); err != nil {
			s.logger.Warn("cache token meta",
				zap.String("contract_id", ev.ContractID), zap.Error(err))
		}
	}
}

// TokenMeta returns cached metadata for a contract, or nil when unknown.
func (s *Service) TokenMeta(ctx context.Context, contractID string) (*model.TokenMeta, error) {
	if s.cache == nil {
		return nil, nil
	}
	return s.cache.Get(ctx, s.cfg.Network, contractID)
}
