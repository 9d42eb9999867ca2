// Package pool decodes automated-market-maker pool state from raw ledger
// entries, for on-demand lookups by the normalization layer.
package pool

import (
	"context"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
	"go.uber.org/zap"

	"activityScope/internal/model"
	"activityScope/internal/rpc"
)

// LedgerEntryGetter is the transport subset the decoder consumes.
type LedgerEntryGetter interface {
	GetLedgerEntries(ctx context.Context, keys []string) (rpc.GetLedgerEntriesResponse, error)
}

// Decoder fetches and decodes liquidity-pool ledger entries.
type Decoder struct {
	client     LedgerEntryGetter
	passphrase string
	logger     *zap.Logger
}

// NewDecoder builds a Decoder. The network passphrase derives each pool
// asset's contract id.
func NewDecoder(client LedgerEntryGetter, networkPassphrase string, logger *zap.Logger) *Decoder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decoder{client: client, passphrase: networkPassphrase, logger: logger}
}

// DecodePool looks up the pool's ledger entry and decodes its state. A
// well-formed address with no matching entry returns (nil, nil): "not a
// pool" is an expected outcome, not an error. A malformed address is a
// precondition violation.
func (d *Decoder) DecodePool(ctx context.Context, poolAddress string) (*model.LiquidityPoolState, error) {
	poolID, err := parsePoolID(poolAddress)
	if err != nil {
		return nil, err
	}

	key := xdr.LedgerKey{
		Type: xdr.LedgerEntryTypeLiquidityPool,
		LiquidityPool: &xdr.LedgerKeyLiquidityPool{
			LiquidityPoolId: poolID,
		},
	}
	encodedKey, err := xdr.MarshalBase64(key)
	if err != nil {
		return nil, fmt.Errorf("marshal ledger key: %w", err)
	}

	resp, err := d.client.GetLedgerEntries(ctx, []string{encodedKey})
	if err != nil {
		return nil, fmt.Errorf("get ledger entries: %w", err)
	}
	if len(resp.Entries) == 0 {
		d.logger.Debug("no pool entry", zap.String("pool", poolAddress))
		return nil, nil
	}

	return d.decodeEntry(poolID, resp.Entries[0].XDR)
}

func (d *Decoder) decodeEntry(poolID xdr.PoolId, rawEntry string) (*model.LiquidityPoolState, error) {
	var data xdr.LedgerEntryData
	if err := xdr.SafeUnmarshalBase64(rawEntry, &data); err != nil {
		return nil, fmt.Errorf("unmarshal pool entry: %w", err)
	}

	entry, ok := data.GetLiquidityPool()
	if !ok {
		return nil, fmt.Errorf("ledger entry is not a liquidity pool")
	}
	cp, ok := entry.Body.GetConstantProduct()
	if !ok {
		return nil, fmt.Errorf("unsupported pool body type: %s", entry.Body.Type.String())
	}

	assetA, err := d.describeAsset(cp.Params.AssetA)
	if err != nil {
		return nil, fmt.Errorf("asset a: %w", err)
	}
	assetB, err := d.describeAsset(cp.Params.AssetB)
	if err != nil {
		return nil, fmt.Errorf("asset b: %w", err)
	}

	return &model.LiquidityPoolState{
		PoolID:         hex.EncodeToString(poolID[:]),
		AssetA:         assetA,
		AssetB:         assetB,
		ReserveA:       strconv.FormatInt(int64(cp.ReserveA), 10),
		ReserveB:       strconv.FormatInt(int64(cp.ReserveB), 10),
		FeeBps:         int32(cp.Params.Fee),
		TotalShares:    strconv.FormatInt(int64(cp.TotalPoolShares), 10),
		TrustlineCount: int64(cp.PoolSharesTrustLineCount),
	}, nil
}

func (d *Decoder) describeAsset(asset xdr.Asset) (model.AssetDescriptor, error) {
	var desc model.AssetDescriptor

	switch asset.Type {
	case xdr.AssetTypeAssetTypeNative:
		desc.Code = "XLM"
		desc.Native = true

	case xdr.AssetTypeAssetTypeCreditAlphanum4:
		desc.Code = strings.TrimRight(string(asset.AlphaNum4.AssetCode[:]), "\x00")
		desc.Issuer = asset.AlphaNum4.Issuer.Address()

	case xdr.AssetTypeAssetTypeCreditAlphanum12:
		desc.Code = strings.TrimRight(string(asset.AlphaNum12.AssetCode[:]), "\x00")
		desc.Issuer = asset.AlphaNum12.Issuer.Address()

	default:
		return desc, fmt.Errorf("unsupported asset type: %s", asset.Type.String())
	}

	rawID, err := asset.ContractID(d.passphrase)
	if err != nil {
		return desc, fmt.Errorf("derive contract id: %w", err)
	}
	contractID, err := strkey.Encode(strkey.VersionByteContract, rawID[:])
	if err != nil {
		return desc, fmt.Errorf("encode contract id: %w", err)
	}
	desc.ContractID = contractID
	return desc, nil
}

// parsePoolID accepts a 64-character hex pool id or an L... liquidity-pool
// strkey.
func parsePoolID(poolAddress string) (xdr.PoolId, error) {
	var poolID xdr.PoolId

	if len(poolAddress) == 64 {
		raw, err := hex.DecodeString(poolAddress)
		if err == nil {
			copy(poolID[:], raw)
			return poolID, nil
		}
	}

	if raw, err := strkey.Decode(strkey.VersionByteLiquidityPool, poolAddress); err == nil && len(raw) == 32 {
		copy(poolID[:], raw)
		return poolID, nil
	}

	return poolID, fmt.Errorf("invalid liquidity pool address: %s", poolAddress)
}
