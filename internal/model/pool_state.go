package model

// AssetDescriptor identifies one side of a liquidity pool.
type AssetDescriptor struct {
	Code       string `json:"code"`
	Issuer     string `json:"issuer,omitempty"`
	Native     bool   `json:"native,omitempty"`
	ContractID string `json:"contract_id"`
}

// LiquidityPoolState is a read-only snapshot of a constant-product pool
// ledger entry. It is re-fetched per request, never mutated locally.
type LiquidityPoolState struct {
	PoolID         string          `json:"pool_id"`
	AssetA         AssetDescriptor `json:"asset_a"`
	AssetB         AssetDescriptor `json:"asset_b"`
	ReserveA       string          `json:"reserve_a"`
	ReserveB       string          `json:"reserve_b"`
	FeeBps         int32           `json:"fee_bps"`
	TotalShares    string          `json:"total_shares"`
	TrustlineCount int64           `json:"trustline_count"`
}
