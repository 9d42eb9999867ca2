package model

// ActivityType classifies a normalized token event.
type ActivityType string

const (
	ActivityTransfer ActivityType = "transfer"
	ActivityMint     ActivityType = "mint"
	ActivityBurn     ActivityType = "burn"
	ActivityClawback ActivityType = "clawback"
	ActivityFee      ActivityType = "fee"
)

// Direction is the flow of an event relative to a target address.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// ActivityEvent is a canonical normalized token-activity record.
//
// ID is the upstream event identifier and the dedup key: two queries
// returning the same ID collapse to one record. Amount is an unsigned
// 128-bit magnitude as a decimal string; the sign of fee events is carried
// by IsRefund, never by Amount.
type ActivityEvent struct {
	ID           string       `json:"id"`
	TxHash       string       `json:"tx_hash"`
	ContractID   string       `json:"contract_id"`
	Ledger       uint32       `json:"ledger"`
	Timestamp    int64        `json:"timestamp"`
	Type         ActivityType `json:"type"`
	From         string       `json:"from,omitempty"`
	To           string       `json:"to,omitempty"`
	Amount       string       `json:"amount"`
	Direction    Direction    `json:"direction,omitempty"`
	Counterparty string       `json:"counterparty,omitempty"`
	SacSymbol    string       `json:"sac_symbol,omitempty"`
	SacName      string       `json:"sac_name,omitempty"`
	IsRefund     bool         `json:"is_refund,omitempty"`
}

// ActivityResult is the outcome of one logical activity query.
//
// Partial is set when exactly one of several parallel sub-queries failed
// and the surviving half is returned instead of nothing.
type ActivityResult struct {
	Events  []ActivityEvent `json:"events"`
	Partial bool            `json:"partial,omitempty"`
	Source  string          `json:"source,omitempty"`
}
