package rpc

// EventFilter is one declarative event-match specification for getEvents.
// Topic patterns are ordered lists whose elements are exact base64-encoded
// wire values, the single-position wildcard "*", or the trailing
// multi-position wildcard "**". Filters on one request combine with OR
// semantics upstream.
type EventFilter struct {
	Type        string     `json:"type"`
	ContractIDs []string   `json:"contractIds,omitempty"`
	Topics      [][]string `json:"topics"`
}

// Pagination bounds a getEvents query.
type Pagination struct {
	Limit int    `json:"limit,omitempty"`
	Order string `json:"order,omitempty"`
}

// GetEventsRequest is the getEvents parameter block.
type GetEventsRequest struct {
	StartLedger uint32        `json:"startLedger,omitempty"`
	Filters     []EventFilter `json:"filters"`
	Pagination  *Pagination   `json:"pagination,omitempty"`
}

// EventInfo is one raw event as returned by getEvents. Topic and Value are
// base64-encoded wire values.
type EventInfo struct {
	ID                       string   `json:"id"`
	Type                     string   `json:"type"`
	Ledger                   uint32   `json:"ledger"`
	LedgerClosedAt           string   `json:"ledgerClosedAt"`
	ContractID               string   `json:"contractId"`
	TxHash                   string   `json:"txHash"`
	Topic                    []string `json:"topic"`
	Value                    string   `json:"value"`
	InSuccessfulContractCall bool     `json:"inSuccessfulContractCall"`
}

// GetEventsResponse is the getEvents result.
type GetEventsResponse struct {
	Events       []EventInfo `json:"events"`
	LatestLedger uint32      `json:"latestLedger"`
	Cursor       string      `json:"cursor,omitempty"`
}

// LatestLedger is the getLatestLedger result.
type LatestLedger struct {
	ID              string `json:"id"`
	ProtocolVersion int    `json:"protocolVersion"`
	Sequence        uint32 `json:"sequence"`
}

// Health is the getHealth result, including the node's retained ledger
// range.
type Health struct {
	Status       string `json:"status"`
	LatestLedger uint32 `json:"latestLedger"`
	OldestLedger uint32 `json:"oldestLedger"`
}

// TransactionStatus values surfaced by getTransaction.
const (
	TxStatusSuccess  = "SUCCESS"
	TxStatusFailed   = "FAILED"
	TxStatusNotFound = "NOT_FOUND"
)

// TransactionInfo is the getTransaction result.
type TransactionInfo struct {
	Status        string `json:"status"`
	Ledger        uint32 `json:"ledger"`
	CreatedAt     string `json:"createdAt"`
	EnvelopeXDR   string `json:"envelopeXdr,omitempty"`
	ResultXDR     string `json:"resultXdr,omitempty"`
	ResultMetaXDR string `json:"resultMetaXdr,omitempty"`
}

// LedgerEntry is one entry from getLedgerEntries. XDR is the base64
// encoding of the entry data.
type LedgerEntry struct {
	Key                   string `json:"key"`
	XDR                   string `json:"xdr"`
	LastModifiedLedgerSeq uint32 `json:"lastModifiedLedgerSeq"`
}

// GetLedgerEntriesResponse is the getLedgerEntries result.
type GetLedgerEntriesResponse struct {
	Entries      []LedgerEntry `json:"entries"`
	LatestLedger uint32        `json:"latestLedger"`
}

// SimulateResult is the simulateTransaction result subset consumed by
// balance/metadata reads.
type SimulateResult struct {
	LatestLedger uint32 `json:"latestLedger"`
	Error        string `json:"error,omitempty"`
	Results      []struct {
		XDR string `json:"xdr"`
	} `json:"results,omitempty"`
}
