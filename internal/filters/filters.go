// Package filters builds declarative event-match specifications for ledger
// event queries. All builders are pure: they shape filter specs, they never
// perform I/O.
package filters

import (
	"fmt"

	"activityScope/internal/rpc"
	"activityScope/internal/scval"
)

// Wildcard tokens understood by the upstream node.
const (
	WildcardOne  = "*"  // matches exactly one topic position
	WildcardRest = "**" // trailing, matches any remaining positions
)

// Token-event type symbols per the token-event taxonomy.
const (
	SymbolTransfer = "transfer"
	SymbolMint     = "mint"
	SymbolBurn     = "burn"
	SymbolClawback = "clawback"
	SymbolFee      = "fee"
)

const filterTypeContract = "contract"

// BuildTokenEventFilters returns one filter whose five OR'd patterns cover
// transfer-from, transfer-to, mint-to, burn-from, and clawback-from for the
// target address. Each pattern ends with a trailing multi-wildcard to
// tolerate the optional asset topic.
func BuildTokenEventFilters(targetAddress string) (rpc.EventFilter, error) {
	addr, err := scval.EncodeAddress(targetAddress)
	if err != nil {
		return rpc.EventFilter{}, fmt.Errorf("encode target address: %w", err)
	}

	transfer, err := scval.EncodeSymbol(SymbolTransfer)
	if err != nil {
		return rpc.EventFilter{}, err
	}
	mint, err := scval.EncodeSymbol(SymbolMint)
	if err != nil {
		return rpc.EventFilter{}, err
	}
	burn, err := scval.EncodeSymbol(SymbolBurn)
	if err != nil {
		return rpc.EventFilter{}, err
	}
	clawback, err := scval.EncodeSymbol(SymbolClawback)
	if err != nil {
		return rpc.EventFilter{}, err
	}

	return rpc.EventFilter{
		Type: filterTypeContract,
		Topics: [][]string{
			{transfer, addr, WildcardOne, WildcardRest},
			{transfer, WildcardOne, addr, WildcardRest},
			{mint, WildcardOne, addr, WildcardRest},
			{burn, addr, WildcardRest},
			{clawback, WildcardOne, addr, WildcardRest},
		},
	}, nil
}

// BuildTransferFilters is the narrowed form of BuildTokenEventFilters,
// keeping only the two transfer-anchored patterns. Used when the combined
// filter exceeds the node's processing limit.
func BuildTransferFilters(targetAddress string) (rpc.EventFilter, error) {
	addr, err := scval.EncodeAddress(targetAddress)
	if err != nil {
		return rpc.EventFilter{}, fmt.Errorf("encode target address: %w", err)
	}
	transfer, err := scval.EncodeSymbol(SymbolTransfer)
	if err != nil {
		return rpc.EventFilter{}, err
	}

	return rpc.EventFilter{
		Type: filterTypeContract,
		Topics: [][]string{
			{transfer, addr, WildcardOne, WildcardRest},
			{transfer, WildcardOne, addr, WildcardRest},
		},
	}, nil
}

// BuildFeeEventFilters returns the fee pattern for the target address,
// restricted to the single contract that emits fee events. The contract-id
// restriction is mandatory: an unrestricted fee query is prohibitively
// expensive upstream.
func BuildFeeEventFilters(targetAddress, feeContractID string) (rpc.EventFilter, error) {
	if feeContractID == "" {
		return rpc.EventFilter{}, fmt.Errorf("fee contract id is required")
	}

	addr, err := scval.EncodeAddress(targetAddress)
	if err != nil {
		return rpc.EventFilter{}, fmt.Errorf("encode target address: %w", err)
	}
	fee, err := scval.EncodeSymbol(SymbolFee)
	if err != nil {
		return rpc.EventFilter{}, err
	}

	return rpc.EventFilter{
		Type:        filterTypeContract,
		ContractIDs: []string{feeContractID},
		Topics: [][]string{
			{fee, addr},
		},
	}, nil
}

// BuildTokenActivityFilters returns the four token-event patterns
// restricted to one contract, with no address anchor.
func BuildTokenActivityFilters(contractID string) (rpc.EventFilter, error) {
	if contractID == "" {
		return rpc.EventFilter{}, fmt.Errorf("contract id is required")
	}

	topics, err := unanchoredTokenTopics()
	if err != nil {
		return rpc.EventFilter{}, err
	}

	return rpc.EventFilter{
		Type:        filterTypeContract,
		ContractIDs: []string{contractID},
		Topics:      topics,
	}, nil
}

// BuildNetworkActivityFilters returns the four token-event patterns with no
// contract or address restriction, for global activity feeds.
func BuildNetworkActivityFilters() (rpc.EventFilter, error) {
	topics, err := unanchoredTokenTopics()
	if err != nil {
		return rpc.EventFilter{}, err
	}
	return rpc.EventFilter{Type: filterTypeContract, Topics: topics}, nil
}

// BuildTransfersOnlyFilters is the narrower fallback to
// BuildNetworkActivityFilters for when the broad feed is rejected for
// exceeding processing limits.
func BuildTransfersOnlyFilters() (rpc.EventFilter, error) {
	transfer, err := scval.EncodeSymbol(SymbolTransfer)
	if err != nil {
		return rpc.EventFilter{}, err
	}
	return rpc.EventFilter{
		Type: filterTypeContract,
		Topics: [][]string{
			{transfer, WildcardRest},
		},
	}, nil
}

func unanchoredTokenTopics() ([][]string, error) {
	topics := make([][]string, 0, 4)
	for _, sym := range []string{SymbolTransfer, SymbolMint, SymbolBurn, SymbolClawback} {
		encoded, err := scval.EncodeSymbol(sym)
		if err != nil {
			return nil, err
		}
		topics = append(topics, []string{encoded, WildcardRest})
	}
	return topics, nil
}
