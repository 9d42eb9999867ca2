// Package activity normalizes raw ledger events into canonical activity
// records and orchestrates the sources that produce them.
package activity

import (
	"math/big"
	"strings"
	"time"

	"github.com/stellar/go/strkey"

	"activityScope/internal/filters"
	"activityScope/internal/model"
	"activityScope/internal/rpc"
	"activityScope/internal/scval"
)

// ParseTokenEvent validates and normalizes one raw token event. It returns
// nil for events that are not recognized token events or whose required
// topic positions fail the address-type check; non-conforming events are
// dropped, never guessed at.
//
// targetAddress, when non-empty, anchors direction and counterparty
// computation for transfers.
func ParseTokenEvent(ev rpc.EventInfo, targetAddress string) *model.ActivityEvent {
	if len(ev.Topic) == 0 {
		return nil
	}
	head, err := scval.DecodeBase64(ev.Topic[0])
	if err != nil || head.Kind != scval.KindSymbol {
		return nil
	}

	amount, ok := eventAmount(ev.Value)
	if !ok {
		return nil
	}

	record := model.ActivityEvent{
		ID:         ev.ID,
		TxHash:     ev.TxHash,
		ContractID: ev.ContractID,
		Ledger:     ev.Ledger,
		Timestamp:  parseClosedAt(ev.LedgerClosedAt),
		Amount:     amount,
	}

	switch head.Sym {
	case filters.SymbolTransfer:
		from, ok := topicAddress(ev.Topic, 1)
		if !ok {
			return nil
		}
		to, ok := topicAddress(ev.Topic, 2)
		if !ok {
			return nil
		}
		record.Type = model.ActivityTransfer
		record.From = from
		record.To = to
		if targetAddress != "" {
			if from == targetAddress {
				record.Direction = model.DirectionSent
				record.Counterparty = to
			} else {
				record.Direction = model.DirectionReceived
				record.Counterparty = from
			}
		} else {
			record.Counterparty = to
		}

	case filters.SymbolMint:
		admin, ok := topicAddress(ev.Topic, 1)
		if !ok {
			return nil
		}
		recipient, ok := topicAddress(ev.Topic, 2)
		if !ok {
			return nil
		}
		record.Type = model.ActivityMint
		record.From = admin
		record.To = recipient
		record.Direction = model.DirectionReceived
		record.Counterparty = admin

	case filters.SymbolBurn:
		from, ok := topicAddress(ev.Topic, 1)
		if !ok {
			return nil
		}
		record.Type = model.ActivityBurn
		record.From = from
		record.Direction = model.DirectionSent

	case filters.SymbolClawback:
		admin, ok := topicAddress(ev.Topic, 1)
		if !ok {
			return nil
		}
		source, ok := topicAddress(ev.Topic, 2)
		if !ok {
			return nil
		}
		record.Type = model.ActivityClawback
		record.From = source
		record.To = admin
		record.Direction = model.DirectionSent
		record.Counterparty = admin

	default:
		return nil
	}

	record.SacSymbol, record.SacName = sniffSacTopic(ev.Topic)
	return &record
}

// ParseFeeEvent normalizes one fee event for the queried address. The
// upstream filter already restricts to that address, so no validation
// branch applies: the record is always produced. A negative underlying
// amount marks a refund; Amount is always the magnitude.
func ParseFeeEvent(ev rpc.EventInfo, address string) model.ActivityEvent {
	record := model.ActivityEvent{
		ID:         ev.ID,
		TxHash:     ev.TxHash,
		ContractID: ev.ContractID,
		Ledger:     ev.Ledger,
		Timestamp:  parseClosedAt(ev.LedgerClosedAt),
		Type:       model.ActivityFee,
		From:       address,
		Amount:     "0",
	}

	value, err := scval.DecodeBase64(ev.Value)
	if err != nil {
		return record
	}
	if value.Kind != scval.KindI128 && value.Kind != scval.KindU128 {
		return record
	}

	amount := value.Big
	if amount.Sign() < 0 {
		record.IsRefund = true
		amount = new(big.Int).Abs(amount)
	}
	record.Amount = amount.String()
	return record
}

// topicAddress decodes the topic at position as an address-typed value.
func topicAddress(topics []string, position int) (string, bool) {
	if position >= len(topics) {
		return "", false
	}
	value, err := scval.DecodeBase64(topics[position])
	if err != nil || value.Kind != scval.KindAddress {
		return "", false
	}
	return value.Address, true
}

// eventAmount extracts the transferred amount from the event value: either
// a direct 128-bit value or a map payload with an "amount" field (the
// muxed-recipient transfer form).
func eventAmount(rawValue string) (string, bool) {
	value, err := scval.DecodeBase64(rawValue)
	if err != nil {
		return "", false
	}

	switch value.Kind {
	case scval.KindI128, scval.KindU128:
		return magnitude(value.Big), true

	case scval.KindMap:
		for _, entry := range value.Map {
			if entry.Key.Kind != scval.KindSymbol || entry.Key.Sym != "amount" {
				continue
			}
			if entry.Val.Kind == scval.KindI128 || entry.Val.Kind == scval.KindU128 {
				return magnitude(entry.Val.Big), true
			}
			return "", false
		}
		return "", false

	default:
		return "", false
	}
}

func magnitude(v *big.Int) string {
	if v.Sign() < 0 {
		return new(big.Int).Abs(v).String()
	}
	return v.String()
}

// sniffSacTopic opportunistically reads the trailing topic as a
// standardized-asset identifier: "TICKER:ISSUER" or the literal "native".
func sniffSacTopic(topics []string) (symbol, name string) {
	if len(topics) < 2 {
		return "", ""
	}
	value, err := scval.DecodeBase64(topics[len(topics)-1])
	if err != nil || value.Kind != scval.KindString {
		return "", ""
	}

	if value.Str == "native" {
		return "XLM", "native"
	}

	parts := strings.SplitN(value.Str, ":", 2)
	if len(parts) != 2 {
		return "", ""
	}
	code, issuer := parts[0], parts[1]
	if !validAssetCode(code) || !strkey.IsValidEd25519PublicKey(issuer) {
		return "", ""
	}
	return code, value.Str
}

func validAssetCode(code string) bool {
	if len(code) == 0 || len(code) > 12 {
		return false
	}
	for _, r := range code {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

func parseClosedAt(closedAt string) int64 {
	if closedAt == "" {
		return 0
	}
	ts, err := time.Parse(time.RFC3339, closedAt)
	if err != nil {
		return 0
	}
	return ts.Unix()
}
