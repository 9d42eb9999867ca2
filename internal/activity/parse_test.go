package activity

import (
	"testing"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"

	"activityScope/internal/rpc"
	"activityScope/internal/scval"
)

func accountStrkey(t *testing.T, seed byte) string {
	t.Helper()
	var raw [32]byte
	raw[31] = seed
	encoded, err := strkey.Encode(strkey.VersionByteAccountID, raw[:])
	if err != nil {
		t.Fatalf("encode account: %v", err)
	}
	return encoded
}

func contractStrkey(t *testing.T, seed byte) string {
	t.Helper()
	var raw [32]byte
	raw[31] = seed
	encoded, err := strkey.Encode(strkey.VersionByteContract, raw[:])
	if err != nil {
		t.Fatalf("encode contract: %v", err)
	}
	return encoded
}

func symTopic(t *testing.T, name string) string {
	t.Helper()
	encoded, err := scval.EncodeSymbol(name)
	if err != nil {
		t.Fatalf("encode symbol %s: %v", name, err)
	}
	return encoded
}

func addrTopic(t *testing.T, address string) string {
	t.Helper()
	encoded, err := scval.EncodeAddress(address)
	if err != nil {
		t.Fatalf("encode address %s: %v", address, err)
	}
	return encoded
}

func strTopic(t *testing.T, value string) string {
	t.Helper()
	str := xdr.ScString(value)
	encoded, err := xdr.MarshalBase64(xdr.ScVal{Type: xdr.ScValTypeScvString, Str: &str})
	if err != nil {
		t.Fatalf("encode string: %v", err)
	}
	return encoded
}

func i128Value(t *testing.T, v int64) string {
	t.Helper()
	hi := int64(0)
	if v < 0 {
		hi = -1
	}
	parts := xdr.Int128Parts{Hi: xdr.Int64(hi), Lo: xdr.Uint64(uint64(v))}
	encoded, err := xdr.MarshalBase64(xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts})
	if err != nil {
		t.Fatalf("encode i128: %v", err)
	}
	return encoded
}

func muxedAmountValue(t *testing.T, amount int64, muxedID uint64) string {
	t.Helper()
	amountSym := xdr.ScSymbol("amount")
	muxedSym := xdr.ScSymbol("to_muxed_id")
	parts := xdr.Int128Parts{Hi: 0, Lo: xdr.Uint64(uint64(amount))}
	id := xdr.Uint64(muxedID)
	entries := xdr.ScMap{
		{
			Key: xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &amountSym},
			Val: xdr.ScVal{Type: xdr.ScValTypeScvI128, I128: &parts},
		},
		{
			Key: xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &muxedSym},
			Val: xdr.ScVal{Type: xdr.ScValTypeScvU64, U64: &id},
		},
	}
	pm := &entries
	encoded, err := xdr.MarshalBase64(xdr.ScVal{Type: xdr.ScValTypeScvMap, Map: &pm})
	if err != nil {
		t.Fatalf("encode map: %v", err)
	}
	return encoded
}

func baseEvent(id string, ledger uint32, topics []string, value string) rpc.EventInfo {
	return rpc.EventInfo{
		ID:             id,
		Type:           "contract",
		Ledger:         ledger,
		LedgerClosedAt: "2024-03-01T12:00:00Z",
		ContractID:     "CCONTRACT",
		TxHash:         "deadbeef",
		Topic:          topics,
		Value:          value,
	}
}

func TestParseTransferSent(t *testing.T) {
	from := accountStrkey(t, 0xAA)
	to := accountStrkey(t, 0xBB)

	ev := baseEvent("0001", 1000,
		[]string{symTopic(t, "transfer"), addrTopic(t, from), addrTopic(t, to)},
		i128Value(t, 10000000),
	)

	record := ParseTokenEvent(ev, from)
	if record == nil {
		t.Fatalf("expected record")
	}
	if record.Type != "transfer" || record.From != from || record.To != to {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Amount != "10000000" {
		t.Fatalf("unexpected amount: %s", record.Amount)
	}
	if record.Direction != "sent" || record.Counterparty != to {
		t.Fatalf("unexpected direction/counterparty: %+v", record)
	}
	if record.Ledger != 1000 || record.TxHash != "deadbeef" {
		t.Fatalf("context fields missing: %+v", record)
	}
	if record.Timestamp == 0 {
		t.Fatalf("expected ledger close timestamp")
	}
}

func TestParseTransferReceived(t *testing.T) {
	from := accountStrkey(t, 0xAA)
	to := accountStrkey(t, 0xBB)

	ev := baseEvent("0002", 1001,
		[]string{symTopic(t, "transfer"), addrTopic(t, from), addrTopic(t, to)},
		i128Value(t, 42),
	)

	record := ParseTokenEvent(ev, to)
	if record == nil {
		t.Fatalf("expected record")
	}
	if record.Direction != "received" || record.Counterparty != from {
		t.Fatalf("unexpected direction/counterparty: %+v", record)
	}
}

func TestParseTransferNoTarget(t *testing.T) {
	from := accountStrkey(t, 0xAA)
	to := accountStrkey(t, 0xBB)

	ev := baseEvent("0003", 1002,
		[]string{symTopic(t, "transfer"), addrTopic(t, from), addrTopic(t, to)},
		i128Value(t, 1),
	)

	record := ParseTokenEvent(ev, "")
	if record == nil {
		t.Fatalf("expected record")
	}
	if record.Direction != "" {
		t.Fatalf("direction must be absent without a target: %+v", record)
	}
}

func TestParseNonConformingTransferDropped(t *testing.T) {
	from := accountStrkey(t, 0xAA)

	// topic[2] decodes as a string, not an address.
	ev := baseEvent("0004", 1003,
		[]string{symTopic(t, "transfer"), addrTopic(t, from), strTopic(t, "garbage")},
		i128Value(t, 1),
	)
	if record := ParseTokenEvent(ev, from); record != nil {
		t.Fatalf("non-conforming transfer must be dropped, got %+v", record)
	}

	// Missing topic[2] entirely.
	ev = baseEvent("0005", 1004,
		[]string{symTopic(t, "transfer"), addrTopic(t, from)},
		i128Value(t, 1),
	)
	if record := ParseTokenEvent(ev, from); record != nil {
		t.Fatalf("truncated transfer must be dropped, got %+v", record)
	}
}

func TestParseMint(t *testing.T) {
	admin := accountStrkey(t, 0x01)
	recipient := accountStrkey(t, 0x02)

	ev := baseEvent("0006", 1005,
		[]string{symTopic(t, "mint"), addrTopic(t, admin), addrTopic(t, recipient)},
		i128Value(t, 777),
	)

	record := ParseTokenEvent(ev, recipient)
	if record == nil {
		t.Fatalf("expected record")
	}
	if record.Type != "mint" || record.From != admin || record.To != recipient {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Direction != "received" || record.Counterparty != admin {
		t.Fatalf("unexpected direction/counterparty: %+v", record)
	}
}

func TestParseBurn(t *testing.T) {
	from := accountStrkey(t, 0x03)

	ev := baseEvent("0007", 1006,
		[]string{symTopic(t, "burn"), addrTopic(t, from)},
		i128Value(t, 5),
	)

	record := ParseTokenEvent(ev, from)
	if record == nil {
		t.Fatalf("expected record")
	}
	if record.Type != "burn" || record.From != from || record.To != "" {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Direction != "sent" || record.Counterparty != "" {
		t.Fatalf("burn has no counterparty: %+v", record)
	}
}

func TestParseClawback(t *testing.T) {
	admin := accountStrkey(t, 0x04)
	source := accountStrkey(t, 0x05)

	ev := baseEvent("0008", 1007,
		[]string{symTopic(t, "clawback"), addrTopic(t, admin), addrTopic(t, source)},
		i128Value(t, 9),
	)

	record := ParseTokenEvent(ev, source)
	if record == nil {
		t.Fatalf("expected record")
	}
	if record.Type != "clawback" || record.From != source || record.To != admin {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Direction != "sent" || record.Counterparty != admin {
		t.Fatalf("unexpected direction/counterparty: %+v", record)
	}
}

func TestParseUnknownSymbolDropped(t *testing.T) {
	ev := baseEvent("0009", 1008,
		[]string{symTopic(t, "approve"), addrTopic(t, accountStrkey(t, 1))},
		i128Value(t, 1),
	)
	if record := ParseTokenEvent(ev, ""); record != nil {
		t.Fatalf("unknown event symbol must be dropped, got %+v", record)
	}
}

func TestParseUndecodableTopicDropped(t *testing.T) {
	ev := baseEvent("0010", 1009, []string{"!!!"}, i128Value(t, 1))
	if record := ParseTokenEvent(ev, ""); record != nil {
		t.Fatalf("undecodable topic0 must be dropped, got %+v", record)
	}

	ev = baseEvent("0011", 1010, nil, i128Value(t, 1))
	if record := ParseTokenEvent(ev, ""); record != nil {
		t.Fatalf("missing topics must be dropped, got %+v", record)
	}
}

func TestParseMuxedAmountPayload(t *testing.T) {
	from := accountStrkey(t, 0xAA)
	to := accountStrkey(t, 0xBB)

	ev := baseEvent("0012", 1011,
		[]string{symTopic(t, "transfer"), addrTopic(t, from), addrTopic(t, to)},
		muxedAmountValue(t, 500, 12345),
	)

	record := ParseTokenEvent(ev, from)
	if record == nil {
		t.Fatalf("expected record")
	}
	if record.Amount != "500" {
		t.Fatalf("unexpected amount from map payload: %s", record.Amount)
	}
}

func TestParseSacTrailingTopic(t *testing.T) {
	from := accountStrkey(t, 0xAA)
	to := accountStrkey(t, 0xBB)
	issuer := accountStrkey(t, 0xCC)
	sacName := "USDC:" + issuer

	ev := baseEvent("0013", 1012,
		[]string{symTopic(t, "transfer"), addrTopic(t, from), addrTopic(t, to), strTopic(t, sacName)},
		i128Value(t, 1),
	)

	record := ParseTokenEvent(ev, from)
	if record == nil {
		t.Fatalf("expected record")
	}
	if record.SacSymbol != "USDC" || record.SacName != sacName {
		t.Fatalf("unexpected sac fields: %+v", record)
	}
}

func TestParseSacNative(t *testing.T) {
	from := accountStrkey(t, 0xAA)
	to := accountStrkey(t, 0xBB)

	ev := baseEvent("0014", 1013,
		[]string{symTopic(t, "transfer"), addrTopic(t, from), addrTopic(t, to), strTopic(t, "native")},
		i128Value(t, 1),
	)

	record := ParseTokenEvent(ev, from)
	if record == nil {
		t.Fatalf("expected record")
	}
	if record.SacSymbol != "XLM" || record.SacName != "native" {
		t.Fatalf("unexpected sac fields: %+v", record)
	}
}

func TestParseSacMalformedIgnored(t *testing.T) {
	from := accountStrkey(t, 0xAA)
	to := accountStrkey(t, 0xBB)

	ev := baseEvent("0015", 1014,
		[]string{symTopic(t, "transfer"), addrTopic(t, from), addrTopic(t, to), strTopic(t, "not-an-asset")},
		i128Value(t, 1),
	)

	record := ParseTokenEvent(ev, from)
	if record == nil {
		t.Fatalf("expected record")
	}
	if record.SacSymbol != "" || record.SacName != "" {
		t.Fatalf("malformed sac topic must be ignored: %+v", record)
	}
}

func TestParseFeeCharge(t *testing.T) {
	address := accountStrkey(t, 0xAA)

	ev := baseEvent("0016", 1015,
		[]string{symTopic(t, "fee"), addrTopic(t, address)},
		i128Value(t, 100),
	)

	record := ParseFeeEvent(ev, address)
	if record.Type != "fee" || record.From != address {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.Amount != "100" || record.IsRefund {
		t.Fatalf("expected charge of 100: %+v", record)
	}
}

func TestParseFeeRefund(t *testing.T) {
	address := accountStrkey(t, 0xAA)

	ev := baseEvent("0017", 1016,
		[]string{symTopic(t, "fee"), addrTopic(t, address)},
		i128Value(t, -50),
	)

	record := ParseFeeEvent(ev, address)
	if record.Amount != "50" || !record.IsRefund {
		t.Fatalf("expected refund of 50: %+v", record)
	}
}

func TestParseFeeUndecodableValue(t *testing.T) {
	address := accountStrkey(t, 0xAA)

	ev := baseEvent("0018", 1017,
		[]string{symTopic(t, "fee"), addrTopic(t, address)},
		"!!!",
	)

	record := ParseFeeEvent(ev, address)
	if record.Amount != "0" || record.IsRefund {
		t.Fatalf("undecodable fee value must zero out: %+v", record)
	}
}
