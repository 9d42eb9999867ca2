package scval

import (
	"fmt"
	"math/big"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// Kind tags a decoded wire value.
type Kind int

const (
	KindBool Kind = iota + 1
	KindSymbol
	KindString
	KindAddress
	KindI32
	KindU32
	KindI64
	KindU64
	KindI128
	KindU128
	KindMap
	KindVec
)

// Value is a closed tagged variant of the self-describing wire value
// format. Exactly the field selected by Kind is meaningful.
type Value struct {
	Kind    Kind
	Bool    bool
	Sym     string
	Str     string
	Address string
	I32     int32
	U32     uint32
	I64     int64
	U64     uint64
	Big     *big.Int // KindI128 and KindU128
	Map     []MapEntry
	Vec     []Value
}

// MapEntry is one ordered key/value pair of a decoded map.
type MapEntry struct {
	Key Value
	Val Value
}

// DecodeError reports a malformed, truncated, or unsupported wire value.
// Callers treat it as "this field is absent", never as a batch failure.
type DecodeError struct {
	Reason string
}

func (e *DecodeError) Error() string { return "scval decode: " + e.Reason }

func decodeErrf(format string, args ...interface{}) *DecodeError {
	return &DecodeError{Reason: fmt.Sprintf(format, args...)}
}

// DecodeBase64 decodes a base64-encoded binary value into a typed Value.
func DecodeBase64(raw string) (Value, error) {
	var sc xdr.ScVal
	if err := xdr.SafeUnmarshalBase64(raw, &sc); err != nil {
		return Value{}, decodeErrf("unmarshal: %v", err)
	}
	return convert(sc)
}

func convert(sc xdr.ScVal) (Value, error) {
	switch sc.Type {
	case xdr.ScValTypeScvBool:
		b, ok := sc.GetB()
		if !ok {
			return Value{}, decodeErrf("bool arm missing")
		}
		return Value{Kind: KindBool, Bool: b}, nil

	case xdr.ScValTypeScvSymbol:
		sym, ok := sc.GetSym()
		if !ok {
			return Value{}, decodeErrf("symbol arm missing")
		}
		return Value{Kind: KindSymbol, Sym: string(sym)}, nil

	case xdr.ScValTypeScvString:
		str, ok := sc.GetStr()
		if !ok {
			return Value{}, decodeErrf("string arm missing")
		}
		return Value{Kind: KindString, Str: string(str)}, nil

	case xdr.ScValTypeScvAddress:
		addr, ok := sc.GetAddress()
		if !ok {
			return Value{}, decodeErrf("address arm missing")
		}
		encoded, err := addressToString(addr)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: KindAddress, Address: encoded}, nil

	case xdr.ScValTypeScvI32:
		v, ok := sc.GetI32()
		if !ok {
			return Value{}, decodeErrf("i32 arm missing")
		}
		return Value{Kind: KindI32, I32: int32(v)}, nil

	case xdr.ScValTypeScvU32:
		v, ok := sc.GetU32()
		if !ok {
			return Value{}, decodeErrf("u32 arm missing")
		}
		return Value{Kind: KindU32, U32: uint32(v)}, nil

	case xdr.ScValTypeScvI64:
		v, ok := sc.GetI64()
		if !ok {
			return Value{}, decodeErrf("i64 arm missing")
		}
		return Value{Kind: KindI64, I64: int64(v)}, nil

	case xdr.ScValTypeScvU64:
		v, ok := sc.GetU64()
		if !ok {
			return Value{}, decodeErrf("u64 arm missing")
		}
		return Value{Kind: KindU64, U64: uint64(v)}, nil

	case xdr.ScValTypeScvI128:
		parts, ok := sc.GetI128()
		if !ok {
			return Value{}, decodeErrf("i128 arm missing")
		}
		return Value{Kind: KindI128, Big: Int128ToBig(int64(parts.Hi), uint64(parts.Lo))}, nil

	case xdr.ScValTypeScvU128:
		parts, ok := sc.GetU128()
		if !ok {
			return Value{}, decodeErrf("u128 arm missing")
		}
		return Value{Kind: KindU128, Big: UInt128ToBig(uint64(parts.Hi), uint64(parts.Lo))}, nil

	case xdr.ScValTypeScvMap:
		scMap, ok := sc.GetMap()
		if !ok {
			return Value{}, decodeErrf("map arm missing")
		}
		entries := []MapEntry{}
		if scMap != nil {
			entries = make([]MapEntry, 0, len(*scMap))
			for i, entry := range *scMap {
				key, err := convert(entry.Key)
				if err != nil {
					return Value{}, decodeErrf("map key %d: %v", i, err)
				}
				val, err := convert(entry.Val)
				if err != nil {
					return Value{}, decodeErrf("map value %d: %v", i, err)
				}
				entries = append(entries, MapEntry{Key: key, Val: val})
			}
		}
		return Value{Kind: KindMap, Map: entries}, nil

	case xdr.ScValTypeScvVec:
		scVec, ok := sc.GetVec()
		if !ok {
			return Value{}, decodeErrf("vec arm missing")
		}
		items := []Value{}
		if scVec != nil {
			items = make([]Value, 0, len(*scVec))
			for i, item := range *scVec {
				converted, err := convert(item)
				if err != nil {
					return Value{}, decodeErrf("vec item %d: %v", i, err)
				}
				items = append(items, converted)
			}
		}
		return Value{Kind: KindVec, Vec: items}, nil

	default:
		return Value{}, decodeErrf("unsupported value type: %s", sc.Type.String())
	}
}

func addressToString(addr xdr.ScAddress) (string, error) {
	switch addr.Type {
	case xdr.ScAddressTypeScAddressTypeAccount:
		accountID, ok := addr.GetAccountId()
		if !ok {
			return "", decodeErrf("account arm missing")
		}
		return accountID.Address(), nil

	case xdr.ScAddressTypeScAddressTypeContract:
		contractID, ok := addr.GetContractId()
		if !ok {
			return "", decodeErrf("contract arm missing")
		}
		encoded, err := strkey.Encode(strkey.VersionByteContract, contractID[:])
		if err != nil {
			return "", decodeErrf("encode contract id: %v", err)
		}
		return encoded, nil

	default:
		return "", decodeErrf("unsupported address type: %s", addr.Type.String())
	}
}

// Int128ToBig reconstructs a signed 128-bit integer from its 64-bit halves
// as (hi<<64)|lo, with the sign taken from hi.
func Int128ToBig(hi int64, lo uint64) *big.Int {
	b := new(big.Int).SetInt64(hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(lo))
}

// UInt128ToBig reconstructs an unsigned 128-bit integer from its halves.
func UInt128ToBig(hi, lo uint64) *big.Int {
	b := new(big.Int).SetUint64(hi)
	b.Lsh(b, 64)
	return b.Or(b, new(big.Int).SetUint64(lo))
}
