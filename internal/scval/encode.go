package scval

import (
	"fmt"

	"github.com/stellar/go/strkey"
	"github.com/stellar/go/xdr"
)

// EncodeSymbol returns the base64 wire encoding of a symbol value.
func EncodeSymbol(sym string) (string, error) {
	s := xdr.ScSymbol(sym)
	encoded, err := xdr.MarshalBase64(xdr.ScVal{Type: xdr.ScValTypeScvSymbol, Sym: &s})
	if err != nil {
		return "", fmt.Errorf("marshal symbol: %w", err)
	}
	return encoded, nil
}

// EncodeAddress returns the base64 wire encoding of an address value.
// Accepts G... account and C... contract strkeys.
func EncodeAddress(address string) (string, error) {
	addr, err := addressFromString(address)
	if err != nil {
		return "", err
	}
	encoded, err := xdr.MarshalBase64(xdr.ScVal{Type: xdr.ScValTypeScvAddress, Address: &addr})
	if err != nil {
		return "", fmt.Errorf("marshal address: %w", err)
	}
	return encoded, nil
}

func addressFromString(address string) (xdr.ScAddress, error) {
	switch {
	case strkey.IsValidEd25519PublicKey(address):
		accountID, err := xdr.AddressToAccountId(address)
		if err != nil {
			return xdr.ScAddress{}, fmt.Errorf("parse account address: %w", err)
		}
		return xdr.ScAddress{
			Type:      xdr.ScAddressTypeScAddressTypeAccount,
			AccountId: &accountID,
		}, nil

	case strkey.IsValidContractAddress(address):
		raw, err := strkey.Decode(strkey.VersionByteContract, address)
		if err != nil {
			return xdr.ScAddress{}, fmt.Errorf("parse contract address: %w", err)
		}
		var contractID xdr.ContractId
		copy(contractID[:], raw)
		return xdr.ScAddress{
			Type:       xdr.ScAddressTypeScAddressTypeContract,
			ContractId: &contractID,
		}, nil

	default:
		return xdr.ScAddress{}, fmt.Errorf("invalid address: %s", address)
	}
}
