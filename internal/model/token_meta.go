package model

// TokenMeta is derived token metadata cached by (network, contract id).
type TokenMeta struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Decimals uint32 `json:"decimals,omitempty"`
}
