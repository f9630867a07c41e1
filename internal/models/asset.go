package models

// Asset identifies a fungible token handled by the treasury.
// Amounts are tracked in raw integer units; Decimals is carried for
// display and for precision rescaling at the swap boundary.
type Asset struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}
