package models

// Protocol represents a registered beneficiary entitled to a fixed
// percentage share of every deposit.
type Protocol struct {
	ID          string `json:"id"`          // address-like principal identifying the protocol
	Share       int    `json:"share"`       // percentage of each deposit, 0-100
	Recipient   string `json:"recipient"`   // principal authorized to receive withdrawals
	Compounding bool   `json:"compounding"` // whether the compounding engine touches this protocol
}
