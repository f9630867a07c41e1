package events

import (
	"time"

	"github.com/shopspring/decimal"
)

// Topics the treasury publishes to after successful operations.
const (
	TopicDeposits    = "treasury_deposits"
	TopicWithdrawals = "treasury_withdrawals"
	TopicCompounding = "treasury_compounding"
)

type DepositAllocated struct {
	DepositID  string          `json:"deposit_id"`
	Depositor  string          `json:"depositor"`
	Asset      string          `json:"asset"`
	Amount     decimal.Decimal `json:"amount"`
	Allocated  decimal.Decimal `json:"allocated"` // sum of per-protocol portions, <= Amount
	OccurredAt time.Time       `json:"occurred_at"`
}

type AllocationWithdrawn struct {
	WithdrawalID string          `json:"withdrawal_id"`
	Asset        string          `json:"asset"`
	ProtocolID   string          `json:"protocol_id"`
	Destination  string          `json:"destination"`
	Amount       decimal.Decimal `json:"amount"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

type TreasurySwept struct {
	Asset       string          `json:"asset"`
	Destination string          `json:"destination"`
	Amount      decimal.Decimal `json:"amount"`
	OccurredAt  time.Time       `json:"occurred_at"`
}

type AllocationCompounded struct {
	ProtocolID string          `json:"protocol_id"`
	AssetIn    string          `json:"asset_in"`
	AssetOut   string          `json:"asset_out"`
	AmountIn   decimal.Decimal `json:"amount_in"`
	AmountOut  decimal.Decimal `json:"amount_out"`
	OccurredAt time.Time       `json:"occurred_at"`
}
