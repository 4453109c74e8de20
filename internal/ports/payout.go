package ports

import (
	"context"
	"time"
)

// PayoutReceipt confirms a payout was accepted by the provider.
type PayoutReceipt struct {
	BatchID        string    `json:"payout_batch_id"`
	Recipient      string    `json:"recipient"`
	Amount         float64   `json:"amount"`
	Currency       string    `json:"currency"`
	TransactionFee float64   `json:"transaction_fee"`
	NetAmount      float64   `json:"net_amount"`
	ProcessingTime string    `json:"processing_time"`
	CreatedAt      time.Time `json:"created_at"`
}

// PayoutProvider sends funds to an external recipient. Only the withdrawal
// command path calls it, and a successful receipt must be obtained before
// the ledger is debited.
type PayoutProvider interface {
	CreatePayout(ctx context.Context, recipient string, amount float64, currency string) (PayoutReceipt, error)
}
