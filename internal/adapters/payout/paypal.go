// Package payout provides the sandbox PayPal-shaped payout provider. No
// network calls are made; receipts are generated locally with the fee
// structure the real integration would apply.
package payout

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blacksultan/sultand/internal/domain"
	"github.com/blacksultan/sultand/internal/ports"
)

const feeRate = 0.02

// PayPal implements ports.PayoutProvider against the sandbox.
type PayPal struct{}

// NewPayPal creates the sandbox provider.
func NewPayPal() *PayPal { return &PayPal{} }

// CreatePayout issues a receipt for the requested amount. Recipient and
// amount are validated here as a last line of defense; the gateway validates
// them first.
func (p *PayPal) CreatePayout(_ context.Context, recipient string, amount float64, currency string) (ports.PayoutReceipt, error) {
	if recipient == "" || !strings.Contains(recipient, "@") {
		return ports.PayoutReceipt{}, fmt.Errorf("payout.CreatePayout: recipient %q: %w", recipient, domain.ErrInvalidArgument)
	}
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return ports.PayoutReceipt{}, fmt.Errorf("payout.CreatePayout: amount %v: %w", amount, domain.ErrInvalidArgument)
	}
	if currency == "" {
		currency = "USD"
	}

	batchID := "PAYPAL_" + strings.ToUpper(uuid.New().String()[:8])
	receipt := ports.PayoutReceipt{
		BatchID:        batchID,
		Recipient:      recipient,
		Amount:         amount,
		Currency:       currency,
		TransactionFee: round2(amount * feeRate),
		NetAmount:      round2(amount * (1 - feeRate)),
		ProcessingTime: "1-3 business days",
		CreatedAt:      time.Now().UTC(),
	}

	slog.Info("payout created", "batch_id", batchID, "amount", amount, "recipient", recipient)
	return receipt, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
