package service

import (
	"context"
	"log"

	"github.com/google/uuid"
)

/* =========================================================
   Notifier — side effect saat donasi settle. Interface saja
   yang jadi kontrak; kegagalan selalu ditelan caller.
========================================================= */

type SettlementEvent struct {
	DonationID uuid.UUID `json:"donation_id"`
	PotID      uuid.UUID `json:"pot_id"`
	AmountIDR  int       `json:"amount_idr"`
	OrderID    string    `json:"order_id"`
	DonorName  string    `json:"donor_name"`
	DonorEmail *string   `json:"donor_email,omitempty"`
}

type Notifier interface {
	Notify(ctx context.Context, ev SettlementEvent) error
}

// LogNotifier: implementasi default — cukup catat ke log.
type LogNotifier struct{}

func (LogNotifier) Notify(_ context.Context, ev SettlementEvent) error {
	log.Printf("🔔 Donasi settle: order_id=%s pot=%s amount=%d donor=%s",
		ev.OrderID, ev.PotID, ev.AmountIDR, ev.DonorName)
	return nil
}
