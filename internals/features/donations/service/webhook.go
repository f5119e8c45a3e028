package service

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bytedance/sonic"
)

/* =========================================================
   Webhook Processor — notifikasi Midtrans masuk lewat sini.
   Urutan per notifikasi: verify → parse → dedup → resolve →
   apply (jalur Settlement bersama) → notify.
   At-least-once + out-of-order delivery dianggap normal.
========================================================= */

type WebhookProcessor struct {
	Store      LedgerStore
	Settlement *Settlement
	ServerKey  string
}

func NewWebhookProcessor(store LedgerStore, settlement *Settlement, serverKey string) *WebhookProcessor {
	return &WebhookProcessor{Store: store, Settlement: settlement, ServerKey: serverKey}
}

// providerNotification: payload HTTP notification Midtrans.
type providerNotification struct {
	TransactionTime   string `json:"transaction_time"`
	TransactionStatus string `json:"transaction_status"` // capture, settlement, pending, deny, cancel, expire, refund, partial_refund, failure
	StatusCode        string `json:"status_code"`
	SignatureKey      string `json:"signature_key"`
	OrderID           string `json:"order_id"`
	GrossAmount       string `json:"gross_amount"`
	PaymentType       string `json:"payment_type"`
	FraudStatus       string `json:"fraud_status"` // accept / challenge / deny
	TransactionID     string `json:"transaction_id"`
	SettlementTime    string `json:"settlement_time"`
}

type NotificationResult struct {
	OrderID   string `json:"order_id"`
	RawStatus string `json:"transaction_status"`
	Outcome   string `json:"outcome"`
	Applied   bool   `json:"applied"`   // transisi benar-benar terjadi di run ini
	Duplicate bool   `json:"duplicate"` // replay — diakui tanpa efek ulang
}

// HandleNotification memproses satu notifikasi mentah.
// Error taksonomi yang mungkin: ErrUnauthorized, ErrInvalidPayload, ErrNotFound.
func (p *WebhookProcessor) HandleNotification(ctx context.Context, raw []byte) (*NotificationResult, error) {
	// 1) Parse
	var notif providerNotification
	if err := sonic.Unmarshal(raw, &notif); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	// 2) Verify — SHA512(order_id + status_code + gross_amount + ServerKey).
	//    Gagal di sini = no-op idempoten; aman di-retry atau di-drop.
	want := strings.ToLower(strings.TrimSpace(notif.SignatureKey))
	got := sha512hex(notif.OrderID + notif.StatusCode + notif.GrossAmount + p.ServerKey)
	if want == "" || got != want {
		return nil, fmt.Errorf("%w: signature mismatch untuk order_id=%q", ErrUnauthorized, notif.OrderID)
	}

	// 3) Field wajib
	if notif.OrderID == "" || notif.TransactionStatus == "" || notif.TransactionID == "" {
		return nil, fmt.Errorf("%w: order_id/transaction_status/transaction_id wajib ada", ErrInvalidPayload)
	}
	txStatus := strings.ToLower(notif.TransactionStatus)

	// 4) Dedup: check-and-insert atomik. Key transaction_id+status, supaya
	//    replay notifikasi yang sama ketahan tapi notifikasi lanjutan
	//    (pending → settlement, transaction_id sama) tetap jalan.
	eventKey := notif.TransactionID + ":" + txStatus
	already, err := p.Store.RecordWebhookDelivery(ctx, eventKey, notif.TransactionID, notif.OrderID, raw)
	if err != nil {
		return nil, fmt.Errorf("gagal mencatat delivery webhook: %w", err)
	}
	if already {
		log.Printf("ℹ️ Webhook replay diabaikan: %s", eventKey)
		return &NotificationResult{
			OrderID:   notif.OrderID,
			RawStatus: txStatus,
			Outcome:   mapProviderStatus(txStatus, notif.FraudStatus).String(),
			Duplicate: true,
		}, nil
	}

	// 5) Resolve donasi. Tidak ada record lokal → ErrNotFound; wrapper HTTP
	//    tetap ack 200 supaya provider berhenti retry.
	donation, err := p.Store.GetDonationByOrderID(ctx, notif.OrderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Printf("[WARN] webhook untuk order_id=%s tanpa donasi lokal (diakui, diabaikan)", notif.OrderID)
		}
		return nil, err
	}

	// 6) Apply lewat jalur bersama.
	res := &StatusResult{
		Outcome:       mapProviderStatus(txStatus, strings.ToLower(notif.FraudStatus)),
		TransactionID: notif.TransactionID,
		RawStatus:     txStatus,
		PaymentType:   notif.PaymentType,
		GrossAmount:   notif.GrossAmount,
	}
	applied, err := p.Settlement.Apply(ctx, donation, res)
	if err != nil {
		return nil, err
	}

	return &NotificationResult{
		OrderID:   notif.OrderID,
		RawStatus: txStatus,
		Outcome:   res.Outcome.String(),
		Applied:   applied,
	}, nil
}

func sha512hex(s string) string {
	h := sha512.Sum512([]byte(s))
	return hex.EncodeToString(h[:])
}
