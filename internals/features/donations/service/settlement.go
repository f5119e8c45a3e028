package service

import (
	"context"
	"log"
	"time"

	donationModel "patunganku_backend/internals/features/donations/model"
)

/* =========================================================
   Settlement — jalur transisi BERSAMA webhook & rekonsiliasi.
   Satu-satunya tempat status donasi berubah dan pot dimutasi;
   dua jalur update yang divergen = sumber bug double-credit.
========================================================= */

// SettlementOutcome: varian hasil dari payload provider, divalidasi sekali
// di boundary — downstream tidak pernah lihat string mentah.
type SettlementOutcome int

const (
	OutcomeUnknown SettlementOutcome = iota
	OutcomePending
	OutcomeSuccess
	OutcomeFailure
	OutcomeRefund
)

func (o SettlementOutcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeSuccess:
		return "success"
	case OutcomeFailure:
		return "failure"
	case OutcomeRefund:
		return "refund"
	default:
		return "unknown"
	}
}

// mapProviderStatus: status Midtrans → varian internal.
// capture dengan fraud challenge dibiarkan pending (belum settle).
func mapProviderStatus(txStatus, fraudStatus string) SettlementOutcome {
	switch txStatus {
	case "capture", "settlement", "success":
		if txStatus == "capture" && fraudStatus == "challenge" {
			return OutcomePending
		}
		return OutcomeSuccess
	case "pending":
		return OutcomePending
	case "deny", "cancel", "canceled", "expire", "expired", "failure", "failed":
		return OutcomeFailure
	case "refund", "partial_refund":
		return OutcomeRefund
	default:
		return OutcomeUnknown
	}
}

type Settlement struct {
	Store    LedgerStore
	Notifier Notifier
	now      func() time.Time
}

func NewSettlement(store LedgerStore, notifier Notifier) *Settlement {
	return &Settlement{Store: store, Notifier: notifier, now: time.Now}
}

// Apply menerapkan hasil provider ke satu donasi. Linearizable per donasi:
// seluruh transisi lewat conditional UPDATE ber-guard (donation_id, expected
// prior status), jadi duplikat konkuren tidak bisa double-apply.
// applied=false artinya guard tidak kena (transisi sudah terjadi) — no-op aman.
func (s *Settlement) Apply(ctx context.Context, d *donationModel.Donation, res *StatusResult) (applied bool, err error) {
	switch res.Outcome {
	case OutcomeSuccess:
		return s.complete(ctx, d, res)
	case OutcomeFailure:
		return s.fail(ctx, d, res)
	case OutcomeRefund:
		return s.refund(ctx, d, res)
	case OutcomePending:
		return false, nil
	default:
		log.Printf("[WARN] status provider tidak dikenali untuk order_id=%s: %q (diabaikan)", d.DonationOrderID, res.RawStatus)
		return false, nil
	}
}

func (s *Settlement) complete(ctx context.Context, d *donationModel.Donation, res *StatusResult) (bool, error) {
	now := s.now()
	fields := map[string]any{
		"donation_provider_status": res.RawStatus,
		"donation_processed_at":    now,
	}
	if res.TransactionID != "" {
		fields["donation_provider_transaction_id"] = res.TransactionID
	}
	if res.PaymentType != "" {
		fields["donation_payment_type"] = res.PaymentType
	}

	applied, err := s.Store.ConditionalUpdateDonationStatus(ctx,
		d.DonationID, donationModel.DonationStatusPending, donationModel.DonationStatusCompleted, fields)
	if err != nil {
		return false, err
	}
	if !applied {
		s.logDivergence(ctx, d, donationModel.DonationStatusCompleted)
		return false, nil
	}

	// Atomic add — dua donasi ke pot yang sama boleh settle bersamaan.
	if err := s.Store.IncrementPotAmount(ctx, d.DonationPotID, d.DonationAmountIDR); err != nil {
		return true, err
	}

	// Fire-and-forget: gagal notify tidak boleh membatalkan settlement.
	if s.Notifier != nil {
		ev := SettlementEvent{
			DonationID: d.DonationID,
			PotID:      d.DonationPotID,
			AmountIDR:  d.DonationAmountIDR,
			OrderID:    d.DonationOrderID,
			DonorName:  d.DonationName,
			DonorEmail: d.DonationEmail,
		}
		if nerr := s.Notifier.Notify(ctx, ev); nerr != nil {
			log.Printf("[WARN] notifier gagal untuk donation=%s: %v", d.DonationID, nerr)
		}
	}
	return true, nil
}

func (s *Settlement) fail(ctx context.Context, d *donationModel.Donation, res *StatusResult) (bool, error) {
	now := s.now()
	fields := map[string]any{
		"donation_provider_status": res.RawStatus,
		"donation_processed_at":    now,
	}
	if res.TransactionID != "" {
		fields["donation_provider_transaction_id"] = res.TransactionID
	}
	applied, err := s.Store.ConditionalUpdateDonationStatus(ctx,
		d.DonationID, donationModel.DonationStatusPending, donationModel.DonationStatusFailed, fields)
	if err != nil {
		return false, err
	}
	if !applied {
		s.logDivergence(ctx, d, donationModel.DonationStatusFailed)
	}
	return applied, nil
}

// refund: hanya dari completed; decrement pot sebesar amount donasi.
func (s *Settlement) refund(ctx context.Context, d *donationModel.Donation, res *StatusResult) (bool, error) {
	fields := map[string]any{
		"donation_provider_status": res.RawStatus,
	}
	applied, err := s.Store.ConditionalUpdateDonationStatus(ctx,
		d.DonationID, donationModel.DonationStatusCompleted, donationModel.DonationStatusRefunded, fields)
	if err != nil {
		return false, err
	}
	if !applied {
		s.logDivergence(ctx, d, donationModel.DonationStatusRefunded)
		return false, nil
	}
	if err := s.Store.IncrementPotAmount(ctx, d.DonationPotID, -d.DonationAmountIDR); err != nil {
		return true, err
	}
	return true, nil
}

// logDivergence: notifikasi redundan untuk donasi yang sudah terminal.
// Kalau status tersimpan tidak sejalan dengan yang provider bilang sekarang,
// catat buat investigasi — tanpa mutasi.
func (s *Settlement) logDivergence(ctx context.Context, d *donationModel.Donation, wanted donationModel.DonationStatus) {
	cur, err := s.Store.GetDonation(ctx, d.DonationID)
	if err != nil {
		return
	}
	if cur.DonationStatus != wanted {
		log.Printf("[WARN] status divergen untuk order_id=%s: tersimpan=%s, provider minta=%s",
			d.DonationOrderID, cur.DonationStatus, wanted)
	}
}
