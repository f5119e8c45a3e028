package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	donationModel "patunganku_backend/internals/features/donations/model"
	potModel "patunganku_backend/internals/features/pots/model"
)

/* =========================================================
   Ledger Store — satu-satunya jalur mutasi state bersama.
   Semua update pakai primitive atomik (conditional UPDATE /
   atomic add), tidak ada read-then-write.
========================================================= */

type LedgerStore interface {
	GetPot(ctx context.Context, id uuid.UUID) (*potModel.Pot, error)
	GetDonation(ctx context.Context, id uuid.UUID) (*donationModel.Donation, error)
	GetDonationByOrderID(ctx context.Context, orderID string) (*donationModel.Donation, error)
	InsertDonation(ctx context.Context, d *donationModel.Donation) error
	UpdateDonationCheckout(ctx context.Context, id uuid.UUID, snapToken, checkoutURL string) error

	// ConditionalUpdateDonationStatus: UPDATE ... WHERE donation_id = ? AND
	// donation_status = expected. applied=false kalau guard tidak kena
	// (donasi sudah keluar dari expected) — benign no-op, bukan error.
	ConditionalUpdateDonationStatus(ctx context.Context, id uuid.UUID, expected, next donationModel.DonationStatus, fields map[string]any) (applied bool, err error)

	// IncrementPotAmount: atomic add, delta boleh negatif (refund).
	IncrementPotAmount(ctx context.Context, potID uuid.UUID, delta int) error

	// RecordWebhookDelivery: check-and-insert atomik ke ledger dedup.
	RecordWebhookDelivery(ctx context.Context, eventKey, transactionID, orderID string, payload []byte) (alreadyExists bool, err error)

	// ListStalePending: donasi pending yang lebih tua dari cutoff (bahan rekonsiliasi).
	ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]donationModel.Donation, error)

	// PurgeWebhookDeliveries: buang row ledger dedup yang lewat masa retensi.
	PurgeWebhookDeliveries(ctx context.Context, before time.Time) (int64, error)
}

/* =========================================================
   Implementasi GORM (Postgres)
========================================================= */

type GormLedgerStore struct {
	DB *gorm.DB
}

func NewGormLedgerStore(db *gorm.DB) *GormLedgerStore {
	return &GormLedgerStore{DB: db}
}

func (s *GormLedgerStore) GetPot(ctx context.Context, id uuid.UUID) (*potModel.Pot, error) {
	var p potModel.Pot
	if err := s.DB.WithContext(ctx).First(&p, "pot_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("pot %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (s *GormLedgerStore) GetDonation(ctx context.Context, id uuid.UUID) (*donationModel.Donation, error) {
	var d donationModel.Donation
	if err := s.DB.WithContext(ctx).First(&d, "donation_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("donation %s: %w", id, ErrNotFound)
		}
		return nil, err
	}
	return &d, nil
}

func (s *GormLedgerStore) GetDonationByOrderID(ctx context.Context, orderID string) (*donationModel.Donation, error) {
	var d donationModel.Donation
	if err := s.DB.WithContext(ctx).First(&d, "donation_order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("donation order_id=%s: %w", orderID, ErrNotFound)
		}
		return nil, err
	}
	return &d, nil
}

func (s *GormLedgerStore) InsertDonation(ctx context.Context, d *donationModel.Donation) error {
	return s.DB.WithContext(ctx).Create(d).Error
}

func (s *GormLedgerStore) UpdateDonationCheckout(ctx context.Context, id uuid.UUID, snapToken, checkoutURL string) error {
	return s.DB.WithContext(ctx).
		Model(&donationModel.Donation{}).
		Where("donation_id = ?", id).
		Updates(map[string]any{
			"donation_snap_token":   snapToken,
			"donation_checkout_url": checkoutURL,
		}).Error
}

func (s *GormLedgerStore) ConditionalUpdateDonationStatus(ctx context.Context, id uuid.UUID, expected, next donationModel.DonationStatus, fields map[string]any) (bool, error) {
	updates := map[string]any{"donation_status": next}
	for k, v := range fields {
		updates[k] = v
	}
	res := s.DB.WithContext(ctx).
		Model(&donationModel.Donation{}).
		Where("donation_id = ? AND donation_status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *GormLedgerStore) IncrementPotAmount(ctx context.Context, potID uuid.UUID, delta int) error {
	res := s.DB.WithContext(ctx).
		Model(&potModel.Pot{}).
		Where("pot_id = ?", potID).
		UpdateColumn("pot_current_amount_idr", gorm.Expr("pot_current_amount_idr + ?", delta))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("pot %s: %w", potID, ErrNotFound)
	}
	return nil
}

func (s *GormLedgerStore) RecordWebhookDelivery(ctx context.Context, eventKey, transactionID, orderID string, payload []byte) (bool, error) {
	ev := donationModel.GatewayEvent{
		GatewayEventKey:           eventKey,
		GatewayEventTransactionID: transactionID,
		GatewayEventPayload:       payload,
	}
	if orderID != "" {
		ev.GatewayEventOrderID = &orderID
	}
	res := s.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "gateway_event_key"}},
			DoNothing: true,
		}).
		Create(&ev)
	if res.Error != nil {
		return false, res.Error
	}
	// RowsAffected == 0 → key sudah ada → replay.
	return res.RowsAffected == 0, nil
}

func (s *GormLedgerStore) ListStalePending(ctx context.Context, olderThan time.Time, limit int) ([]donationModel.Donation, error) {
	var rows []donationModel.Donation
	q := s.DB.WithContext(ctx).
		Where("donation_status = ? AND donation_created_at < ?", donationModel.DonationStatusPending, olderThan).
		Order("donation_created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormLedgerStore) PurgeWebhookDeliveries(ctx context.Context, before time.Time) (int64, error) {
	res := s.DB.WithContext(ctx).
		Where("gateway_event_received_at < ?", before).
		Delete(&donationModel.GatewayEvent{})
	return res.RowsAffected, res.Error
}
