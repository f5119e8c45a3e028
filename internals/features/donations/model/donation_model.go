package model

import (
	"time"

	"github.com/google/uuid"
)

/* ================================
   ENUM mirror (harus cocok dgn DB)
================================ */

type DonationStatus string

const (
	DonationStatusPending   DonationStatus = "pending"
	DonationStatusCompleted DonationStatus = "completed"
	DonationStatusFailed    DonationStatus = "failed"
	DonationStatusRefunded  DonationStatus = "refunded"
)

// IsTerminal: donasi tidak pernah kembali ke pending.
func (s DonationStatus) IsTerminal() bool {
	return s == DonationStatusCompleted || s == DonationStatusFailed || s == DonationStatusRefunded
}

/* ================================
   MODEL: donations
   Catatan: record keuangan — tidak pernah dihapus.
================================ */

type Donation struct {
	DonationID uuid.UUID `json:"donation_id" gorm:"column:donation_id;type:uuid;default:gen_random_uuid();primaryKey"`

	DonationPotID  uuid.UUID  `json:"donation_pot_id"  gorm:"column:donation_pot_id;type:uuid;not null;index"`
	DonationUserID *uuid.UUID `json:"donation_user_id" gorm:"column:donation_user_id;type:uuid"`

	DonationName    string  `json:"donation_name"    gorm:"column:donation_name;type:varchar(80);not null"`
	DonationEmail   *string `json:"donation_email"   gorm:"column:donation_email;type:varchar(120)"`
	DonationMessage *string `json:"donation_message" gorm:"column:donation_message;type:text"`

	DonationAmountIDR int `json:"donation_amount_idr" gorm:"column:donation_amount_idr;type:int;not null;check:donation_amount_idr > 0"`

	DonationStatus DonationStatus `json:"donation_status" gorm:"column:donation_status;type:varchar(20);not null;default:'pending';index"`

	// OrderID kita sendiri — dipakai sebagai OrderID Midtrans dan kunci query status
	// saat rekonsiliasi (provider transaction id belum tentu sudah ada).
	DonationOrderID string `json:"donation_order_id" gorm:"column:donation_order_id;type:varchar(100);not null;unique"`

	// Diisi sekali oleh webhook/rekonsiliasi, lalu immutable (idempotency key).
	DonationProviderTransactionID *string `json:"donation_provider_transaction_id" gorm:"column:donation_provider_transaction_id;type:text"`
	// Mirror mentah status terakhir provider (audit).
	DonationProviderStatus *string `json:"donation_provider_status" gorm:"column:donation_provider_status;type:varchar(40)"`
	DonationPaymentType    *string `json:"donation_payment_type"    gorm:"column:donation_payment_type;type:varchar(40)"`

	DonationSnapToken   *string `json:"donation_snap_token"   gorm:"column:donation_snap_token;type:text"`
	DonationCheckoutURL *string `json:"donation_checkout_url" gorm:"column:donation_checkout_url;type:text"`

	// Diset saat transisi pertama keluar dari pending.
	DonationProcessedAt *time.Time `json:"donation_processed_at" gorm:"column:donation_processed_at;type:timestamptz"`

	DonationCreatedAt time.Time `json:"donation_created_at" gorm:"column:donation_created_at;autoCreateTime;index"`
	DonationUpdatedAt time.Time `json:"donation_updated_at" gorm:"column:donation_updated_at;autoUpdateTime"`
}

func (Donation) TableName() string { return "donations" }
