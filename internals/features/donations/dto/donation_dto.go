package dto

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"patunganku_backend/internals/features/donations/model"
)

var validate = validator.New()

/* =========================================================
   REQUEST DTOs
========================================================= */

// CreateDonationRequest: inisiasi donasi ke satu pot (guest atau login).
type CreateDonationRequest struct {
	DonationName      string  `json:"donation_name" validate:"required,max=80"`
	DonationEmail     *string `json:"donation_email" validate:"omitempty,email"`
	DonationAmountIDR int     `json:"donation_amount_idr" validate:"required,gt=0"`
	DonationMessage   *string `json:"donation_message" validate:"omitempty,max=500"`
}

func (r *CreateDonationRequest) Validate() error {
	return validate.Struct(r)
}

/* =========================================================
   RESPONSE DTOs
========================================================= */

type DonationResponse struct {
	DonationID        uuid.UUID `json:"donation_id"`
	DonationPotID     uuid.UUID `json:"donation_pot_id"`
	DonationName      string    `json:"donation_name"`
	DonationMessage   *string   `json:"donation_message,omitempty"`
	DonationAmountIDR int       `json:"donation_amount_idr"`

	DonationStatus  model.DonationStatus `json:"donation_status"`
	DonationOrderID string               `json:"donation_order_id"`

	DonationProviderTransactionID *string `json:"donation_provider_transaction_id,omitempty"`
	DonationProviderStatus        *string `json:"donation_provider_status,omitempty"`
	DonationPaymentType           *string `json:"donation_payment_type,omitempty"`

	DonationProcessedAt *time.Time `json:"donation_processed_at,omitempty"`
	DonationCreatedAt   time.Time  `json:"donation_created_at"`
}

func FromModel(d *model.Donation) *DonationResponse {
	return &DonationResponse{
		DonationID:                    d.DonationID,
		DonationPotID:                 d.DonationPotID,
		DonationName:                  d.DonationName,
		DonationMessage:               d.DonationMessage,
		DonationAmountIDR:             d.DonationAmountIDR,
		DonationStatus:                d.DonationStatus,
		DonationOrderID:               d.DonationOrderID,
		DonationProviderTransactionID: d.DonationProviderTransactionID,
		DonationProviderStatus:        d.DonationProviderStatus,
		DonationPaymentType:           d.DonationPaymentType,
		DonationProcessedAt:           d.DonationProcessedAt,
		DonationCreatedAt:             d.DonationCreatedAt,
	}
}

func FromModels(rows []model.Donation) []*DonationResponse {
	out := make([]*DonationResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
