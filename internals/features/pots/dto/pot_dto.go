package dto

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"patunganku_backend/internals/features/pots/model"
)

var validate = validator.New()

/* =========================================================
   REQUEST DTOs
========================================================= */

type CreatePotRequest struct {
	PotTitle           string     `json:"pot_title" validate:"required,max=120"`
	PotDescription     *string    `json:"pot_description" validate:"omitempty,max=2000"`
	PotTargetAmountIDR *int       `json:"pot_target_amount_idr" validate:"omitempty,gt=0"` // nil = open-ended
	PotExpiresAt       *time.Time `json:"pot_expires_at"`
}

func (r *CreatePotRequest) Validate() error {
	return validate.Struct(r)
}

// UpdatePotStatusRequest: aksi administratif (close/cancel).
type UpdatePotStatusRequest struct {
	PotStatus string `json:"pot_status" validate:"required,oneof=closed cancelled"`
}

func (r *UpdatePotStatusRequest) Validate() error {
	return validate.Struct(r)
}

/* =========================================================
   RESPONSE DTOs
========================================================= */

type PotResponse struct {
	PotID               uuid.UUID       `json:"pot_id"`
	PotOwnerUserID      uuid.UUID       `json:"pot_owner_user_id"`
	PotTitle            string          `json:"pot_title"`
	PotSlug             string          `json:"pot_slug"`
	PotDescription      *string         `json:"pot_description,omitempty"`
	PotTargetAmountIDR  *int            `json:"pot_target_amount_idr,omitempty"`
	PotCurrentAmountIDR int             `json:"pot_current_amount_idr"`
	PotStatus           model.PotStatus `json:"pot_status"`
	PotExpiresAt        *time.Time      `json:"pot_expires_at,omitempty"`
	PotCreatedAt        time.Time       `json:"pot_created_at"`
}

func FromModel(p *model.Pot) *PotResponse {
	return &PotResponse{
		PotID:               p.PotID,
		PotOwnerUserID:      p.PotOwnerUserID,
		PotTitle:            p.PotTitle,
		PotSlug:             p.PotSlug,
		PotDescription:      p.PotDescription,
		PotTargetAmountIDR:  p.PotTargetAmountIDR,
		PotCurrentAmountIDR: p.PotCurrentAmountIDR,
		PotStatus:           p.PotStatus,
		PotExpiresAt:        p.PotExpiresAt,
		PotCreatedAt:        p.PotCreatedAt,
	}
}

func FromModels(rows []model.Pot) []*PotResponse {
	out := make([]*PotResponse, 0, len(rows))
	for i := range rows {
		out = append(out, FromModel(&rows[i]))
	}
	return out
}
