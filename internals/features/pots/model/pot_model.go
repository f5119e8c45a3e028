package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ================================
   ENUM mirror (harus cocok dgn DB)
================================ */

type PotStatus string

const (
	PotStatusActive    PotStatus = "active"
	PotStatusClosed    PotStatus = "closed"
	PotStatusExpired   PotStatus = "expired"
	PotStatusCancelled PotStatus = "cancelled"
)

/* ================================
   MODEL: pots
================================ */

type Pot struct {
	PotID uuid.UUID `json:"pot_id" gorm:"column:pot_id;type:uuid;default:gen_random_uuid();primaryKey"`

	PotOwnerUserID uuid.UUID `json:"pot_owner_user_id" gorm:"column:pot_owner_user_id;type:uuid;not null"`

	PotTitle       string  `json:"pot_title"       gorm:"column:pot_title;type:varchar(120);not null"`
	PotSlug        string  `json:"pot_slug"        gorm:"column:pot_slug;type:varchar(140);not null;unique"`
	PotDescription *string `json:"pot_description" gorm:"column:pot_description;type:text"`

	// Nominal (IDR). Target nullable → pot open-ended.
	PotTargetAmountIDR *int `json:"pot_target_amount_idr" gorm:"column:pot_target_amount_idr;type:int;check:pot_target_amount_idr > 0"`
	// Hanya bertambah lewat settlement donasi; berkurang hanya lewat refund eksplisit.
	PotCurrentAmountIDR int `json:"pot_current_amount_idr" gorm:"column:pot_current_amount_idr;type:int;not null;default:0"`

	PotStatus PotStatus `json:"pot_status" gorm:"column:pot_status;type:varchar(20);not null;default:'active'"`

	PotExpiresAt *time.Time `json:"pot_expires_at" gorm:"column:pot_expires_at;type:timestamptz"`
	PotClosedAt  *time.Time `json:"pot_closed_at"  gorm:"column:pot_closed_at;type:timestamptz"`

	PotCreatedAt time.Time      `json:"pot_created_at" gorm:"column:pot_created_at;autoCreateTime"`
	PotUpdatedAt time.Time      `json:"pot_updated_at" gorm:"column:pot_updated_at;autoUpdateTime"`
	PotDeletedAt gorm.DeletedAt `json:"pot_deleted_at,omitempty" gorm:"column:pot_deleted_at;index"`
}

func (Pot) TableName() string { return "pots" }

// AcceptsDonations: hanya pot active yang menerima donasi baru.
func (p *Pot) AcceptsDonations() bool {
	return p.PotStatus == PotStatusActive
}
