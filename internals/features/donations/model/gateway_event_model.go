package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

/*
  gateway_events = LEDGER DEDUP WEBHOOK MIDTRANS
  - Satu row per notifikasi unik (transaction_id + transaction_status).
  - Insert ON CONFLICT DO NOTHING → deteksi replay provider.
  - Nyimpen raw payload buat debug / audit.
  - Retensi terbatas: row lama dibersihkan saat reconciliation run.
*/

type GatewayEvent struct {
	GatewayEventID uuid.UUID `json:"gateway_event_id" gorm:"column:gateway_event_id;type:uuid;default:gen_random_uuid();primaryKey"`

	// transaction_id + ":" + transaction_status — replay notifikasi yang sama
	// terdeteksi, tapi notifikasi lanjutan (pending → settlement) tidak terblokir.
	GatewayEventKey string `json:"gateway_event_key" gorm:"column:gateway_event_key;type:varchar(160);not null;uniqueIndex:uq_gateway_event_key"`

	GatewayEventTransactionID string  `json:"gateway_event_transaction_id" gorm:"column:gateway_event_transaction_id;type:text;not null"`
	GatewayEventOrderID       *string `json:"gateway_event_order_id"       gorm:"column:gateway_event_order_id;type:text"`

	GatewayEventPayload datatypes.JSON `json:"gateway_event_payload" gorm:"column:gateway_event_payload;type:jsonb"`

	GatewayEventReceivedAt time.Time `json:"gateway_event_received_at" gorm:"column:gateway_event_received_at;not null;default:now();index"`
}

func (GatewayEvent) TableName() string { return "gateway_events" }
