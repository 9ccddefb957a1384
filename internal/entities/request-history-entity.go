package entities

import (
	"time"

	"github.com/google/uuid"
)

type RequestHistory struct {
	ID        uint64    `db:"id"`
	RequestID uint64    `db:"request_id"`
	StaffID   uint64    `db:"staff_id"`
	ActorRole string    `db:"actor_role"`
	EventType string    `db:"event_type"`
	FromStep  int       `db:"from_step"`
	ToStep    int       `db:"to_step"`
	Comment   *string   `db:"comment"`
	TxID      uuid.UUID `db:"tx_id"`
	CreatedAt time.Time `db:"created_at"`
}
