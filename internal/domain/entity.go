package domain

import (
	"time"
)

// OrderRecord is one journaled order command dispatched during a session.
// The journal is an audit trail only; engine state is never rebuilt from it.
type OrderRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Action    string    `gorm:"index" json:"action"` // "submit", "cancel"
	ClOrdID   string    `gorm:"index" json:"cl_ord_id,omitempty"`
	OrderID   string    `json:"order_id,omitempty"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side,omitempty"`
	Price     float64   `json:"price"`
	Qty       float64   `json:"qty"`
	Status    string    `gorm:"index" json:"status"` // "sent", "failed"
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
