package models

import "time"

// Fine is a ledger entry attached to a loan. Overdue fines are inserted
// automatically when a late loan is returned; manual entries (damage, lost
// copy) can be added independently.
type Fine struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time
	UpdatedAt time.Time
	LoanID    uint       `gorm:"index;not null" json:"loan_id"`
	Amount    int64      `gorm:"not null" json:"amount"`
	Type      string     `gorm:"size:32;default:overdue" json:"type"`
	Status    string     `gorm:"size:16;default:unpaid;index" json:"status"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
}

// Fine types and statuses.
const (
	FineTypeOverdue = "overdue"
	FineTypeManual  = "manual"

	FineStatusUnpaid = "unpaid"
	FineStatusPaid   = "paid"
)
