package models

import "time"

// Member represents a registered borrower. Members are never physically
// removed; deletion flips Status to Nonaktif so loan history keeps its
// references.
type Member struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MemberCode   string    `gorm:"size:32;uniqueIndex;not null" json:"member_code"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255" json:"email"`
	Phone        string    `gorm:"size:64" json:"phone"`
	Kelas        string    `gorm:"size:64" json:"kelas"`
	JenisKelamin string    `gorm:"size:32" json:"jenis_kelamin"`
	Status       string    `gorm:"size:32;default:Aktif" json:"status"`
	JoinedAt     time.Time `gorm:"autoCreateTime" json:"joined_at"`
}

// Member status values.
const (
	MemberStatusActive   = "Aktif"
	MemberStatusInactive = "Nonaktif"
)
