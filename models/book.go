package models

import "time"

// Book represents a catalog title. AvailableCopy counts loanable units and
// must stay within [0, TotalCopy]. DeletedAt is a manual soft-delete marker
// (not a gorm.DeletedAt) so loan-history joins still see removed titles.
type Book struct {
	ID            uint `gorm:"primaryKey" json:"id"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	DeletedAt     *time.Time `gorm:"index" json:"deleted_at,omitempty"`
	Title         string     `gorm:"size:255;not null" json:"title"`
	Author        string     `gorm:"size:255;not null" json:"author"`
	ISBN          string     `gorm:"size:32;index" json:"isbn"`
	Category      string     `gorm:"size:128" json:"category"`
	Publisher     string     `gorm:"size:255" json:"publisher"`
	PublishedYear int        `json:"published_year"`
	RackLocation  string     `gorm:"size:64" json:"rack_location"`
	// Barcode is assigned once at creation (B-<year>-<4-digit-id>) and
	// never changes afterwards.
	Barcode       string `gorm:"size:32;index" json:"barcode"`
	TotalCopy     int    `gorm:"not null" json:"total_copy"`
	AvailableCopy int    `gorm:"not null" json:"available_copy"`
	Cover         string `gorm:"size:512" json:"cover"`
	Status        string `gorm:"size:32;default:Tersedia" json:"status"`
}

// Book status values.
const (
	BookStatusAvailable   = "Tersedia"
	BookStatusBorrowed    = "Dipinjam"
	BookStatusUnavailable = "Tidak Tersedia"
)
