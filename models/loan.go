package models

import "time"

// Loan records a single borrow of one book copy by a member. A loan is
// created as "borrowed" and mutated exactly once by the return operation,
// which sets ReturnDate, FineAmount and Status "returned".
type Loan struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
	BookID     uint       `gorm:"index;not null" json:"book_id"`
	MemberID   uint       `gorm:"index;not null" json:"member_id"`
	LoanDate   time.Time  `gorm:"not null" json:"loan_date"`
	DueDate    time.Time  `gorm:"not null" json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	FineAmount int64      `gorm:"default:0" json:"fine_amount"`
	Status     string     `gorm:"size:16;default:borrowed;index" json:"status"`
}

// Loan status values.
const (
	LoanStatusBorrowed = "borrowed"
	LoanStatusReturned = "returned"
)

// LoanWithDetails is the active-loans listing row (loan joined with book
// title and member name).
type LoanWithDetails struct {
	ID         uint       `json:"id"`
	BookTitle  string     `json:"book_title"`
	MemberName string     `json:"member_name"`
	LoanDate   time.Time  `json:"loan_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	FineAmount int64      `json:"fine_amount"`
	Status     string     `json:"status"`
}

// LoanDetail is the richer row used by circulation search, overdue listings
// and per-book borrower views. FineAmount holds the live projected fine for
// loans still out.
type LoanDetail struct {
	ID                uint      `json:"id"`
	BookID            uint      `json:"book_id"`
	MemberID          uint      `json:"member_id"`
	BookTitle         string    `json:"book_title"`
	BookISBN          string    `json:"book_isbn"`
	BookCover         string    `json:"book_cover"`
	MemberName        string    `json:"member_name"`
	MemberCode        string    `json:"member_code"`
	MemberKelas       string    `json:"member_kelas"`
	MemberStatus      string    `json:"member_status"`
	LoanDate          time.Time `json:"loan_date"`
	DueDate           time.Time `json:"due_date"`
	Status            string    `json:"status"`
	FineAmount        int64     `json:"fine_amount"`
	MemberActiveLoans int64     `json:"member_active_loans"`
}

// MemberLoanInfo is a member's own borrowed-books view.
type MemberLoanInfo struct {
	ID         uint      `json:"id"`
	BookID     uint      `json:"book_id"`
	BookTitle  string    `json:"book_title"`
	BookISBN   string    `json:"book_isbn"`
	BookCover  string    `json:"book_cover"`
	LoanDate   time.Time `json:"loan_date"`
	DueDate    time.Time `json:"due_date"`
	Status     string    `json:"status"`
	FineAmount int64     `json:"fine_amount"`
}
