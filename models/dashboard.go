package models

import "time"

// Stats is the dashboard headline block.
type Stats struct {
	TotalBooks        int64 `json:"total_books"`
	TotalMembers      int64 `json:"total_members"`
	ActiveLoans       int64 `json:"active_loans"`
	OverdueLoans      int64 `json:"overdue_loans"`
	MonthlyNewMembers int64 `json:"monthly_new_members"`
	TotalLoansCount   int64 `json:"total_loans_count"`
}

// MemberStats summarizes one member's borrowing behavior. TotalFines is the
// live projected sum over the member's outstanding loans.
type MemberStats struct {
	TotalLoans30Days int64 `json:"total_loans_30_days"`
	TotalLoans1Year  int64 `json:"total_loans_1_year"`
	ActiveLoans      int64 `json:"active_loans"`
	OverdueLoans     int64 `json:"overdue_loans"`
	TotalFines       int64 `json:"total_fines"`
}

// RecentActivity is one feed row: a fresh loan or a new member joining.
type RecentActivity struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Time        time.Time `json:"time"`
	TypeName    string    `json:"type_name"`
}

// DailyStat is one weekday bucket of the weekly circulation chart.
type DailyStat struct {
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// CategoryStat ranks categories by loan volume.
type CategoryStat struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// BookStat ranks titles by loan volume.
type BookStat struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	Category  string `json:"category"`
	Cover     string `json:"cover"`
	LoanCount int64  `json:"loan_count"`
}

// MemberActivity is one row of the member-activity dashboard table.
type MemberActivity struct {
	Name         string     `json:"name"`
	JoinedAt     time.Time  `json:"joined_at"`
	TotalLoans   int64      `json:"total_loans"`
	Status       string     `json:"status"`
	LastActivity *time.Time `json:"last_activity,omitempty"`
}
