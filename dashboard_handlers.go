package main

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"perpusku/models"

	"github.com/gin-gonic/gin"
)

// Weekday labels indexed by time.Weekday (Sunday = 0), as shown on the
// circulation chart.
var weekdayNames = []string{"Minggu", "Senin", "Selasa", "Rabu", "Kamis", "Jumat", "Sabtu"}

func statsHandler(c *gin.Context) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	var stats models.Stats
	type countQuery struct {
		dest  *int64
		model interface{}
		cond  string
		args  []interface{}
	}
	queries := []countQuery{
		{&stats.TotalBooks, &models.Book{}, "deleted_at IS NULL", nil},
		{&stats.TotalMembers, &models.Member{}, "status = ? OR status IS NULL", []interface{}{models.MemberStatusActive}},
		{&stats.MonthlyNewMembers, &models.Member{}, "joined_at >= ?", []interface{}{monthStart}},
		{&stats.TotalLoansCount, &models.Loan{}, "", nil},
	}
	for _, q := range queries {
		tx := db.Model(q.model)
		if q.cond != "" {
			tx = tx.Where(q.cond, q.args...)
		}
		if err := tx.Count(q.dest).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
	}

	// Loans on deleted books drop out of the active counts.
	activeJoin := db.Table("loans l").
		Joins("JOIN books b ON l.book_id = b.id").
		Where("l.status = ? AND b.deleted_at IS NULL", models.LoanStatusBorrowed)
	if err := activeJoin.Count(&stats.ActiveLoans).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	err := db.Table("loans l").
		Joins("JOIN books b ON l.book_id = b.id").
		Where("l.status = ? AND b.deleted_at IS NULL AND l.due_date < ?", models.LoanStatusBorrowed, now).
		Count(&stats.OverdueLoans).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// recentActivityHandler merges the latest loans and the latest member
// sign-ups into one feed, newest ten entries.
func recentActivityHandler(c *gin.Context) {
	var activities []models.RecentActivity

	var loans []struct {
		ID         uint
		MemberName string
		BookTitle  string
		LoanDate   time.Time
	}
	err := db.Table("loans l").
		Select("l.id, m.name AS member_name, b.title AS book_title, l.loan_date").
		Joins("JOIN books b ON l.book_id = b.id").
		Joins("JOIN members m ON l.member_id = m.id").
		Where("b.deleted_at IS NULL").
		Order("l.loan_date DESC").
		Limit(10).
		Scan(&loans).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	for _, l := range loans {
		activities = append(activities, models.RecentActivity{
			ID:          fmt.Sprintf("L-%d", l.ID),
			Title:       l.MemberName,
			Description: fmt.Sprintf("meminjam %q", l.BookTitle),
			Time:        l.LoanDate,
			TypeName:    "loan",
		})
	}

	var members []models.Member
	if err := db.Order("joined_at DESC").Limit(10).Find(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	for _, m := range members {
		activities = append(activities, models.RecentActivity{
			ID:          fmt.Sprintf("M-%d", m.ID),
			Title:       m.Name,
			Description: "Bergabung sebagai anggota baru",
			Time:        m.JoinedAt,
			TypeName:    "member",
		})
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].Time.After(activities[j].Time)
	})
	if len(activities) > 10 {
		activities = activities[:10]
	}
	c.JSON(http.StatusOK, activities)
}

// weeklyCirculationHandler buckets all loans by weekday. The bucketing is
// done in application code so it works identically on every store.
func weeklyCirculationHandler(c *gin.Context) {
	var loanDates []time.Time
	if err := db.Model(&models.Loan{}).Pluck("loan_date", &loanDates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	stats := make([]models.DailyStat, len(weekdayNames))
	for i, name := range weekdayNames {
		stats[i] = models.DailyStat{Day: name}
	}
	for _, d := range loanDates {
		stats[int(d.Weekday())].Count++
	}
	c.JSON(http.StatusOK, stats)
}

func popularCategoriesHandler(c *gin.Context) {
	var stats []models.CategoryStat
	err := db.Table("loans l").
		Select("b.category, COUNT(l.id) AS count").
		Joins("JOIN books b ON l.book_id = b.id").
		Group("b.category").
		Order("count DESC").
		Limit(5).
		Scan(&stats).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	for i := range stats {
		if stats[i].Category == "" {
			stats[i].Category = "Uncategorized"
		}
	}
	c.JSON(http.StatusOK, stats)
}

func mostBorrowedHandler(c *gin.Context) {
	var stats []models.BookStat
	err := db.Table("loans l").
		Select("b.title, b.author, b.category, b.cover, COUNT(l.id) AS loan_count").
		Joins("JOIN books b ON l.book_id = b.id").
		Group("b.id, b.title, b.author, b.category, b.cover").
		Order("loan_count DESC").
		Limit(3).
		Scan(&stats).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// memberActivityHandler lists the ten most recently active members. A
// member counts as Active when they borrowed within the last 30 days.
func memberActivityHandler(c *gin.Context) {
	var rows []struct {
		Name         string
		JoinedAt     time.Time
		TotalLoans   int64
		LastActivity *time.Time
	}
	err := db.Table("members m").
		Select(`m.name, m.joined_at,
			(SELECT COUNT(*) FROM loans WHERE member_id = m.id) AS total_loans,
			(SELECT MAX(loan_date) FROM loans WHERE member_id = m.id) AS last_activity`).
		Order("last_activity DESC").
		Limit(10).
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	now := time.Now()
	activities := make([]models.MemberActivity, 0, len(rows))
	for _, r := range rows {
		status := "Inactive"
		if r.LastActivity != nil && now.Sub(*r.LastActivity) <= 30*24*time.Hour {
			status = "Active"
		}
		activities = append(activities, models.MemberActivity{
			Name:         r.Name,
			JoinedAt:     r.JoinedAt,
			TotalLoans:   r.TotalLoans,
			Status:       status,
			LastActivity: r.LastActivity,
		})
	}
	c.JSON(http.StatusOK, activities)
}

func monthlyNewMembersHandler(c *gin.Context) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	var count int64
	if err := db.Model(&models.Member{}).Where("joined_at >= ?", monthStart).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}
