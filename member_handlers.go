package main

import (
	"net/http"
	"time"

	"perpusku/models"
	"perpusku/pkg/circulation"

	"github.com/gin-gonic/gin"
)

func listMembersHandler(c *gin.Context) {
	var members []models.Member
	if err := db.Order("name ASC").Find(&members).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, members)
}

type memberRequest struct {
	MemberCode   string `json:"member_code"`
	Name         string `json:"name" binding:"required"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Kelas        string `json:"kelas"`
	JenisKelamin string `json:"jenis_kelamin"`
	Status       string `json:"status"`
}

func createMemberHandler(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	member := models.Member{
		MemberCode:   req.MemberCode,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		Kelas:        req.Kelas,
		JenisKelamin: req.JenisKelamin,
		Status:       req.Status,
	}
	if err := circ.CreateMember(&member); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": member.ID, "member_code": member.MemberCode})
}

func updateMemberHandler(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updates := map[string]interface{}{
		"member_code":   req.MemberCode,
		"name":          req.Name,
		"email":         req.Email,
		"phone":         req.Phone,
		"kelas":         req.Kelas,
		"jenis_kelamin": req.JenisKelamin,
		"status":        req.Status,
	}
	res := db.Model(&models.Member{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		respondError(c, circulation.ErrMemberNotFound)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "member updated"})
}

// deleteMemberHandler never removes the row; it flips the member to
// Nonaktif so loan history stays intact.
func deleteMemberHandler(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := circ.DeactivateMember(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "member deactivated"})
}

func findMemberHandler(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing code"})
		return
	}
	var member models.Member
	if err := db.Where("member_code = ?", code).First(&member).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Anggota tidak ditemukan"})
		return
	}
	c.JSON(http.StatusOK, member)
}

func generateMemberCodeHandler(c *gin.Context) {
	code, err := circ.GenerateMemberCode()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"member_code": code})
}

// memberLoansHandler lists a member's outstanding loans with live fines.
func memberLoansHandler(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var loans []models.MemberLoanInfo
	err := db.Table("loans l").
		Select(`l.id, l.book_id, b.title AS book_title, b.isbn AS book_isbn,
			b.cover AS book_cover, l.loan_date, l.due_date, l.status`).
		Joins("JOIN books b ON l.book_id = b.id").
		Where("l.member_id = ? AND l.status = ?", id, models.LoanStatusBorrowed).
		Order("l.loan_date DESC").
		Scan(&loans).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	now := time.Now()
	for i := range loans {
		loans[i].FineAmount = circulation.ProjectedFine(loans[i].DueDate, now)
	}
	c.JSON(http.StatusOK, loans)
}

// memberStatsHandler summarizes one member's borrowing. The fines total is
// the projected sum over loans still out, so it moves with the clock.
func memberStatsHandler(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	now := time.Now()
	var stats models.MemberStats

	counts := []struct {
		dest *int64
		cond string
		args []interface{}
	}{
		{&stats.TotalLoans30Days, "member_id = ? AND loan_date >= ?", []interface{}{id, now.AddDate(0, 0, -30)}},
		{&stats.TotalLoans1Year, "member_id = ? AND loan_date >= ?", []interface{}{id, now.AddDate(-1, 0, 0)}},
		{&stats.ActiveLoans, "member_id = ? AND status = ?", []interface{}{id, models.LoanStatusBorrowed}},
		{&stats.OverdueLoans, "member_id = ? AND status = ? AND due_date < ?", []interface{}{id, models.LoanStatusBorrowed, now}},
	}
	for _, q := range counts {
		if err := db.Model(&models.Loan{}).Where(q.cond, q.args...).Count(q.dest).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
	}

	var dueDates []time.Time
	if err := db.Model(&models.Loan{}).
		Where("member_id = ? AND status = ?", id, models.LoanStatusBorrowed).
		Pluck("due_date", &dueDates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	for _, due := range dueDates {
		stats.TotalFines += circulation.ProjectedFine(due, now)
	}
	c.JSON(http.StatusOK, stats)
}
