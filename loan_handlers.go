package main

import (
	"net/http"
	"time"

	"perpusku/models"
	"perpusku/pkg/circulation"

	"github.com/gin-gonic/gin"
)

// loanDetailSelect is shared by the circulation-desk views. The projected
// fine is computed in application code after scanning, not in SQL, so the
// same query runs on both sqlite and postgres.
const loanDetailSelect = `
	l.id, l.book_id, l.member_id,
	b.title AS book_title, b.isbn AS book_isbn, b.cover AS book_cover,
	m.name AS member_name, m.member_code, m.status AS member_status, m.kelas AS member_kelas,
	l.loan_date, l.due_date, l.status,
	(SELECT COUNT(*) FROM loans WHERE member_id = m.id AND status = 'borrowed') AS member_active_loans`

// queryLoanDetails lists borrowed loans matching the extra condition, with
// live fines filled in.
func queryLoanDetails(cond string, args []interface{}, order string) ([]models.LoanDetail, error) {
	var details []models.LoanDetail
	q := db.Table("loans l").
		Select(loanDetailSelect).
		Joins("JOIN books b ON l.book_id = b.id").
		Joins("JOIN members m ON l.member_id = m.id").
		Where("l.status = ?", models.LoanStatusBorrowed)
	if cond != "" {
		q = q.Where(cond, args...)
	}
	if err := q.Order(order).Scan(&details).Error; err != nil {
		return nil, err
	}
	now := time.Now()
	for i := range details {
		details[i].FineAmount = circulation.ProjectedFine(details[i].DueDate, now)
	}
	return details, nil
}

func borrowHandler(c *gin.Context) {
	var req struct {
		BookID   uint `json:"book_id" binding:"required"`
		MemberID uint `json:"member_id" binding:"required"`
		Days     int  `json:"days" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	loanID, err := circ.Borrow(req.BookID, req.MemberID, req.Days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": loanID})
}

func returnHandler(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := circ.Return(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "book returned"})
}

// activeLoansHandler lists everything currently out, newest first.
func activeLoansHandler(c *gin.Context) {
	var loans []models.LoanWithDetails
	err := db.Table("loans l").
		Select(`l.id, b.title AS book_title, m.name AS member_name,
			l.loan_date, l.due_date, l.return_date,
			COALESCE(l.fine_amount, 0) AS fine_amount, l.status`).
		Joins("JOIN books b ON l.book_id = b.id").
		Joins("JOIN members m ON l.member_id = m.id").
		Where("l.status = ? AND b.deleted_at IS NULL", models.LoanStatusBorrowed).
		Order("l.loan_date DESC").
		Scan(&loans).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, loans)
}

func overdueLoansHandler(c *gin.Context) {
	details, err := queryLoanDetails(
		"l.due_date < ? AND b.deleted_at IS NULL", []interface{}{time.Now()},
		"l.due_date ASC",
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, details)
}

// searchLoansHandler finds open loans by exact ISBN, barcode or member
// code, or by partial member name. An empty result is reported as not
// found so the desk can show a single message.
func searchLoansHandler(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query"})
		return
	}
	details, err := queryLoanDetails(
		"b.deleted_at IS NULL AND (b.isbn = ? OR b.barcode = ? OR m.member_code = ? OR m.name LIKE ?)",
		[]interface{}{q, q, q, "%" + q + "%"},
		"l.due_date ASC",
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if len(details) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Data peminjaman tidak ditemukan"})
		return
	}
	c.JSON(http.StatusOK, details)
}
