package main

import (
	"net/http"
	"time"

	"perpusku/models"

	"github.com/gin-gonic/gin"
)

// listFinesHandler returns ledger entries, optionally narrowed to one loan,
// one member or one payment status.
func listFinesHandler(c *gin.Context) {
	q := db.Model(&models.Fine{})
	if v := c.Query("loan_id"); v != "" {
		q = q.Where("loan_id = ?", v)
	}
	if v := c.Query("status"); v != "" {
		q = q.Where("status = ?", v)
	}
	if v := c.Query("member_id"); v != "" {
		q = q.Where("loan_id IN (?)", db.Model(&models.Loan{}).Select("id").Where("member_id = ?", v))
	}
	var fines []models.Fine
	if err := q.Order("id DESC").Find(&fines).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, fines)
}

// createFineHandler records a manual ledger entry (damaged or lost copy and
// the like) against an existing loan.
func createFineHandler(c *gin.Context) {
	var req struct {
		LoanID uint   `json:"loan_id" binding:"required"`
		Amount int64  `json:"amount" binding:"required,gt=0"`
		Type   string `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	var loan models.Loan
	if err := db.First(&loan, req.LoanID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Data peminjaman tidak ditemukan"})
		return
	}
	if req.Type == "" {
		req.Type = models.FineTypeManual
	}
	fine := models.Fine{LoanID: req.LoanID, Amount: req.Amount, Type: req.Type, Status: models.FineStatusUnpaid}
	if err := db.Create(&fine).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": fine.ID})
}

func payFineHandler(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var fine models.Fine
	if err := db.First(&fine, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Denda tidak ditemukan"})
		return
	}
	if fine.Status == models.FineStatusPaid {
		c.JSON(http.StatusConflict, gin.H{"error": "Denda sudah dibayar"})
		return
	}
	now := time.Now()
	updates := map[string]interface{}{"status": models.FineStatusPaid, "paid_at": now}
	if err := db.Model(&models.Fine{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "fine paid"})
}
